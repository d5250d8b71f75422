package server

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/solarops/internal/auth/domain"
	"go.uber.org/zap"
)

type createUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateMeRequest struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// CreateUser registers a new account. The caller must already be authenticated.
func (s *Server) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.authsvc.CreateUser(c.Request.Context(), authdomain.CreateUserRequest{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// ObtainToken exchanges email and password for a new API token. Each
// successful request revokes the account's previous token, so clients that
// share an account must share the token instead of logging in separately.
func (s *Server) ObtainToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		AbortWithError(c, newValidationError("non_field_errors", "required", "Must include \"email\" and \"password\"."))
		return
	}

	ctx := c.Request.Context()
	if s.loginLimiter != nil && s.loginLimiter.Enabled() {
		token, ok, err := s.loginLimiter.LockAccount(ctx, req.Email)
		if err != nil {
			s.log.Warn("token lock unavailable", zap.Error(err))
		} else if !ok {
			AbortWithError(c, ErrLocked)
			return
		} else {
			defer func() {
				if err := s.loginLimiter.UnlockAccount(ctx, req.Email, token); err != nil {
					s.log.Warn("token unlock failed", zap.Error(err))
				}
			}()
		}
	}

	result, err := s.authsvc.ObtainToken(ctx, authdomain.TokenRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, authdomain.ErrInvalidCredentials) {
			AbortWithError(c, newValidationError("non_field_errors", "authorization", "Unable to log in with provided credentials."))
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": result.Token})
}

// TokenRateLimit throttles token requests per client address.
func (s *Server) TokenRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.loginLimiter == nil || !s.loginLimiter.Enabled() {
			c.Next()
			return
		}

		result, err := s.loginLimiter.AllowClient(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Fail open when Redis is unreachable.
			s.log.Warn("token rate limit check failed", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(result.RetryAfter.Seconds()))))
			if s.metrics != nil {
				s.metrics.RecordRateLimitDenied(c.Request.Context(), "user.token")
			}
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

func (s *Server) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	fresh, err := s.authsvc.CurrentUser(c.Request.Context(), user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, fresh)
}

// UpdateMe serves both PUT and PATCH. PUT requires email and name.
func (s *Server) UpdateMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if c.Request.Method == http.MethodPut {
		var missing ValidationErrors
		if req.Email == nil {
			missing.Errors = append(missing.Errors, ValidationError{Field: "email", Code: "required", Message: "This field is required."})
		}
		if req.Name == nil {
			missing.Errors = append(missing.Errors, ValidationError{Field: "name", Code: "required", Message: "This field is required."})
		}
		if len(missing.Errors) > 0 {
			AbortWithError(c, &missing)
			return
		}
	}

	updated, err := s.authsvc.UpdateCurrentUser(c.Request.Context(), user.ID, authdomain.UpdateUserRequest{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) Logout(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.authsvc.Logout(c.Request.Context(), user.ID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
