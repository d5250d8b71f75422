package server

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/solarops/internal/audit/domain"
	authdomain "github.com/smallbiznis/solarops/internal/auth/domain"
	"github.com/smallbiznis/solarops/internal/authorization"
	obscontext "github.com/smallbiznis/solarops/internal/observability/context"
	"github.com/smallbiznis/solarops/internal/record"
)

type contextKey string

const contextUserKey contextKey = "current_user"

// tokenSchemes are the accepted Authorization header keywords.
var tokenSchemes = []string{"Token", "Bearer"}

// TokenRequired resolves the current user from the Authorization header.
// Missing, malformed and unknown tokens all fail with 401.
func (s *Server) TokenRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := tokenFromHeader(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", "Token")
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.authsvc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			c.Header("WWW-Authenticate", "Token")
			AbortWithError(c, err)
			return
		}

		ctx := context.WithValue(c.Request.Context(), contextUserKey, user)
		ctx = obscontext.WithActor(ctx, string(auditdomain.ActorTypeUser), strconv.FormatInt(user.ID, 10))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func tokenFromHeader(header string) (string, bool) {
	parts := strings.Fields(strings.TrimSpace(header))
	if len(parts) != 2 {
		return "", false
	}
	for _, scheme := range tokenSchemes {
		if strings.EqualFold(parts[0], scheme) {
			return parts[1], true
		}
	}
	return "", false
}

func currentUser(c *gin.Context) (*authdomain.User, bool) {
	user, ok := c.Request.Context().Value(contextUserKey).(*authdomain.User)
	return user, ok && user != nil
}

// actorFromContext is the record actor of the request; anonymous when no
// user was resolved.
func actorFromContext(c *gin.Context) record.Actor {
	user, ok := currentUser(c)
	if !ok {
		return record.Anonymous
	}
	return record.UserActor(user.ID)
}

// authorize gates a route on a casbin object/action pair.
func (s *Server) authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if s.authzSvc == nil {
			AbortWithError(c, ErrForbidden)
			return
		}
		subject := authorization.Subject{UserID: user.ID, IsStaff: user.IsStaff}
		if err := s.authzSvc.Authorize(c.Request.Context(), subject, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// recordAction maps an HTTP method onto the record permission it needs.
func recordAction(method string) string {
	switch method {
	case "POST":
		return authorization.ActionRecordCreate
	case "PUT", "PATCH":
		return authorization.ActionRecordUpdate
	case "DELETE":
		return authorization.ActionRecordDelete
	default:
		return authorization.ActionRecordView
	}
}

func (s *Server) authorizeRecord() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.authorize(authorization.ObjectRecord, recordAction(c.Request.Method))(c)
	}
}
