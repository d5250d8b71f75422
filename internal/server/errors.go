package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	admindomain "github.com/smallbiznis/solarops/internal/admin/domain"
	auditdomain "github.com/smallbiznis/solarops/internal/audit/domain"
	authdomain "github.com/smallbiznis/solarops/internal/auth/domain"
	"github.com/smallbiznis/solarops/internal/authorization"
	measurementdomain "github.com/smallbiznis/solarops/internal/measurement/domain"
	notificationdomain "github.com/smallbiznis/solarops/internal/notification/domain"
	plantdomain "github.com/smallbiznis/solarops/internal/plant/domain"
	"github.com/smallbiznis/solarops/internal/record"
	"github.com/smallbiznis/solarops/internal/registry"
	utilitydomain "github.com/smallbiznis/solarops/internal/utility/domain"
	"gorm.io/gorm"
)

// ValidationError is one field-level complaint in a 400 response.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrRateLimited    = errors.New("rate_limited")
	ErrLocked         = errors.New("locked")
)

// ErrorHandlingMiddleware renders the last handler error unless the handler
// already wrote a response.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}
		status, payload := mapError(last.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{Errors: []ValidationError{{Field: field, Code: code, Message: message}}}
}

type httpError struct {
	status  int
	kind    string
	message string
}

var (
	internalError = httpError{http.StatusInternalServerError, "internal_error", "internal server error"}
	notFound      = httpError{http.StatusNotFound, "not_found", "not found"}
	unauthorized  = httpError{http.StatusUnauthorized, "unauthorized", "unauthorized"}
	forbidden     = httpError{http.StatusForbidden, "forbidden", "forbidden"}
)

// sentinels maps plain errors to responses. Order matters only for errors
// that wrap more than one sentinel.
var sentinels = []struct {
	targets []error
	resp    httpError
}{
	{[]error{ErrUnauthorized, record.ErrUnauthenticated, authdomain.ErrInvalidCredentials,
		authdomain.ErrInvalidToken, authdomain.ErrTokenNotFound, authdomain.ErrUserInactive}, unauthorized},
	{[]error{ErrForbidden, authorization.ErrForbidden}, forbidden},
	{[]error{authdomain.ErrUserExists}, httpError{http.StatusConflict, "conflict", "user with this email already exists"}},
	{[]error{ErrRateLimited}, httpError{http.StatusTooManyRequests, "rate_limited", "too many requests"}},
	{[]error{ErrLocked}, httpError{http.StatusConflict, "conflict", "another token request for this account is in progress"}},
	{[]error{admindomain.ErrExportTooLarge}, httpError{http.StatusRequestEntityTooLarge, "export_too_large", "narrow the filter before exporting"}},
	{[]error{ErrNotFound, record.ErrNotFound, registry.ErrUnknownEntity, authdomain.ErrUserNotFound, gorm.ErrRecordNotFound}, notFound},
}

// fieldSentinels are domain errors reported as a single field error.
var fieldSentinels = []struct {
	target error
	field  ValidationError
}{
	{ErrInvalidRequest, ValidationError{"request", "invalid_request", "invalid request"}},
	{authdomain.ErrInvalidEmail, ValidationError{"email", "invalid_email", "Enter a valid email address."}},
	{authdomain.ErrInvalidName, ValidationError{"name", "invalid_name", "This field may not be blank."}},
	{authdomain.ErrPasswordTooShort, ValidationError{"password", "invalid_password", "Ensure this field has at least 8 characters."}},
	{auditdomain.ErrInvalidPageToken, ValidationError{"page_token", "invalid_page_token", "invalid page token"}},
	{auditdomain.ErrInvalidTimeRange, ValidationError{"end_at", "invalid_time_range", "end_at must not be before start_at"}},
	{plantdomain.ErrInvalidName, ValidationError{"name", "invalid_name", "This field may not be blank."}},
	{plantdomain.ErrInvalidCode, ValidationError{"plant_id", "invalid_code", "This field may not be blank."}},
	{measurementdomain.ErrInvalidRange, ValidationError{"to", "invalid_range", "to must not be before from"}},
	{notificationdomain.ErrInvalidImpact, ValidationError{"impact", "invalid_impact", "Select one of Major, Minor, None or -."}},
	{utilitydomain.ErrInvalidPeriod, ValidationError{"period", "invalid_period", "Enter a period of at most 7 characters."}},
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return internalError.status, errorPayload{Type: internalError.kind, Message: internalError.message}
	}
	if fields := validationFields(err); len(fields) > 0 {
		return http.StatusBadRequest, errorPayload{Type: "validation_error", Message: "validation error", Errors: fields}
	}

	var integrityErr *record.IntegrityError
	if errors.As(err, &integrityErr) {
		return http.StatusConflict, errorPayload{Type: "conflict", Message: integrityErr.Error()}
	}

	resp := internalError
	for _, s := range sentinels {
		if isAny(err, s.targets) {
			resp = s.resp
			break
		}
	}
	return resp.status, errorPayload{Type: resp.kind, Message: resp.message}
}

// validationFields collects field errors from every error shape that maps
// to a 400.
func validationFields(err error) []ValidationError {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr.Errors
	}

	var many record.ValidationErrors
	if errors.As(err, &many) {
		out := make([]ValidationError, 0, len(many))
		for _, item := range many {
			out = append(out, recordFieldError(item))
		}
		return out
	}
	var single *record.ValidationError
	if errors.As(err, &single) {
		return []ValidationError{recordFieldError(single)}
	}

	var refErr *record.ReferenceError
	if errors.As(err, &refErr) {
		return []ValidationError{{Field: refErr.Field, Code: "does_not_exist", Message: refErr.Error()}}
	}

	for _, s := range fieldSentinels {
		if errors.Is(err, s.target) {
			return []ValidationError{s.field}
		}
	}
	return nil
}

func recordFieldError(err *record.ValidationError) ValidationError {
	field := err.Field
	if field == "" {
		field = "non_field_errors"
	}
	return ValidationError{Field: field, Code: "invalid", Message: err.Message}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// classifyErrorForLog returns the error type and code written to request logs.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	if status >= http.StatusInternalServerError {
		return "internal", code
	}
	return payload.Type, code
}
