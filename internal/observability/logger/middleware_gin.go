package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	obscontext "github.com/smallbiznis/solarops/internal/observability/context"
	"github.com/smallbiznis/solarops/pkg/telemetry/correlation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	requestIDHeader = "X-Request-Id"
	maxRequestIDLen = 128

	// Exports of large tables are the usual culprits.
	defaultSlowRequest = 2 * time.Second
)

// MiddlewareConfig controls request logging behavior.
type MiddlewareConfig struct {
	Debug bool
	// ErrorClassifier maps the last handler error to (type, code) log fields.
	ErrorClassifier func(err error) (string, string)
	// SlowRequest raises the log level of requests slower than this.
	SlowRequest time.Duration
}

// GinMiddleware stamps request and correlation IDs onto the request context
// and writes one line per request once the handler chain has run.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	if cfg.SlowRequest <= 0 {
		cfg.SlowRequest = defaultSlowRequest
	}
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.NewString()
		}
		ctx, correlationID := correlation.FromHeader(c.Request.Context(), c.Request.Header)
		ctx = obscontext.WithRequestID(ctx, requestID)
		ctx = obscontext.WithClient(ctx, c.ClientIP(), c.Request.UserAgent())
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, requestID)
		c.Header(correlation.Header, correlationID)

		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		fields := requestFields(c, route, status, elapsed)
		if last := c.Errors.Last(); last != nil {
			if cfg.ErrorClassifier != nil {
				errType, errCode := cfg.ErrorClassifier(last.Err)
				fields = append(fields, zap.String("error_type", errType), zap.String("error_code", errCode))
			}
			if cfg.Debug {
				fields = append(fields, zap.Error(last.Err))
			}
		}

		log := FromContext(c.Request.Context())
		if ce := log.Check(requestLevel(route, status, elapsed, cfg.SlowRequest), "http_request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

func requestFields(c *gin.Context, route string, status int, elapsed time.Duration) []zap.Field {
	if route == "" {
		route = "unknown"
	}
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("route", route),
		zap.Int("status", status),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
		zap.Int64("bytes_in", max(c.Request.ContentLength, 0)),
		zap.Int("bytes_out", max(c.Writer.Size(), 0)),
	}
	if entity := c.Param("entity"); entity != "" {
		fields = append(fields, zap.String("entity", entity))
	}
	if id := c.Param("id"); id != "" {
		fields = append(fields, zap.String("record_id", id))
	}
	return fields
}

func requestLevel(route string, status int, elapsed, slow time.Duration) zapcore.Level {
	switch {
	case route == "/health" || route == "/metrics":
		return zapcore.DebugLevel
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status == http.StatusTooManyRequests, elapsed > slow:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
