// Package correlation ties together the log lines and audit entries produced
// by one logical operation: an API request, or one solarctl invocation.
package correlation

import (
	"context"
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Header lets a caller supply its own correlation ID.
const Header = "X-Correlation-ID"

// maxLen bounds caller-supplied IDs before they reach logs and audit rows.
const maxLen = 64

type correlationKey struct{}

// ExtractCorrelationID returns the ID stored on ctx, or "".
func ExtractCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// ContextWithCorrelationID stores id on ctx. Blank or oversized IDs are ignored.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > maxLen {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

// EnsureCorrelationID keeps an existing ID or attaches a fresh ULID.
func EnsureCorrelationID(ctx context.Context) (context.Context, string) {
	if id := ExtractCorrelationID(ctx); id != "" {
		return ctx, id
	}
	id := ulid.Make().String()
	return context.WithValue(ctx, correlationKey{}, id), id
}

// FromHeader prefers the caller's Header value and falls back to
// EnsureCorrelationID.
func FromHeader(ctx context.Context, h http.Header) (context.Context, string) {
	if h != nil {
		ctx = ContextWithCorrelationID(ctx, h.Get(Header))
	}
	return EnsureCorrelationID(ctx)
}
