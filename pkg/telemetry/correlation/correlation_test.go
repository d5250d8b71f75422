package correlation

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := ContextWithCorrelationID(context.Background(), " abc ")
	assert.Equal(t, "abc", ExtractCorrelationID(ctx))
	assert.Equal(t, "", ExtractCorrelationID(context.Background()))
}

func TestEnsureCorrelationIDKeepsExisting(t *testing.T) {
	ctx, id := EnsureCorrelationID(context.Background())
	_, err := ulid.Parse(id)
	require.NoError(t, err)

	again, same := EnsureCorrelationID(ctx)
	assert.Equal(t, id, same)
	assert.Equal(t, id, ExtractCorrelationID(again))
}

func TestFromHeader(t *testing.T) {
	h := http.Header{}
	h.Set(Header, "import-2024-05")
	_, id := FromHeader(context.Background(), h)
	assert.Equal(t, "import-2024-05", id)

	h.Set(Header, strings.Repeat("x", maxLen+1))
	_, id = FromHeader(context.Background(), h)
	_, err := ulid.Parse(id)
	assert.NoError(t, err, "oversized header values are replaced")

	_, id = FromHeader(context.Background(), nil)
	assert.NotEmpty(t, id)
}
