package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToken(t *testing.T) {
	assert.Equal(t, "", Token("  "))
	assert.Equal(t, "****", Token("abc123"))
	assert.Equal(t, "****ee4b", Token("9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b"))
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "o****@example.com", Email("operator@example.com"))
	assert.Equal(t, "****", Email("@x"))
}

func TestFields(t *testing.T) {
	got := Fields(map[string]any{
		"token":         "9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b",
		"attempt_email": "operator@example.com",
		"attempts":      3,
		"previous":      []any{"0123456789abcdef"},
		"":              "dropped",
		"nested":        map[string]any{"owner_email": "a@b.io"},
	})

	assert.Equal(t, "****ee4b", got["token"])
	assert.Equal(t, "o****@example.com", got["attempt_email"])
	assert.Equal(t, 3, got["attempts"])
	assert.Equal(t, []any{"****cdef"}, got["previous"])
	assert.Equal(t, map[string]any{"owner_email": "a****@b.io"}, got["nested"])
	assert.NotContains(t, got, "")
	assert.Nil(t, Fields(nil))
}
