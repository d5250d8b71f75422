package idgen

import (
	"testing"

	"github.com/smallbiznis/solarops/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNodeGeneratesIncreasingIDs(t *testing.T) {
	node, err := NewNode(config.Config{SnowflakeNode: 7})
	require.NoError(t, err)

	first, second := node.Generate(), node.Generate()
	assert.Greater(t, second.Int64(), first.Int64())
	assert.Equal(t, int64(7), first.Node())
}

func TestNewNodeRejectsOutOfRange(t *testing.T) {
	_, err := NewNode(config.Config{SnowflakeNode: 5000})
	assert.Error(t, err)
}
