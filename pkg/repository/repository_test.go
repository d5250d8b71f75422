package repository

import (
	"context"
	"testing"

	"github.com/smallbiznis/solarops/pkg/db"
	"github.com/smallbiznis/solarops/pkg/db/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reading struct {
	ID    int64 `gorm:"primaryKey"`
	Plant string
	Power float64
}

func TestStore(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&reading{}))

	ctx := context.Background()
	s := ProvideStore[reading](conn)
	for _, r := range []*reading{{Plant: "north", Power: 1.5}, {Plant: "north", Power: 2}, {Plant: "south", Power: 3}} {
		require.NoError(t, s.Create(ctx, r))
	}

	rows, err := s.Find(ctx, &reading{Plant: "north"}, option.WithOrder("-id"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2.0, rows[0].Power)

	n, err := s.Count(ctx, nil, option.WithWhere("power > ?", 1.8))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	found, err := s.FindByID(ctx, rows[1].ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "north", found.Plant)

	missing, err := s.FindByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	ok, err := s.Exists(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)
}
