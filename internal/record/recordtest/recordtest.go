// Package recordtest wires a Lifecycle over in-memory sqlite for package tests.
package recordtest

import (
	"context"
	"testing"
	"time"

	authdomain "github.com/smallbiznis/solarops/internal/auth/domain"
	"github.com/smallbiznis/solarops/internal/clock"
	"github.com/smallbiznis/solarops/internal/config"
	"github.com/smallbiznis/solarops/internal/record"
	"github.com/smallbiznis/solarops/internal/seed"
	"github.com/smallbiznis/solarops/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Epoch is the fake clock start used across entity tests.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type Env struct {
	DB        *gorm.DB
	Clock     *clock.FakeClock
	Lifecycle *record.Lifecycle
	Config    config.Config
}

// New migrates models into a fresh database next to the users table, seeds
// the default owner and returns a Lifecycle bound to it.
func New(t *testing.T, models ...any) *Env {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(append([]any{&authdomain.User{}}, models...)...))

	cfg := config.Config{DefaultOwnerID: 1, TimeZone: "Asia/Tokyo"}
	require.NoError(t, seed.EnsureSystemUser(context.Background(), conn, cfg.DefaultOwnerID))
	clk := clock.NewFakeClock(Epoch)
	return &Env{
		DB:     conn,
		Clock:  clk,
		Config: cfg,
		Lifecycle: record.NewLifecycle(record.LifecycleParams{
			DB:     conn,
			Log:    zap.NewNop(),
			Config: cfg,
			Clock:  clk,
		}),
	}
}
