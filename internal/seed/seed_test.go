package seed

import (
	"context"
	"testing"

	authdomain "github.com/smallbiznis/solarops/internal/auth/domain"
	"github.com/smallbiznis/solarops/internal/auth/password"
	"github.com/smallbiznis/solarops/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&authdomain.User{}))
	return conn
}

func TestEnsureSystemUserIsIdempotent(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, EnsureSystemUser(ctx, conn, 1))
	require.NoError(t, EnsureSystemUser(ctx, conn, 1))

	var users []authdomain.User
	require.NoError(t, conn.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, int64(1), users[0].ID)
	assert.False(t, users[0].IsActive)
	assert.Nil(t, users[0].PasswordHash)
}

func TestEnsureSystemUserRejectsBadID(t *testing.T) {
	assert.Error(t, EnsureSystemUser(context.Background(), newTestDB(t), 0))
}

func TestEnsureAdminCreatesStaffOnce(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, EnsureSystemUser(ctx, conn, 1))

	admin := Admin{Email: "Admin@Solar.example", Password: "long-enough", Name: "Ops"}
	created, err := EnsureAdmin(ctx, conn, admin)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureAdmin(ctx, conn, admin)
	require.NoError(t, err)
	assert.False(t, created)

	var user authdomain.User
	require.NoError(t, conn.Where("email = ?", "admin@solar.example").Take(&user).Error)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsActive)
	assert.Greater(t, user.ID, int64(1))
	require.NotNil(t, user.PasswordHash)
	assert.True(t, password.Verify("long-enough", *user.PasswordHash))
}

func TestEnsureAdminRejectsShortPassword(t *testing.T) {
	_, err := EnsureAdmin(context.Background(), newTestDB(t), Admin{Email: "a@b.c", Password: "short"})
	assert.Error(t, err)
}
