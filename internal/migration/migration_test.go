package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/smallbiznis/solarops/pkg/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	require.NoError(t, err)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	require.NotEmpty(t, ups)
	require.Equal(t, ups, downs)
}

func TestInitMigrationCreatesEveryModelTable(t *testing.T) {
	raw, err := fs.ReadFile(embeddedMigrations, migrationsDir+"/000001_init.up.sql")
	require.NoError(t, err)
	sql := string(raw)

	for _, m := range Models() {
		tabler, ok := m.(schema.Tabler)
		require.True(t, ok, "%T has no table name", m)
		require.Contains(t, sql, "CREATE TABLE IF NOT EXISTS "+tabler.TableName()+" (")
	}
}

func TestApplyAutoMigratesSQLite(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, Apply(conn))

	for _, m := range Models() {
		require.True(t, conn.Migrator().HasTable(m), "%T", m)
	}
}
