package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/smallbiznis/solarops/internal/config"
	"github.com/smallbiznis/solarops/internal/migration"
	"github.com/smallbiznis/solarops/internal/seed"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations and seed the default owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				conn *gorm.DB
				cfg  config.Config
			)
			return withApp(baseModules(), func(ctx context.Context) error {
				if err := migration.Apply(conn); err != nil {
					return codeError(2, "migrate up: %s", err)
				}
				if err := seed.EnsureSystemUser(ctx, conn, cfg.DefaultOwnerID); err != nil {
					return codeError(2, "seed default owner: %s", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", conn.Dialector.Name())
				return nil
			}, &conn, &cfg)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back the last applied migrations (postgres only)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return codeError(2, "steps must be a positive integer, got %q", args[0])
				}
				steps = n
			}
			var conn *gorm.DB
			return withApp(baseModules(), func(ctx context.Context) error {
				sqlDB, err := postgresHandle(conn)
				if err != nil {
					return err
				}
				if err := migration.Rollback(sqlDB, steps); err != nil {
					return codeError(2, "migrate down: %s", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
				return nil
			}, &conn)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version (postgres only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var conn *gorm.DB
			return withApp(baseModules(), func(ctx context.Context) error {
				sqlDB, err := postgresHandle(conn)
				if err != nil {
					return err
				}
				v, dirty, err := migration.Version(sqlDB)
				if err != nil {
					return codeError(2, "migrate version: %s", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d dirty=%t\n", v, dirty)
				return nil
			}, &conn)
		},
	})

	return cmd
}

// postgresHandle returns the pool behind conn. Versioned migrations only
// exist for postgres; other dialects are built from the models by "up".
func postgresHandle(conn *gorm.DB) (*sql.DB, error) {
	if name := conn.Dialector.Name(); name != "postgres" {
		return nil, codeError(2, "versioned migrations are not available for %s", name)
	}
	return conn.DB()
}
