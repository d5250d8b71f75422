package migration

import (
	"context"

	"github.com/smallbiznis/solarops/internal/config"
	"github.com/smallbiznis/solarops/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		log = log.Named("migration")
		if cfg.DBAutoMigrate {
			if err := Apply(conn); err != nil {
				return err
			}
			log.Info("schema up to date", zap.String("dialect", conn.Dialector.Name()))
		}

		ctx := context.Background()
		if err := seed.EnsureSystemUser(ctx, conn, cfg.DefaultOwnerID); err != nil {
			return err
		}
		if cfg.Bootstrap.EnsureAdmin {
			created, err := seed.EnsureAdmin(ctx, conn, seed.Admin{
				Email:    cfg.Bootstrap.AdminEmail,
				Password: cfg.Bootstrap.AdminPassword,
				Name:     cfg.Bootstrap.AdminName,
			})
			if err != nil {
				return err
			}
			if created {
				log.Info("bootstrap admin created", zap.String("email", cfg.Bootstrap.AdminEmail))
			}
		}
		return nil
	}),
)
