package main

import (
	"github.com/smallbiznis/solarops/internal/clock"
	"github.com/smallbiznis/solarops/internal/config"
	"github.com/smallbiznis/solarops/internal/idgen"
	"github.com/smallbiznis/solarops/internal/migration"
	"github.com/smallbiznis/solarops/internal/observability"
	"github.com/smallbiznis/solarops/internal/server"
	"github.com/smallbiznis/solarops/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		idgen.Module,
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}
