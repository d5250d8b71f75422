package main

import (
	"context"
	"time"

	"github.com/smallbiznis/solarops/internal/audit"
	"github.com/smallbiznis/solarops/internal/auth"
	"github.com/smallbiznis/solarops/internal/clock"
	"github.com/smallbiznis/solarops/internal/config"
	"github.com/smallbiznis/solarops/internal/idgen"
	"github.com/smallbiznis/solarops/internal/measurement"
	"github.com/smallbiznis/solarops/internal/notification"
	"github.com/smallbiznis/solarops/internal/observability"
	"github.com/smallbiznis/solarops/internal/plant"
	"github.com/smallbiznis/solarops/internal/record"
	"github.com/smallbiznis/solarops/internal/registry"
	"github.com/smallbiznis/solarops/internal/utility"
	"github.com/smallbiznis/solarops/pkg/db"
	"github.com/smallbiznis/solarops/pkg/telemetry/correlation"
	"go.uber.org/fx"
)

const appTimeout = 30 * time.Second

func baseModules() []fx.Option {
	return []fx.Option{
		fx.NopLogger,
		config.Module,
		observability.Module,
		db.Module,
	}
}

func serviceModules() []fx.Option {
	return append(baseModules(),
		idgen.Module,
		clock.Module,
		record.Module,
		audit.Module,
		auth.Module,
		plant.Module,
		measurement.Module,
		utility.Module,
		notification.Module,
		registry.Module,
	)
}

// withApp starts modules without the HTTP server, fills targets through
// fx.Populate and runs fn before stopping the graph again.
func withApp(modules []fx.Option, fn func(ctx context.Context) error, targets ...any) error {
	app := fx.New(append(modules, fx.Populate(targets...))...)

	startCtx, cancel := context.WithTimeout(context.Background(), appTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return codeError(3, "starting: %s", err)
	}

	ctx, _ := correlation.EnsureCorrelationID(context.Background())
	runErr := fn(ctx)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), appTimeout)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
