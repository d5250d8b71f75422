package measurement

import (
	"github.com/smallbiznis/solarops/internal/measurement/repository"
	"github.com/smallbiznis/solarops/internal/measurement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("measurement.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
