package plant

import (
	"github.com/smallbiznis/solarops/internal/plant/repository"
	"github.com/smallbiznis/solarops/internal/plant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("plant.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
