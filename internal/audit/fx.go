package audit

import (
	"github.com/smallbiznis/solarops/internal/audit/domain"
	"github.com/smallbiznis/solarops/internal/audit/repository"
	"github.com/smallbiznis/solarops/internal/audit/service"
	"github.com/smallbiznis/solarops/internal/record"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Provide(func(s domain.Service) record.Recorder { return s }),
)
