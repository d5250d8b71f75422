package auth

import (
	"github.com/smallbiznis/solarops/internal/auth/repository"
	"github.com/smallbiznis/solarops/internal/auth/service"
	"go.uber.org/fx"
)

// Module provides the user and token repositories and the auth service.
var Module = fx.Module("auth",
	fx.Provide(repository.New, service.New),
)
