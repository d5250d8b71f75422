// Package registrytest wires every entity service and the registry over
// in-memory sqlite.
package registrytest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	measurementdomain "github.com/smallbiznis/solarops/internal/measurement/domain"
	measurementrepo "github.com/smallbiznis/solarops/internal/measurement/repository"
	measurementservice "github.com/smallbiznis/solarops/internal/measurement/service"
	notificationdomain "github.com/smallbiznis/solarops/internal/notification/domain"
	notificationrepo "github.com/smallbiznis/solarops/internal/notification/repository"
	notificationservice "github.com/smallbiznis/solarops/internal/notification/service"
	plantdomain "github.com/smallbiznis/solarops/internal/plant/domain"
	plantrepo "github.com/smallbiznis/solarops/internal/plant/repository"
	plantservice "github.com/smallbiznis/solarops/internal/plant/service"
	"github.com/smallbiznis/solarops/internal/record/recordtest"
	"github.com/smallbiznis/solarops/internal/registry"
	utilitydomain "github.com/smallbiznis/solarops/internal/utility/domain"
	utilityrepo "github.com/smallbiznis/solarops/internal/utility/repository"
	utilityservice "github.com/smallbiznis/solarops/internal/utility/service"
)

type Env struct {
	*recordtest.Env
	Registry      *registry.Registry
	Plants        plantdomain.Service
	Measurements  measurementdomain.Service
	Utility       utilitydomain.Service
	Notifications notificationdomain.Service
}

func New(t *testing.T) *Env {
	t.Helper()
	base := recordtest.New(t,
		&plantdomain.PlantGroup{},
		&plantdomain.PowerPlantDetail{},
		&plantdomain.LoggerCategory{},
		&plantdomain.UtilityPlantID{},
		&measurementdomain.GisWeather{},
		&measurementdomain.LoggerPowerGen{},
		&utilitydomain.UtilityMonthlyRevenue{},
		&utilitydomain.UtilityMonthlyExpense{},
		&utilitydomain.UtilityDailyProduction{},
		&utilitydomain.CurtailmentEvent{},
		&notificationdomain.MailNotification{},
	)
	log := zap.NewNop()

	env := &Env{
		Env: base,
		Plants: plantservice.New(plantservice.Params{
			DB: base.DB, Log: log, Lifecycle: base.Lifecycle, Repo: plantrepo.Provide(),
		}),
		Measurements: measurementservice.New(measurementservice.Params{
			DB: base.DB, Log: log, Lifecycle: base.Lifecycle, Repo: measurementrepo.Provide(),
		}),
		Utility: utilityservice.New(utilityservice.Params{
			DB: base.DB, Log: log, Lifecycle: base.Lifecycle, Repo: utilityrepo.Provide(),
		}),
		Notifications: notificationservice.New(notificationservice.Params{
			DB: base.DB, Log: log, Lifecycle: base.Lifecycle, Repo: notificationrepo.Provide(),
		}),
	}

	reg, err := registry.Provide(registry.Params{
		Plants:        env.Plants,
		Measurements:  env.Measurements,
		Utility:       env.Utility,
		Notifications: env.Notifications,
	})
	require.NoError(t, err)
	env.Registry = reg
	return env
}
