package migration

import (
	auditdomain "github.com/smallbiznis/solarops/internal/audit/domain"
	authdomain "github.com/smallbiznis/solarops/internal/auth/domain"
	measurementdomain "github.com/smallbiznis/solarops/internal/measurement/domain"
	notificationdomain "github.com/smallbiznis/solarops/internal/notification/domain"
	plantdomain "github.com/smallbiznis/solarops/internal/plant/domain"
	utilitydomain "github.com/smallbiznis/solarops/internal/utility/domain"
)

// Models lists every table in dependency order, parents first.
func Models() []any {
	return []any{
		&authdomain.User{},
		&authdomain.Token{},
		&auditdomain.AuditLog{},
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
	}
}
