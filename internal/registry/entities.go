package registry

import (
	measurementdomain "github.com/smallbiznis/solarops/internal/measurement/domain"
	notificationdomain "github.com/smallbiznis/solarops/internal/notification/domain"
	plantdomain "github.com/smallbiznis/solarops/internal/plant/domain"
	utilitydomain "github.com/smallbiznis/solarops/internal/utility/domain"
	"go.uber.org/fx"
)

var auditColumns = []string{"active", "created_at", "updated_at", "owner"}

func withAudit(columns ...string) []string {
	return append(append([]string{LabelColumn}, columns...), auditColumns...)
}

var (
	groupRelation        = map[string]Relation{"group": {Table: "plant_groups", Column: "group_id"}}
	utilityPlantRelation = map[string]Relation{"plant": {Table: "utility_plant_ids", Column: "plant_id"}}
)

type Params struct {
	fx.In

	Plants        plantdomain.Service
	Measurements  measurementdomain.Service
	Utility       utilitydomain.Service
	Notifications notificationdomain.Service
}

// Provide registers the eleven audited entities.
func Provide(p Params) (*Registry, error) {
	return New(
		&Descriptor{
			Name:         "PlantGroup",
			ListDisplay:  withAudit("name"),
			SearchFields: []string{"name", "owner__email"},
			Accessor:     Bind(p.Plants.Groups()),
		},
		&Descriptor{
			Name:         "PowerPlantDetail",
			ListDisplay:  withAudit("system_name", "system_id", "group", "country_name", "latitude", "longitude", "azimuth", "tilt", "capacity_dc"),
			SearchFields: []string{"system_name", "system_id", "country_name", "group__name", "owner__email"},
			Relations:    groupRelation,
			Accessor:     Bind(p.Plants.Plants()),
		},
		&Descriptor{
			Name:         "LoggerCategory",
			ListDisplay:  withAudit("logger_name", "group", "alternate_plant_id"),
			SearchFields: []string{"logger_name", "alternate_plant_id", "owner__email"},
			Relations:    groupRelation,
			Accessor:     Bind(p.Plants.Loggers()),
		},
		&Descriptor{
			Name:         "UtilityPlantID",
			ListDisplay:  withAudit("plant_id", "group"),
			SearchFields: []string{"plant_id", "owner__email"},
			Relations:    groupRelation,
			Accessor:     Bind(p.Plants.UtilityPlants()),
		},
		&Descriptor{
			Name:         "GisWeather",
			ListDisplay:  withAudit("power_plant", "date", "ghi", "gti", "pvout"),
			SearchFields: []string{"power_plant__system_id", "date", "owner__email"},
			Relations:    map[string]Relation{"power_plant": {Table: "power_plant_details", Column: "power_plant_id"}},
			Accessor:     Bind(p.Measurements.Weather()),
		},
		&Descriptor{
			Name:         "LoggerPowerGen",
			ListDisplay:  withAudit("logger", "power_gen", "date"),
			SearchFields: []string{"logger__logger_name", "date", "owner__email"},
			Relations:    map[string]Relation{"logger": {Table: "logger_categories", Column: "logger_id"}},
			Accessor:     Bind(p.Measurements.Generation()),
		},
		&Descriptor{
			Name:         "UtilityMonthlyRevenue",
			ListDisplay:  withAudit("plant", "contract_id", "start_date", "end_date", "capacity_kw", "sales_days", "sales_kwh", "sales_jpy", "tax_jpy", "avg_daily_kwh", "period"),
			SearchFields: []string{"plant__plant_id", "contract_id", "owner__email"},
			Relations:    utilityPlantRelation,
			Accessor:     Bind(p.Utility.Revenues()),
		},
		&Descriptor{
			Name:         "UtilityMonthlyExpense",
			ListDisplay:  withAudit("plant", "used_kwh", "used_jpy", "tax_jpy", "period"),
			SearchFields: []string{"plant__plant_id", "owner__email"},
			Relations:    utilityPlantRelation,
			Accessor:     Bind(p.Utility.Expenses()),
		},
		&Descriptor{
			Name:         "UtilityDailyProduction",
			ListDisplay:  withAudit("plant", "production_kwh", "production_date", "period"),
			SearchFields: []string{"plant__plant_id", "production_date", "owner__email"},
			Relations:    utilityPlantRelation,
			Accessor:     Bind(p.Utility.Production()),
		},
		&Descriptor{
			Name:         "CurtailmentEvent",
			ListDisplay:  withAudit("plant", "date", "start_time", "end_time", "period"),
			SearchFields: []string{"plant__plant_id", "period", "owner__email"},
			Relations:    utilityPlantRelation,
			Accessor:     Bind(p.Utility.Curtailments()),
		},
		&Descriptor{
			Name:         "MailNotification",
			ListDisplay:  withAudit("from", "to", "date", "mail_datetime_text", "subject", "impact", "memo"),
			SearchFields: []string{"from_address", "to_address", "subject", "owner__email"},
			Accessor:     Bind(p.Notifications.Mails()),
		},
	)
}

var Module = fx.Module("registry",
	fx.Provide(Provide),
)
