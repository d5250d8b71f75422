package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	plantdomain "github.com/smallbiznis/solarops/internal/plant/domain"
	"github.com/smallbiznis/solarops/internal/record"
)

// GisWeather is the daily irradiance and specific yield of one plant.
type GisWeather struct {
	record.Key
	PowerPlantID int64                         `json:"power_plant" gorm:"column:power_plant_id;not null;uniqueIndex:ux_gis_weathers_plant_date,priority:1"`
	PowerPlant   *plantdomain.PowerPlantDetail `json:"-" gorm:"foreignKey:PowerPlantID;constraint:OnDelete:CASCADE"`
	GHI          decimal.Decimal               `json:"ghi" gorm:"column:ghi;type:decimal(8,3);not null"`
	GTI          decimal.Decimal               `json:"gti" gorm:"column:gti;type:decimal(8,3);not null"`
	PVOut        decimal.Decimal               `json:"pvout" gorm:"column:pvout;type:decimal(8,3);not null"`
	Date         *record.Date                  `json:"date" gorm:"column:date;uniqueIndex:ux_gis_weathers_plant_date,priority:2"`
	record.Audit
}

func (GisWeather) TableName() string { return "gis_weathers" }

func (g *GisWeather) Label() string {
	plant := strconv.FormatInt(g.PowerPlantID, 10)
	if g.PowerPlant != nil {
		plant = g.PowerPlant.SystemID
	}
	return fmt.Sprintf("GIS data for %s on %s", plant, dateLabel(g.Date))
}

func (g *GisWeather) CheckFields() error {
	var f record.Fields
	f.Decimal("ghi", g.GHI, 8, 3)
	f.Decimal("gti", g.GTI, 8, 3)
	f.Decimal("pvout", g.PVOut, 8, 3)
	return f.Err()
}

func (g *GisWeather) References() []record.Reference {
	return []record.Reference{{Field: "power_plant", Table: "power_plant_details", ID: g.PowerPlantID}}
}

// LoggerPowerGen is the daily generation reported by one logger.
type LoggerPowerGen struct {
	record.Key
	LoggerID int64                       `json:"logger" gorm:"column:logger_id;not null;uniqueIndex:ux_logger_power_gens_logger_date,priority:1"`
	Logger   *plantdomain.LoggerCategory `json:"-" gorm:"foreignKey:LoggerID;constraint:OnDelete:CASCADE"`
	PowerGen decimal.Decimal             `json:"power_gen" gorm:"column:power_gen;type:decimal(10,4);not null"`
	Date     *record.Date                `json:"date" gorm:"column:date;uniqueIndex:ux_logger_power_gens_logger_date,priority:2"`
	record.Audit
}

func (LoggerPowerGen) TableName() string { return "logger_power_gens" }

func (l *LoggerPowerGen) Label() string {
	logger := strconv.FormatInt(l.LoggerID, 10)
	if l.Logger != nil {
		logger = l.Logger.LoggerName
	}
	return fmt.Sprintf("%s on %s", logger, dateLabel(l.Date))
}

// ApplyDefaults sets a missing date to today in the configured zone.
func (l *LoggerPowerGen) ApplyDefaults(now time.Time) {
	if l.Date == nil {
		today := record.DateOf(now)
		l.Date = &today
	}
}

func (l *LoggerPowerGen) CheckFields() error {
	var f record.Fields
	f.Decimal("power_gen", l.PowerGen, 10, 4)
	return f.Err()
}

func (l *LoggerPowerGen) References() []record.Reference {
	return []record.Reference{{Field: "logger", Table: "logger_categories", ID: l.LoggerID}}
}

func dateLabel(d *record.Date) string {
	if d == nil {
		return "None"
	}
	return d.String()
}
