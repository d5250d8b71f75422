package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/solarops/internal/record"
)

// Resource is the generation technology of a plant.
type Resource string

const (
	ResourceSolar   Resource = "Solar"
	ResourceBiomass Resource = "Biomass"
	ResourceWind    Resource = "Wind"
)

// PlantGroup groups plants, loggers and utility plant ids.
type PlantGroup struct {
	record.Key
	Name string `json:"name" gorm:"column:name;size:100;not null;uniqueIndex:ux_plant_groups_name"`
	record.Audit
}

func (PlantGroup) TableName() string { return "plant_groups" }

func (g *PlantGroup) Label() string { return g.Name }

func (g *PlantGroup) CheckFields() error {
	var f record.Fields
	f.Required("name", g.Name)
	f.MaxLength("name", g.Name, 100)
	return f.Err()
}

// PowerPlantDetail holds the physical attributes of one plant.
type PowerPlantDetail struct {
	record.Key
	SystemName   string              `json:"system_name" gorm:"column:system_name;size:50;not null;uniqueIndex:ux_power_plant_details_system,priority:1"`
	SystemID     string              `json:"system_id" gorm:"column:system_id;size:50;not null;uniqueIndex:ux_power_plant_details_system,priority:2"`
	CustomerName string              `json:"customer_name" gorm:"column:customer_name;size:100;not null"`
	Resource     Resource            `json:"resource" gorm:"column:resource;size:100;not null;default:Solar"`
	CountryName  string              `json:"country_name" gorm:"column:country_name;size:100;not null"`
	Latitude     decimal.Decimal     `json:"latitude" gorm:"column:latitude;type:decimal(15,12);not null"`
	Longitude    decimal.Decimal     `json:"longitude" gorm:"column:longitude;type:decimal(15,12);not null"`
	Altitude     decimal.Decimal     `json:"altitude" gorm:"column:altitude;type:decimal(10,4);not null"`
	Azimuth      decimal.Decimal     `json:"azimuth" gorm:"column:azimuth;type:decimal(10,4);not null"`
	Tilt         decimal.Decimal     `json:"tilt" gorm:"column:tilt;type:decimal(10,4);not null"`
	CapacityDC   decimal.Decimal     `json:"capacity_dc" gorm:"column:capacity_dc;type:decimal(10,2);not null"`
	CapacityAC   decimal.NullDecimal `json:"capacity_ac" gorm:"column:capacity_ac;type:decimal(10,2)"`
	Location     *string             `json:"location" gorm:"column:location;size:255"`
	GroupID      int64               `json:"group" gorm:"column:group_id;not null;uniqueIndex:ux_power_plant_details_system,priority:3"`
	Group        *PlantGroup         `json:"-" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	record.Audit
}

func (PowerPlantDetail) TableName() string { return "power_plant_details" }

func (p *PowerPlantDetail) Label() string {
	group := strconv.FormatInt(p.GroupID, 10)
	if p.Group != nil {
		group = p.Group.Name
	}
	return fmt.Sprintf("%s of %s", p.SystemID, group)
}

func (p *PowerPlantDetail) ApplyDefaults(time.Time) {
	if p.Resource == "" {
		p.Resource = ResourceSolar
	}
}

func (p *PowerPlantDetail) CheckFields() error {
	var f record.Fields
	f.Required("system_name", p.SystemName)
	f.MaxLength("system_name", p.SystemName, 50)
	f.Required("system_id", p.SystemID)
	f.MaxLength("system_id", p.SystemID, 50)
	f.Required("customer_name", p.CustomerName)
	f.MaxLength("customer_name", p.CustomerName, 100)
	f.OneOf("resource", string(p.Resource), string(ResourceSolar), string(ResourceBiomass), string(ResourceWind))
	f.Required("country_name", p.CountryName)
	f.MaxLength("country_name", p.CountryName, 100)
	f.Decimal("latitude", p.Latitude, 15, 12)
	f.Decimal("longitude", p.Longitude, 15, 12)
	f.Decimal("altitude", p.Altitude, 10, 4)
	f.Decimal("azimuth", p.Azimuth, 10, 4)
	f.Decimal("tilt", p.Tilt, 10, 4)
	f.Decimal("capacity_dc", p.CapacityDC, 10, 2)
	f.NullDecimal("capacity_ac", p.CapacityAC, 10, 2)
	f.MaxLengthPtr("location", p.Location, 255)
	return f.Err()
}

func (p *PowerPlantDetail) References() []record.Reference {
	return []record.Reference{{Field: "group", Table: "plant_groups", ID: p.GroupID}}
}

// LoggerCategory identifies one data logger.
type LoggerCategory struct {
	record.Key
	LoggerName       string      `json:"logger_name" gorm:"column:logger_name;size:100;not null;uniqueIndex:ux_logger_categories_name"`
	AlternatePlantID *string     `json:"alternate_plant_id" gorm:"column:alternate_plant_id;size:100"`
	GroupID          int64       `json:"group" gorm:"column:group_id;not null;index"`
	Group            *PlantGroup `json:"-" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	record.Audit
}

func (LoggerCategory) TableName() string { return "logger_categories" }

func (l *LoggerCategory) Label() string { return l.LoggerName }

func (l *LoggerCategory) CheckFields() error {
	var f record.Fields
	f.Required("logger_name", l.LoggerName)
	f.MaxLength("logger_name", l.LoggerName, 100)
	f.MaxLengthPtr("alternate_plant_id", l.AlternatePlantID, 100)
	return f.Err()
}

func (l *LoggerCategory) References() []record.Reference {
	return []record.Reference{{Field: "group", Table: "plant_groups", ID: l.GroupID}}
}

// UtilityPlantID is the billing-side identity of a plant.
type UtilityPlantID struct {
	record.Key
	PlantID          string      `json:"plant_id" gorm:"column:plant_id;size:100;not null;uniqueIndex:ux_utility_plant_ids_plant"`
	AlternatePlantID *string     `json:"alternate_plant_id" gorm:"column:alternate_plant_id;size:100"`
	GroupID          int64       `json:"group" gorm:"column:group_id;not null;index"`
	Group            *PlantGroup `json:"-" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	record.Audit
}

func (UtilityPlantID) TableName() string { return "utility_plant_ids" }

func (u *UtilityPlantID) Label() string { return u.PlantID }

func (u *UtilityPlantID) CheckFields() error {
	var f record.Fields
	f.Required("plant_id", u.PlantID)
	f.MaxLength("plant_id", u.PlantID, 100)
	f.MaxLengthPtr("alternate_plant_id", u.AlternatePlantID, 100)
	return f.Err()
}

func (u *UtilityPlantID) References() []record.Reference {
	return []record.Reference{{Field: "group", Table: "plant_groups", ID: u.GroupID}}
}
