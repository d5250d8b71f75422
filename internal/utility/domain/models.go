package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	plantdomain "github.com/smallbiznis/solarops/internal/plant/domain"
	"github.com/smallbiznis/solarops/internal/record"
	"gorm.io/datatypes"
)

// PeriodLength is the size of a YYYY-MM period key.
const PeriodLength = 7

// UtilityMonthlyRevenue is one monthly sales statement of a utility plant.
type UtilityMonthlyRevenue struct {
	record.Key
	PlantID     int64                       `json:"plant" gorm:"column:plant_id;not null;uniqueIndex:ux_utility_monthly_revenues_period,priority:1"`
	Plant       *plantdomain.UtilityPlantID `json:"-" gorm:"foreignKey:PlantID;constraint:OnDelete:CASCADE"`
	ContractID  *string                     `json:"contract_id" gorm:"column:contract_id;size:50;uniqueIndex:ux_utility_monthly_revenues_period,priority:2"`
	StartDate   *record.Date                `json:"start_date" gorm:"column:start_date"`
	EndDate     *record.Date                `json:"end_date" gorm:"column:end_date"`
	CapacityKW  decimal.NullDecimal         `json:"capacity_kw" gorm:"column:capacity_kw;type:decimal(10,2)"`
	SalesDays   *int                        `json:"sales_days" gorm:"column:sales_days"`
	SalesKWh    decimal.NullDecimal         `json:"sales_kwh" gorm:"column:sales_kwh;type:decimal(10,2)"`
	SalesJPY    decimal.NullDecimal         `json:"sales_jpy" gorm:"column:sales_jpy;type:decimal(10,2)"`
	TaxJPY      decimal.NullDecimal         `json:"tax_jpy" gorm:"column:tax_jpy;type:decimal(10,2)"`
	AvgDailyKWh decimal.NullDecimal         `json:"avg_daily_kwh" gorm:"column:avg_daily_kwh;type:decimal(10,2)"`
	Period      *string                     `json:"period" gorm:"column:period;size:7;uniqueIndex:ux_utility_monthly_revenues_period,priority:3"`
	record.Audit
}

func (UtilityMonthlyRevenue) TableName() string { return "utility_monthly_revenues" }

func (r *UtilityMonthlyRevenue) Label() string {
	return fmt.Sprintf("Revenue for %s in %s", plantLabel(r.Plant, r.PlantID), textLabel(r.Period))
}

func (r *UtilityMonthlyRevenue) CheckFields() error {
	var f record.Fields
	f.MaxLengthPtr("contract_id", r.ContractID, 50)
	f.NullDecimal("capacity_kw", r.CapacityKW, 10, 2)
	f.NullDecimal("sales_kwh", r.SalesKWh, 10, 2)
	f.NullDecimal("sales_jpy", r.SalesJPY, 10, 2)
	f.NullDecimal("tax_jpy", r.TaxJPY, 10, 2)
	f.NullDecimal("avg_daily_kwh", r.AvgDailyKWh, 10, 2)
	f.MaxLengthPtr("period", r.Period, PeriodLength)
	return f.Err()
}

func (r *UtilityMonthlyRevenue) References() []record.Reference {
	return plantReference(r.PlantID)
}

// UtilityMonthlyExpense is one monthly purchase statement of a utility plant.
type UtilityMonthlyExpense struct {
	record.Key
	PlantID int64                       `json:"plant" gorm:"column:plant_id;not null;uniqueIndex:ux_utility_monthly_expenses_period,priority:1"`
	Plant   *plantdomain.UtilityPlantID `json:"-" gorm:"foreignKey:PlantID;constraint:OnDelete:CASCADE"`
	UsedKWh decimal.NullDecimal         `json:"used_kwh" gorm:"column:used_kwh;type:decimal(10,2)"`
	UsedJPY decimal.NullDecimal         `json:"used_jpy" gorm:"column:used_jpy;type:decimal(10,2)"`
	TaxJPY  decimal.NullDecimal         `json:"tax_jpy" gorm:"column:tax_jpy;type:decimal(10,2)"`
	Period  *string                     `json:"period" gorm:"column:period;size:7;uniqueIndex:ux_utility_monthly_expenses_period,priority:2"`
	record.Audit
}

func (UtilityMonthlyExpense) TableName() string { return "utility_monthly_expenses" }

func (e *UtilityMonthlyExpense) Label() string {
	return fmt.Sprintf("Expense for %s in %s", plantLabel(e.Plant, e.PlantID), textLabel(e.Period))
}

func (e *UtilityMonthlyExpense) CheckFields() error {
	var f record.Fields
	f.NullDecimal("used_kwh", e.UsedKWh, 10, 2)
	f.NullDecimal("used_jpy", e.UsedJPY, 10, 2)
	f.NullDecimal("tax_jpy", e.TaxJPY, 10, 2)
	f.MaxLengthPtr("period", e.Period, PeriodLength)
	return f.Err()
}

func (e *UtilityMonthlyExpense) References() []record.Reference {
	return plantReference(e.PlantID)
}

// UtilityDailyProduction is the metered production of one day.
type UtilityDailyProduction struct {
	record.Key
	PlantID        int64                       `json:"plant" gorm:"column:plant_id;not null;uniqueIndex:ux_utility_daily_productions_day,priority:1"`
	Plant          *plantdomain.UtilityPlantID `json:"-" gorm:"foreignKey:PlantID;constraint:OnDelete:CASCADE"`
	ProductionKWh  decimal.NullDecimal         `json:"production_kwh" gorm:"column:production_kwh;type:decimal(10,2)"`
	ProductionDate *record.Date                `json:"production_date" gorm:"column:production_date;uniqueIndex:ux_utility_daily_productions_day,priority:2"`
	Period         *string                     `json:"period" gorm:"column:period;size:7"`
	record.Audit
}

func (UtilityDailyProduction) TableName() string { return "utility_daily_productions" }

func (p *UtilityDailyProduction) Label() string {
	return fmt.Sprintf("Production for %s on %s", plantLabel(p.Plant, p.PlantID), dateLabel(p.ProductionDate))
}

func (p *UtilityDailyProduction) CheckFields() error {
	var f record.Fields
	f.NullDecimal("production_kwh", p.ProductionKWh, 10, 2)
	f.MaxLengthPtr("period", p.Period, PeriodLength)
	return f.Err()
}

func (p *UtilityDailyProduction) References() []record.Reference {
	return plantReference(p.PlantID)
}

// CurtailmentEvent is a window in which the grid operator limited output.
type CurtailmentEvent struct {
	record.Key
	PlantID   int64                       `json:"plant" gorm:"column:plant_id;not null;uniqueIndex:ux_curtailment_events_day,priority:1"`
	Plant     *plantdomain.UtilityPlantID `json:"-" gorm:"foreignKey:PlantID;constraint:OnDelete:CASCADE"`
	Date      *record.Date                `json:"date" gorm:"column:date;uniqueIndex:ux_curtailment_events_day,priority:2"`
	StartTime *datatypes.Time             `json:"start_time" gorm:"column:start_time"`
	EndTime   *datatypes.Time             `json:"end_time" gorm:"column:end_time"`
	Period    *string                     `json:"period" gorm:"column:period;size:7"`
	record.Audit
}

func (CurtailmentEvent) TableName() string { return "curtailment_events" }

func (c *CurtailmentEvent) Label() string {
	return fmt.Sprintf("Curtailment Event for %s on %s", plantLabel(c.Plant, c.PlantID), dateLabel(c.Date))
}

// Validate is the explicit cross-field check; writes do not run it.
func (c *CurtailmentEvent) Validate() error {
	if c.StartTime != nil && c.EndTime != nil && time.Duration(*c.EndTime) <= time.Duration(*c.StartTime) {
		return record.Invalid("end_time", "End time must be later than start time.")
	}
	return nil
}

func (c *CurtailmentEvent) CheckFields() error {
	var f record.Fields
	f.MaxLengthPtr("period", c.Period, PeriodLength)
	return f.Err()
}

func (c *CurtailmentEvent) References() []record.Reference {
	return plantReference(c.PlantID)
}

func plantReference(id int64) []record.Reference {
	return []record.Reference{{Field: "plant", Table: "utility_plant_ids", ID: id}}
}

func plantLabel(plant *plantdomain.UtilityPlantID, id int64) string {
	if plant != nil {
		return plant.PlantID
	}
	return strconv.FormatInt(id, 10)
}

func dateLabel(d *record.Date) string {
	if d == nil {
		return "None"
	}
	return d.String()
}

func textLabel(s *string) string {
	if s == nil {
		return "None"
	}
	return *s
}
