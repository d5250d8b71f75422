package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/solarops/internal/record"
)

type (
	RevenueStore     = record.Store[UtilityMonthlyRevenue, *UtilityMonthlyRevenue]
	ExpenseStore     = record.Store[UtilityMonthlyExpense, *UtilityMonthlyExpense]
	ProductionStore  = record.Store[UtilityDailyProduction, *UtilityDailyProduction]
	CurtailmentStore = record.Store[CurtailmentEvent, *CurtailmentEvent]
)

type Service interface {
	Revenues() *RevenueStore
	Expenses() *ExpenseStore
	Production() *ProductionStore
	Curtailments() *CurtailmentStore

	// Statement aggregates every billing row of one plant for a YYYY-MM period.
	Statement(ctx context.Context, plantID int64, period string) (*Statement, error)
	// ImportCurtailments validates and creates each event independently.
	ImportCurtailments(ctx context.Context, events []*CurtailmentEvent, actor record.Actor) ImportResult
}

type Statement struct {
	PlantID          int64           `json:"plant"`
	Period           string          `json:"period"`
	Contracts        int             `json:"contracts"`
	SalesKWh         decimal.Decimal `json:"sales_kwh"`
	SalesJPY         decimal.Decimal `json:"sales_jpy"`
	UsedKWh          decimal.Decimal `json:"used_kwh"`
	UsedJPY          decimal.Decimal `json:"used_jpy"`
	TaxJPY           decimal.Decimal `json:"tax_jpy"`
	ProductionKWh    decimal.Decimal `json:"production_kwh"`
	ProductionDays   int             `json:"production_days"`
	CurtailmentCount int             `json:"curtailment_events"`
}

type ImportResult struct {
	Created int
	Failed  []ImportFailure
}

type ImportFailure struct {
	Index int
	Err   error
}

var ErrInvalidPeriod = errors.New("invalid_period")
