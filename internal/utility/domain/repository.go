package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	RevenuesForPeriod(ctx context.Context, db *gorm.DB, plantID int64, period string) ([]*UtilityMonthlyRevenue, error)
	ExpensesForPeriod(ctx context.Context, db *gorm.DB, plantID int64, period string) ([]*UtilityMonthlyExpense, error)
	ProductionForPeriod(ctx context.Context, db *gorm.DB, plantID int64, period string) ([]*UtilityDailyProduction, error)
	CurtailmentsForPeriod(ctx context.Context, db *gorm.DB, plantID int64, period string) ([]*CurtailmentEvent, error)
}
