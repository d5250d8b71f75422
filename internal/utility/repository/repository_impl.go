package repository

import (
	"context"

	"github.com/smallbiznis/solarops/internal/utility/domain"
	"github.com/smallbiznis/solarops/pkg/db/option"
	"github.com/smallbiznis/solarops/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func forPeriod(plantID int64, period string) []option.QueryOption {
	return []option.QueryOption{
		option.WithWhere("plant_id = ?", plantID),
		option.WithWhere("period = ?", period),
		option.WithOrder("id"),
	}
}

func (r *repo) RevenuesForPeriod(ctx context.Context, db *gorm.DB, plantID int64, period string) ([]*domain.UtilityMonthlyRevenue, error) {
	return repository.ProvideStore[domain.UtilityMonthlyRevenue](db).Find(ctx, nil, forPeriod(plantID, period)...)
}

func (r *repo) ExpensesForPeriod(ctx context.Context, db *gorm.DB, plantID int64, period string) ([]*domain.UtilityMonthlyExpense, error) {
	return repository.ProvideStore[domain.UtilityMonthlyExpense](db).Find(ctx, nil, forPeriod(plantID, period)...)
}

func (r *repo) ProductionForPeriod(ctx context.Context, db *gorm.DB, plantID int64, period string) ([]*domain.UtilityDailyProduction, error) {
	return repository.ProvideStore[domain.UtilityDailyProduction](db).Find(ctx, nil, forPeriod(plantID, period)...)
}

func (r *repo) CurtailmentsForPeriod(ctx context.Context, db *gorm.DB, plantID int64, period string) ([]*domain.CurtailmentEvent, error) {
	return repository.ProvideStore[domain.CurtailmentEvent](db).Find(ctx, nil, forPeriod(plantID, period)...)
}
