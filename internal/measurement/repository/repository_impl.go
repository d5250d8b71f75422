package repository

import (
	"context"

	"github.com/smallbiznis/solarops/internal/measurement/domain"
	"github.com/smallbiznis/solarops/internal/record"
	"github.com/smallbiznis/solarops/pkg/db/option"
	"github.com/smallbiznis/solarops/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) WeatherBetween(ctx context.Context, db *gorm.DB, plantID int64, from, to record.Date) ([]*domain.GisWeather, error) {
	return repository.ProvideStore[domain.GisWeather](db).Find(ctx, nil,
		option.WithWhere("power_plant_id = ?", plantID),
		option.WithWhere("date BETWEEN ? AND ?", from, to),
		option.WithOrder("date"),
	)
}

func (r *repo) GenerationBetween(ctx context.Context, db *gorm.DB, loggerID int64, from, to record.Date) ([]*domain.LoggerPowerGen, error) {
	return repository.ProvideStore[domain.LoggerPowerGen](db).Find(ctx, nil,
		option.WithWhere("logger_id = ?", loggerID),
		option.WithWhere("date BETWEEN ? AND ?", from, to),
		option.WithOrder("date"),
	)
}
