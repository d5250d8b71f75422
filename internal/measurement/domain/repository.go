package domain

import (
	"context"

	"github.com/smallbiznis/solarops/internal/record"
	"gorm.io/gorm"
)

type Repository interface {
	WeatherBetween(ctx context.Context, db *gorm.DB, plantID int64, from, to record.Date) ([]*GisWeather, error)
	GenerationBetween(ctx context.Context, db *gorm.DB, loggerID int64, from, to record.Date) ([]*LoggerPowerGen, error)
}
