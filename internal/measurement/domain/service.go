package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/solarops/internal/record"
)

type (
	WeatherStore    = record.Store[GisWeather, *GisWeather]
	GenerationStore = record.Store[LoggerPowerGen, *LoggerPowerGen]
)

type Service interface {
	Weather() *WeatherStore
	Generation() *GenerationStore

	// WeatherRange lists the daily rows of one plant within [from, to].
	WeatherRange(ctx context.Context, plantID int64, from, to record.Date) ([]*GisWeather, error)
	// GenerationTotal sums power_gen of one logger within [from, to].
	GenerationTotal(ctx context.Context, loggerID int64, from, to record.Date) (GenerationSummary, error)
}

type GenerationSummary struct {
	LoggerID int64           `json:"logger"`
	From     record.Date     `json:"from"`
	To       record.Date     `json:"to"`
	Days     int             `json:"days"`
	Total    decimal.Decimal `json:"total"`
}

var ErrInvalidRange = errors.New("invalid_range")
