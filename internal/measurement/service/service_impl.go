package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/solarops/internal/measurement/domain"
	"github.com/smallbiznis/solarops/internal/record"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Lifecycle *record.Lifecycle
	Repo      domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository

	weather    *domain.WeatherStore
	generation *domain.GenerationStore
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("measurement.service"),
		repo:       p.Repo,
		weather:    record.NewStore[domain.GisWeather](p.Lifecycle),
		generation: record.NewStore[domain.LoggerPowerGen](p.Lifecycle),
	}
}

func (s *Service) Weather() *domain.WeatherStore       { return s.weather }
func (s *Service) Generation() *domain.GenerationStore { return s.generation }

func (s *Service) WeatherRange(ctx context.Context, plantID int64, from, to record.Date) ([]*domain.GisWeather, error) {
	if to.Time().Before(from.Time()) {
		return nil, domain.ErrInvalidRange
	}
	return s.repo.WeatherBetween(ctx, s.db, plantID, from, to)
}

func (s *Service) GenerationTotal(ctx context.Context, loggerID int64, from, to record.Date) (domain.GenerationSummary, error) {
	summary := domain.GenerationSummary{LoggerID: loggerID, From: from, To: to, Total: decimal.Zero}
	if to.Time().Before(from.Time()) {
		return summary, domain.ErrInvalidRange
	}

	rows, err := s.repo.GenerationBetween(ctx, s.db, loggerID, from, to)
	if err != nil {
		return summary, err
	}
	for _, row := range rows {
		summary.Total = summary.Total.Add(row.PowerGen)
	}
	summary.Days = len(rows)
	return summary, nil
}
