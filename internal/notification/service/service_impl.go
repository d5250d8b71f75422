package service

import (
	"context"

	"github.com/smallbiznis/solarops/internal/notification/domain"
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
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	mails *domain.MailStore
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("notification.service"),
		repo:  p.Repo,
		mails: record.NewStore[domain.MailNotification](p.Lifecycle),
	}
}

func (s *Service) Mails() *domain.MailStore { return s.mails }

func (s *Service) ByImpact(ctx context.Context, impact domain.Impact, limit int) ([]*domain.MailNotification, error) {
	parsed, err := domain.ParseImpact(string(impact))
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.FindByImpact(ctx, s.db, parsed, limit)
}

func (s *Service) ImpactBreakdown(ctx context.Context) (map[domain.Impact]int64, error) {
	return s.repo.CountByImpact(ctx, s.db)
}
