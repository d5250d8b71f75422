package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/solarops/internal/plant/domain"
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

	groups        *domain.GroupStore
	plants        *domain.PlantStore
	loggers       *domain.LoggerStore
	utilityPlants *domain.UtilityPlantStore
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("plant.service"),
		repo:          p.Repo,
		groups:        record.NewStore[domain.PlantGroup](p.Lifecycle),
		plants:        record.NewStore[domain.PowerPlantDetail](p.Lifecycle),
		loggers:       record.NewStore[domain.LoggerCategory](p.Lifecycle),
		utilityPlants: record.NewStore[domain.UtilityPlantID](p.Lifecycle),
	}
}

func (s *Service) Groups() *domain.GroupStore               { return s.groups }
func (s *Service) Plants() *domain.PlantStore               { return s.plants }
func (s *Service) Loggers() *domain.LoggerStore             { return s.loggers }
func (s *Service) UtilityPlants() *domain.UtilityPlantStore { return s.utilityPlants }

func (s *Service) GroupByName(ctx context.Context, name string) (*domain.PlantGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	group, err := s.repo.FindGroupByName(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, record.ErrNotFound
	}
	return group, nil
}

func (s *Service) LoggerByName(ctx context.Context, name string) (*domain.LoggerCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	logger, err := s.repo.FindLoggerByName(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, record.ErrNotFound
	}
	return logger, nil
}

func (s *Service) UtilityPlantByCode(ctx context.Context, code string) (*domain.UtilityPlantID, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrInvalidCode
	}
	plant, err := s.repo.FindUtilityPlantByCode(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	if plant == nil {
		return nil, record.ErrNotFound
	}
	return plant, nil
}

func (s *Service) GroupSummary(ctx context.Context, groupID int64) (domain.GroupCounts, error) {
	if _, err := s.groups.Get(ctx, groupID); err != nil {
		return domain.GroupCounts{}, err
	}
	return s.repo.CountByGroup(ctx, s.db, groupID)
}
