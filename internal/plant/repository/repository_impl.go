package repository

import (
	"context"

	"github.com/smallbiznis/solarops/internal/plant/domain"
	"github.com/smallbiznis/solarops/pkg/db/option"
	"github.com/smallbiznis/solarops/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindGroupByName(ctx context.Context, db *gorm.DB, name string) (*domain.PlantGroup, error) {
	return repository.ProvideStore[domain.PlantGroup](db).
		FindOne(ctx, nil, option.WithWhere("name = ?", name))
}

func (r *repo) FindLoggerByName(ctx context.Context, db *gorm.DB, name string) (*domain.LoggerCategory, error) {
	return repository.ProvideStore[domain.LoggerCategory](db).
		FindOne(ctx, nil, option.WithWhere("logger_name = ?", name))
}

func (r *repo) FindUtilityPlantByCode(ctx context.Context, db *gorm.DB, code string) (*domain.UtilityPlantID, error) {
	return repository.ProvideStore[domain.UtilityPlantID](db).
		FindOne(ctx, nil, option.WithWhere("plant_id = ?", code))
}

func (r *repo) CountByGroup(ctx context.Context, db *gorm.DB, groupID int64) (domain.GroupCounts, error) {
	var counts domain.GroupCounts
	byGroup := option.WithWhere("group_id = ?", groupID)

	var err error
	if counts.Plants, err = repository.ProvideStore[domain.PowerPlantDetail](db).Count(ctx, nil, byGroup); err != nil {
		return counts, err
	}
	if counts.Loggers, err = repository.ProvideStore[domain.LoggerCategory](db).Count(ctx, nil, byGroup); err != nil {
		return counts, err
	}
	if counts.UtilityPlants, err = repository.ProvideStore[domain.UtilityPlantID](db).Count(ctx, nil, byGroup); err != nil {
		return counts, err
	}
	return counts, nil
}
