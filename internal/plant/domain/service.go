package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/solarops/internal/record"
)

type (
	GroupStore        = record.Store[PlantGroup, *PlantGroup]
	PlantStore        = record.Store[PowerPlantDetail, *PowerPlantDetail]
	LoggerStore       = record.Store[LoggerCategory, *LoggerCategory]
	UtilityPlantStore = record.Store[UtilityPlantID, *UtilityPlantID]
)

type Service interface {
	Groups() *GroupStore
	Plants() *PlantStore
	Loggers() *LoggerStore
	UtilityPlants() *UtilityPlantStore

	GroupByName(ctx context.Context, name string) (*PlantGroup, error)
	LoggerByName(ctx context.Context, name string) (*LoggerCategory, error)
	UtilityPlantByCode(ctx context.Context, code string) (*UtilityPlantID, error)
	GroupSummary(ctx context.Context, groupID int64) (GroupCounts, error)
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidCode = errors.New("invalid_code")
)
