package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository resolves plant topology rows by their natural keys.
type Repository interface {
	FindGroupByName(ctx context.Context, db *gorm.DB, name string) (*PlantGroup, error)
	FindLoggerByName(ctx context.Context, db *gorm.DB, name string) (*LoggerCategory, error)
	FindUtilityPlantByCode(ctx context.Context, db *gorm.DB, code string) (*UtilityPlantID, error)
	CountByGroup(ctx context.Context, db *gorm.DB, groupID int64) (GroupCounts, error)
}

// GroupCounts is the number of direct children of one group.
type GroupCounts struct {
	Plants        int64 `json:"plants"`
	Loggers       int64 `json:"loggers"`
	UtilityPlants int64 `json:"utility_plants"`
}
