package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByImpact(ctx context.Context, db *gorm.DB, impact Impact, limit int) ([]*MailNotification, error)
	CountByImpact(ctx context.Context, db *gorm.DB) (map[Impact]int64, error)
}
