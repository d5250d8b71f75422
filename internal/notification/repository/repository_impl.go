package repository

import (
	"context"

	"github.com/smallbiznis/solarops/internal/notification/domain"
	"github.com/smallbiznis/solarops/pkg/db/option"
	"github.com/smallbiznis/solarops/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByImpact(ctx context.Context, db *gorm.DB, impact domain.Impact, limit int) ([]*domain.MailNotification, error) {
	return repository.ProvideStore[domain.MailNotification](db).Find(ctx, nil,
		option.WithWhere("impact = ?", impact),
		option.WithOrder("-id"),
		option.WithLimit(limit),
	)
}

func (r *repo) CountByImpact(ctx context.Context, db *gorm.DB) (map[domain.Impact]int64, error) {
	var rows []struct {
		Impact domain.Impact
		Total  int64
	}
	err := db.WithContext(ctx).
		Model(&domain.MailNotification{}).
		Select("impact, COUNT(*) AS total").
		Group("impact").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.Impact]int64, len(rows))
	for _, row := range rows {
		counts[row.Impact] = row.Total
	}
	return counts, nil
}
