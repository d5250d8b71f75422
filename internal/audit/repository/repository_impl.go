package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/solarops/internal/audit/domain"
	"github.com/smallbiznis/solarops/pkg/db/option"
	"github.com/smallbiznis/solarops/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.AuditLog) error {
	if entry == nil {
		return nil
	}
	return repository.ProvideStore[domain.AuditLog](db).Create(ctx, entry)
}

// List returns newest first and fetches one row past Limit so the caller can
// tell whether another page exists. Snowflake ids grow with time, so the id
// is the cursor.
func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.AuditLog, error) {
	opts := filterOptions(filter)
	opts = append(opts, option.WithOrder("-id"))
	if filter.Limit > 0 {
		opts = append(opts, option.WithLimit(filter.Limit+1))
	}
	return repository.ProvideStore[domain.AuditLog](db).Find(ctx, nil, opts...)
}

func filterOptions(f domain.ListFilter) []option.QueryOption {
	var opts []option.QueryOption
	eq := func(column string, value any) {
		opts = append(opts, option.WithWhere(column+" = ?", value))
	}
	if v := strings.TrimSpace(f.Action); v != "" {
		eq("action", v)
	}
	if v := strings.TrimSpace(f.TargetType); v != "" {
		eq("target_type", v)
	}
	if f.TargetID != nil {
		eq("target_id", *f.TargetID)
	}
	if f.ActorID != nil {
		eq("actor_id", *f.ActorID)
	}
	if f.StartAt != nil {
		opts = append(opts, option.WithWhere("created_at >= ?", f.StartAt.UTC()))
	}
	if f.EndAt != nil {
		opts = append(opts, option.WithWhere("created_at <= ?", f.EndAt.UTC()))
	}
	if f.BeforeID > 0 {
		opts = append(opts, option.WithWhere("id < ?", f.BeforeID))
	}
	return opts
}
