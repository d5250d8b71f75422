// Package repository provides a generic gorm store for read paths and
// append-only tables. Audited writes go through record.Lifecycle instead.
package repository

import (
	"context"

	"github.com/smallbiznis/solarops/pkg/db/option"
)

// Repository is a generic store keyed by an int64 "id" column.
type Repository[T any] interface {
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	// FindByID returns nil, nil when no row has the id.
	FindByID(ctx context.Context, id int64) (*T, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error)
	Create(ctx context.Context, resource *T) error
}
