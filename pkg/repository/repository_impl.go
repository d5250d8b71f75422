package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/solarops/pkg/db/option"
	"gorm.io/gorm"
)

type store[T any] struct {
	db *gorm.DB
}

func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return store[T]{db: db}
}

func (s store[T]) scope(ctx context.Context, query *T, opts []option.QueryOption) *gorm.DB {
	stmt := s.db.WithContext(ctx).Model(new(T))
	if query != nil {
		stmt = stmt.Where(query)
	}
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}
	return stmt
}

func (s store[T]) Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error) {
	var rows []*T
	if err := s.scope(ctx, query, opts).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s store[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	var row T
	err := s.scope(ctx, nil, []option.QueryOption{option.WithWhere("id = ?", id)}).Take(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return &row, nil
}

func (s store[T]) Exists(ctx context.Context, id int64) (bool, error) {
	n, err := s.Count(ctx, nil, option.WithWhere("id = ?", id))
	return n > 0, err
}

func (s store[T]) Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error) {
	var n int64
	err := s.scope(ctx, query, opts).Count(&n).Error
	return n, err
}

func (s store[T]) Create(ctx context.Context, resource *T) error {
	return s.db.WithContext(ctx).Create(resource).Error
}
