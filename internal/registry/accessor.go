package registry

import (
	"context"
	"fmt"

	"github.com/smallbiznis/solarops/internal/record"
	"github.com/smallbiznis/solarops/pkg/db/option"
	"github.com/smallbiznis/solarops/pkg/db/pagination"
)

type storeAccessor[T any, PT record.Entity[T]] struct {
	store *record.Store[T, PT]
}

// Bind adapts a typed store to Accessor.
func Bind[T any, PT record.Entity[T]](store *record.Store[T, PT]) Accessor {
	return &storeAccessor[T, PT]{store: store}
}

func (a *storeAccessor[T, PT]) New() record.Model {
	return a.store.New()
}

func (a *storeAccessor[T, PT]) Get(ctx context.Context, id int64) (record.Model, error) {
	found, err := a.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (a *storeAccessor[T, PT]) Create(ctx context.Context, m record.Model, actor record.Actor) error {
	entity, err := a.cast(m)
	if err != nil {
		return err
	}
	return a.store.Create(ctx, entity, actor)
}

func (a *storeAccessor[T, PT]) Update(ctx context.Context, m record.Model, actor record.Actor) error {
	entity, err := a.cast(m)
	if err != nil {
		return err
	}
	return a.store.Update(ctx, entity, actor)
}

func (a *storeAccessor[T, PT]) Delete(ctx context.Context, id int64, actor record.Actor) error {
	return a.store.Delete(ctx, id, actor)
}

func (a *storeAccessor[T, PT]) List(ctx context.Context, page pagination.Pagination, opts ...option.QueryOption) ([]record.Model, *pagination.PageInfo, error) {
	items, info, err := a.store.List(ctx, page, opts...)
	if err != nil {
		return nil, nil, err
	}
	out := make([]record.Model, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out, info, nil
}

func (a *storeAccessor[T, PT]) cast(m record.Model) (PT, error) {
	entity, ok := m.(PT)
	if !ok {
		return nil, fmt.Errorf("registry: %T is not a %s", m, a.store.Table())
	}
	return entity, nil
}
