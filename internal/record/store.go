package record

import (
	"context"

	"github.com/smallbiznis/solarops/pkg/db/option"
	"github.com/smallbiznis/solarops/pkg/db/pagination"
	"github.com/smallbiznis/solarops/pkg/repository"
)

// Entity constrains a pointer to an entity struct.
type Entity[T any] interface {
	*T
	Model
}

// Store is the typed CRUD surface of one entity, writing through Lifecycle.
type Store[T any, PT Entity[T]] struct {
	lifecycle *Lifecycle
	repo      repository.Repository[T]
}

func NewStore[T any, PT Entity[T]](l *Lifecycle) *Store[T, PT] {
	return &Store[T, PT]{
		lifecycle: l,
		repo:      repository.ProvideStore[T](l.DB()),
	}
}

func (s *Store[T, PT]) Table() string {
	return PT(new(T)).TableName()
}

func (s *Store[T, PT]) New() PT {
	return PT(new(T))
}

func (s *Store[T, PT]) Create(ctx context.Context, entity PT, actor Actor) error {
	return s.lifecycle.Create(ctx, entity, actor)
}

func (s *Store[T, PT]) Update(ctx context.Context, entity PT, actor Actor) error {
	return s.lifecycle.Update(ctx, entity, actor)
}

func (s *Store[T, PT]) Delete(ctx context.Context, id int64, actor Actor) error {
	entity := PT(new(T))
	entity.SetRecordID(id)
	return s.lifecycle.Delete(ctx, entity, actor)
}

func (s *Store[T, PT]) Get(ctx context.Context, id int64) (PT, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return PT(found), nil
}

// List returns one id-ordered page after the cursor in page.
func (s *Store[T, PT]) List(ctx context.Context, page pagination.Pagination, opts ...option.QueryOption) ([]PT, *pagination.PageInfo, error) {
	cursor, err := pagination.DecodeCursor(page.PageToken)
	if err != nil {
		return nil, nil, Invalid("page_token", "Invalid page token.")
	}
	limit := page.Limit()

	query := append([]option.QueryOption{}, opts...)
	query = append(query,
		option.WithAfterID(cursor.ID),
		option.WithOrder("id"),
		option.WithLimit(limit+1),
	)
	rows, err := s.repo.Find(ctx, nil, query...)
	if err != nil {
		return nil, nil, err
	}

	items := make([]PT, 0, len(rows))
	for _, row := range rows {
		items = append(items, PT(row))
	}
	items, info := pagination.BuildCursorPageInfo(items, limit, func(item PT) int64 {
		return item.RecordID()
	})
	return items, info, nil
}
