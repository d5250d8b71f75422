// Package registry describes every audited entity for the admin and REST
// surfaces: its URL name, listing columns, search lookups and storage access.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gosimple/slug"
	"github.com/smallbiznis/solarops/internal/record"
	"github.com/smallbiznis/solarops/pkg/db/option"
	"github.com/smallbiznis/solarops/pkg/db/pagination"
)

var (
	ErrUnknownEntity = errors.New("unknown_entity")
	ErrDuplicateSlug = errors.New("duplicate_entity_slug")
)

// LabelColumn renders the entity's Label in list_display.
const LabelColumn = "__str__"

// Relation is a foreign key usable in related lookups such as "group__name".
type Relation struct {
	Table  string
	Column string
}

// OwnerRelation is shared by every entity through the audit block.
var OwnerRelation = Relation{Table: "users", Column: "owner_id"}

// Accessor is the type-erased store of one entity.
type Accessor interface {
	New() record.Model
	Get(ctx context.Context, id int64) (record.Model, error)
	Create(ctx context.Context, m record.Model, actor record.Actor) error
	Update(ctx context.Context, m record.Model, actor record.Actor) error
	Delete(ctx context.Context, id int64, actor record.Actor) error
	List(ctx context.Context, page pagination.Pagination, opts ...option.QueryOption) ([]record.Model, *pagination.PageInfo, error)
}

type Descriptor struct {
	Name  string
	Slug  string
	Table string
	// ListDisplay holds JSON field names, or LabelColumn.
	ListDisplay []string
	// SearchFields are column names or single-hop lookups "relation__column".
	SearchFields []string
	Relations    map[string]Relation
	Accessor     Accessor
}

// relation resolves name, falling back to the shared owner link.
func (d *Descriptor) relation(name string) (Relation, bool) {
	if rel, ok := d.Relations[name]; ok {
		return rel, true
	}
	if name == "owner" {
		return OwnerRelation, true
	}
	return Relation{}, false
}

type Registry struct {
	bySlug map[string]*Descriptor
}

func New(descriptors ...*Descriptor) (*Registry, error) {
	r := &Registry{bySlug: make(map[string]*Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(d *Descriptor) error {
	if d == nil || d.Accessor == nil {
		return fmt.Errorf("registry: descriptor %v has no accessor", d)
	}
	if d.Table == "" {
		d.Table = d.Accessor.New().TableName()
	}
	if d.Slug == "" {
		d.Slug = slug.Make(d.Name)
	}
	if _, exists := r.bySlug[d.Slug]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSlug, d.Slug)
	}
	for _, field := range d.SearchFields {
		if rel, _, ok := strings.Cut(field, "__"); ok {
			if _, known := d.relation(rel); !known {
				return fmt.Errorf("registry: %s search field %q has unknown relation", d.Name, field)
			}
		}
	}
	r.bySlug[d.Slug] = d
	return nil
}

func (r *Registry) Lookup(slugName string) (*Descriptor, error) {
	d, ok := r.bySlug[strings.ToLower(strings.TrimSpace(slugName))]
	if !ok {
		return nil, ErrUnknownEntity
	}
	return d, nil
}

// All returns descriptors ordered by slug.
func (r *Registry) All() []*Descriptor {
	out := make([]*Descriptor, 0, len(r.bySlug))
	for _, d := range r.bySlug {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}
