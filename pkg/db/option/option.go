package option

import (
	"strings"

	"gorm.io/gorm"
)

type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type QueryOptionFunc func(db *gorm.DB) *gorm.DB

func (f QueryOptionFunc) Apply(db *gorm.DB) *gorm.DB {
	return f(db)
}

func WithLimit(limit int) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}

func WithOffset(offset int) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if offset <= 0 {
			return db
		}
		return db.Offset(offset)
	})
}

// WithOrder accepts "column" or "-column" for descending order.
func WithOrder(field string) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		field = strings.TrimSpace(field)
		if field == "" {
			return db
		}
		if strings.HasPrefix(field, "-") {
			return db.Order(strings.TrimPrefix(field, "-") + " DESC")
		}
		return db.Order(field + " ASC")
	})
}

func WithWhere(query string, args ...any) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	})
}

// WithAfterID applies keyset pagination on the id column.
func WithAfterID(id int64) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if id <= 0 {
			return db
		}
		return db.Where("id > ?", id)
	})
}
