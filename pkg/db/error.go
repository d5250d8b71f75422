package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	msg := err.Error()
	switch {
	// PostgreSQL (error code 23505)
	case strings.Contains(msg, "duplicate key value violates unique constraint"):
		return true
	// MySQL (error code 1062)
	case strings.Contains(msg, "Error 1062"):
		return true
	// SQLite (error code 2067)
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return true
	}
	return false
}

func IsForeignKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "violates foreign key constraint"):
		return true
	// MySQL (error code 1452)
	case strings.Contains(msg, "Error 1452"):
		return true
	// SQLite (error code 787)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return true
	}
	return false
}

// ConstraintName returns the violated constraint when the driver reports one.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
