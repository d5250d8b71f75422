package record

import (
	"errors"
	"fmt"

	"github.com/smallbiznis/solarops/pkg/db"
)

var (
	ErrNotFound        = errors.New("not_found")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError is a field-level rule violation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IntegrityError is a uniqueness violation reported by storage.
type IntegrityError struct {
	Entity     string
	Constraint string
	Err        error
}

func (e *IntegrityError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%s violates unique constraint %s", e.Entity, e.Constraint)
	}
	return fmt.Sprintf("%s violates a unique constraint", e.Entity)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// ReferenceError is a missing parent row.
type ReferenceError struct {
	Field  string
	Entity string
	ID     int64
}

func (e *ReferenceError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s references a row that does not exist", e.Entity)
	}
	return fmt.Sprintf("%s: %s %d does not exist", e.Field, e.Entity, e.ID)
}

// ValidationErrors collects every field problem of one write.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Error()
}

// OrNil returns nil when no problems were collected.
func (e ValidationErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// translate maps storage constraint failures onto the error taxonomy.
func translate(err error, table string) error {
	switch {
	case err == nil:
		return nil
	case db.IsDuplicateKeyErr(err):
		return &IntegrityError{Entity: table, Constraint: db.ConstraintName(err), Err: err}
	case db.IsForeignKeyErr(err):
		return &ReferenceError{Entity: table}
	default:
		return err
	}
}

func IsIntegrity(err error) bool {
	var target *IntegrityError
	return errors.As(err, &target)
}

func IsReference(err error) bool {
	var target *ReferenceError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var single *ValidationError
	var many ValidationErrors
	return errors.As(err, &single) || errors.As(err, &many)
}
