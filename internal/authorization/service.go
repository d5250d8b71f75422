package authorization

import (
	"context"
	"errors"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
)

// Subject is the authenticated caller being checked.
type Subject struct {
	UserID  int64
	IsStaff bool
}

type Service interface {
	Authorize(ctx context.Context, subject Subject, object string, action string) error
	// Allowed lists the object/action pairs granted to subject.
	Allowed(ctx context.Context, subject Subject) ([][]string, error)
}
