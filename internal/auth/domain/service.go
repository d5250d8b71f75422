package domain

import (
	"context"
)

type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	// EnsureUser creates the user when the email is unknown and returns it either way.
	EnsureUser(ctx context.Context, req CreateUserRequest) (*User, bool, error)
	ObtainToken(ctx context.Context, req TokenRequest) (*TokenResult, error)
	Authenticate(ctx context.Context, rawToken string) (*User, error)
	Logout(ctx context.Context, userID int64) error
	CurrentUser(ctx context.Context, userID int64) (*User, error)
	UpdateCurrentUser(ctx context.Context, userID int64, req UpdateUserRequest) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	IsStaff  bool   `json:"-"`
}

type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResult struct {
	Token  string `json:"token"`
	UserID int64  `json:"-"`
}

// UpdateUserRequest carries the fields of PUT/PATCH /me. Nil means unchanged.
type UpdateUserRequest struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Password *string `json:"password"`
}
