package domain

import "context"

// Repository persists users. Lookups return ErrUserNotFound for missing rows.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]User, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
}

// TokenRepository persists API tokens, at most one per user.
type TokenRepository interface {
	// ReplaceToken drops any previous token of the user before inserting.
	ReplaceToken(ctx context.Context, token *Token) error
	GetTokenByHash(ctx context.Context, keyHash string) (*Token, error)
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}
