package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/solarops/internal/auth/domain"
	"gorm.io/gorm"
)

func New(db *gorm.DB) (domain.Repository, domain.TokenRepository) {
	return users{db: db}, tokens{db: db}
}

// take loads the single row matching cond, mapping a miss to notFound.
func take[T any](ctx context.Context, db *gorm.DB, notFound error, cond string, arg any) (*T, error) {
	var row T
	err := db.WithContext(ctx).Where(cond, arg).Take(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, notFound
	case err != nil:
		return nil, err
	}
	return &row, nil
}

type users struct {
	db *gorm.DB
}

func (r users) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r users) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return take[domain.User](ctx, r.db, domain.ErrUserNotFound, "email = ?", email)
}

func (r users) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return take[domain.User](ctx, r.db, domain.ErrUserNotFound, "id = ?", id)
}

func (r users) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	if err := r.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r users) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

type tokens struct {
	db *gorm.DB
}

func (r tokens) ReplaceToken(ctx context.Context, token *domain.Token) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", token.UserID).Delete(&domain.Token{}).Error; err != nil {
			return err
		}
		return tx.Omit("User").Create(token).Error
	})
}

func (r tokens) GetTokenByHash(ctx context.Context, keyHash string) (*domain.Token, error) {
	return take[domain.Token](ctx, r.db, domain.ErrTokenNotFound, "key_hash = ?", keyHash)
}

func (r tokens) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Token{})
	return res.RowsAffected, res.Error
}
