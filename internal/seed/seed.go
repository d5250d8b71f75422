package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	authdomain "github.com/smallbiznis/solarops/internal/auth/domain"
	"github.com/smallbiznis/solarops/internal/auth/password"
	"gorm.io/gorm"
)

const (
	systemUserEmail = "system@solarops.local"
	systemUserName  = "System"
)

// Admin is the bootstrap staff account.
type Admin struct {
	Email    string
	Password string
	Name     string
}

// EnsureSystemUser makes sure the default record owner exists. The account has
// no password and cannot log in.
func EnsureSystemUser(ctx context.Context, db *gorm.DB, id int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if id <= 0 {
		return errors.New("default owner id must be positive")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&authdomain.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		user := authdomain.User{
			ID:        id,
			Email:     systemUserEmail,
			Name:      systemUserName,
			IsActive:  false,
			CreatedAt: now,
			UpdatedAt: now,
		}
		// IsActive=false is the zero value; Select keeps gorm from
		// substituting the column default.
		if err := tx.Select("*").Create(&user).Error; err != nil {
			return err
		}
		return syncSequence(tx, user.TableName())
	})
}

// EnsureAdmin creates the staff account when no user has its email yet.
func EnsureAdmin(ctx context.Context, db *gorm.DB, admin Admin) (bool, error) {
	if db == nil {
		return false, errors.New("seed database handle is required")
	}
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" {
		return false, errors.New("bootstrap admin email is required")
	}
	if err := password.Check(admin.Password); err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}

	created := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&authdomain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hashed, err := password.Hash(admin.Password)
		if err != nil {
			return err
		}
		name := strings.TrimSpace(admin.Name)
		if name == "" {
			name = email
		}
		now := time.Now().UTC()
		user := authdomain.User{
			Email:        email,
			Name:         name,
			PasswordHash: &hashed,
			IsActive:     true,
			IsStaff:      true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

// syncSequence moves the postgres id sequence past rows inserted with explicit ids.
func syncSequence(tx *gorm.DB, table string) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec(
		fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT MAX(id) FROM %s))", table, table),
	).Error
}
