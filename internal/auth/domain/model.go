// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User is an account that can own records and hold an API token.
type User struct {
	ID           int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Email        string     `json:"email" gorm:"column:email;size:255;not null;uniqueIndex"`
	Name         string     `json:"name" gorm:"column:name;size:255;not null"`
	PasswordHash *string    `json:"-" gorm:"column:password_hash;type:text"`
	IsActive     bool       `json:"is_active" gorm:"column:is_active;not null;default:true"`
	IsStaff      bool       `json:"is_staff" gorm:"column:is_staff;not null;default:false"`
	LastLogin    *time.Time `json:"last_login" gorm:"column:last_login"`
	CreatedAt    time.Time  `json:"created_at" gorm:"column:created_at;not null"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"column:updated_at;not null"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Token is the single API key of a user. Only the SHA-256 of the key is stored.
type Token struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	UserID    int64        `gorm:"column:user_id;not null;uniqueIndex"`
	User      *User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	KeyHash   string       `gorm:"column:key_hash;size:64;not null;uniqueIndex"`
	CreatedAt time.Time    `gorm:"column:created_at;not null"`
}

// TableName sets the database table name.
func (Token) TableName() string { return "auth_tokens" }
