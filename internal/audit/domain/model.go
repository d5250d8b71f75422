package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type ActorType string

const (
	ActorTypeUser      ActorType = "user"
	ActorTypeAnonymous ActorType = "anonymous"
	ActorTypeSystem    ActorType = "system"
)

// AuditLog is one entry of the change trail. Rows are append only.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	ActorType  string            `gorm:"type:varchar(20);not null" json:"actor_type"`
	ActorID    *int64            `json:"actor_id,omitempty"`
	Action     string            `gorm:"type:varchar(64);not null;index" json:"action"`
	TargetType string            `gorm:"type:varchar(64);not null;index:idx_audit_logs_target" json:"target_type"`
	TargetID   *int64            `gorm:"index:idx_audit_logs_target" json:"target_id,omitempty"`
	OwnerID    *int64            `json:"owner_id,omitempty"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty"`
	IPAddress  *string           `gorm:"type:varchar(64)" json:"ip_address,omitempty"`
	UserAgent  *string           `json:"user_agent,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;index" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
