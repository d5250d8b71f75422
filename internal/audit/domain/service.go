package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/solarops/internal/record"
	"github.com/smallbiznis/solarops/pkg/db/pagination"
	"gorm.io/gorm"
)

// Event is a non-record action worth keeping in the trail, such as a login.
type Event struct {
	Action     string
	ActorID    int64
	TargetType string
	TargetID   *int64
	Metadata   map[string]any
	// Secrets are stored masked: tokens keep a short suffix, emails their domain.
	Secrets map[string]any
}

type ListAuditLogRequest struct {
	pagination.Pagination
	Action     string `form:"action"`
	TargetType string `form:"target_type"`
	TargetID   *int64 `form:"target_id"`
	ActorID    *int64 `form:"actor_id"`
	StartAt    *time.Time
	EndAt      *time.Time
}

type ListAuditLogResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"audit_logs"`
}

type Service interface {
	record.Recorder
	Log(ctx context.Context, ev Event) error
	List(ctx context.Context, req ListAuditLogRequest) (ListAuditLogResponse, error)
}

type ListFilter struct {
	Action     string
	TargetType string
	TargetID   *int64
	ActorID    *int64
	StartAt    *time.Time
	EndAt      *time.Time
	BeforeID   int64
	Limit      int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*AuditLog, error)
}

var (
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
	ErrInvalidAction    = errors.New("invalid_action")
)
