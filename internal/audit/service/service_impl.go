package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/solarops/internal/audit/domain"
	"github.com/smallbiznis/solarops/internal/audit/masking"
	"github.com/smallbiznis/solarops/internal/clock"
	obscontext "github.com/smallbiznis/solarops/internal/observability/context"
	"github.com/smallbiznis/solarops/internal/record"
	"github.com/smallbiznis/solarops/pkg/db/pagination"
	"github.com/smallbiznis/solarops/pkg/telemetry/correlation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Record writes the trail entry through tx so it commits or rolls back with the change.
func (s *Service) Record(ctx context.Context, tx *gorm.DB, change record.Change) error {
	entry := s.entry(ctx, change.Action, change.ActorID)
	entry.TargetType = change.Table
	entry.TargetID = positive(change.RecordID)
	entry.OwnerID = positive(change.OwnerID)

	if err := s.repo.Insert(ctx, tx, &entry); err != nil {
		s.log.Warn("failed to write audit log",
			zap.String("action", change.Action),
			zap.String("target_type", change.Table),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) Log(ctx context.Context, ev domain.Event) error {
	action := strings.TrimSpace(ev.Action)
	if action == "" {
		return domain.ErrInvalidAction
	}

	entry := s.entry(ctx, action, ev.ActorID)
	entry.TargetType = strings.TrimSpace(ev.TargetType)
	if entry.TargetType == "" {
		entry.TargetType = "unknown"
	}
	entry.TargetID = ev.TargetID
	for key, value := range ev.Metadata {
		if key != "" {
			entry.Metadata[key] = value
		}
	}
	for key, value := range masking.Fields(ev.Secrets) {
		entry.Metadata[key] = value
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) entry(ctx context.Context, action string, actorID int64) domain.AuditLog {
	entry := domain.AuditLog{
		ID:        s.genID.Generate(),
		ActorType: string(domain.ActorTypeAnonymous),
		Action:    action,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: s.clock.Now().UTC(),
	}
	if actorID > 0 {
		entry.ActorType = string(domain.ActorTypeUser)
		entry.ActorID = &actorID
	}

	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		entry.Metadata["request_id"] = requestID
	}
	if correlationID := correlation.ExtractCorrelationID(ctx); correlationID != "" {
		entry.Metadata["correlation_id"] = correlationID
	}
	ip, userAgent := obscontext.ClientFromContext(ctx)
	if ip != "" {
		entry.IPAddress = &ip
	}
	if userAgent != "" {
		entry.UserAgent = &userAgent
	}
	return entry
}

func (s *Service) List(ctx context.Context, req domain.ListAuditLogRequest) (domain.ListAuditLogResponse, error) {
	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return domain.ListAuditLogResponse{}, domain.ErrInvalidTimeRange
	}

	cursor, err := pagination.DecodeCursor(strings.TrimSpace(req.PageToken))
	if err != nil {
		return domain.ListAuditLogResponse{}, domain.ErrInvalidPageToken
	}
	limit := req.Limit()

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Action:     req.Action,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		ActorID:    req.ActorID,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		BeforeID:   cursor.ID,
		Limit:      limit,
	})
	if err != nil {
		return domain.ListAuditLogResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, limit, func(item *domain.AuditLog) int64 {
		return item.ID.Int64()
	})

	logs := make([]domain.AuditLog, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		logs = append(logs, *item)
	}

	resp := domain.ListAuditLogResponse{AuditLogs: logs}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func positive(v int64) *int64 {
	if v <= 0 {
		return nil
	}
	return &v
}
