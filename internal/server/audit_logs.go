package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/solarops/internal/audit/domain"
	"github.com/smallbiznis/solarops/pkg/db/pagination"
)

type listAuditLogsQuery struct {
	PageToken  string `form:"page_token"`
	PageSize   int    `form:"page_size"`
	Action     string `form:"action"`
	TargetType string `form:"target_type"`
	TargetID   string `form:"target_id"`
	ActorID    string `form:"actor_id"`
	StartAt    string `form:"start_at"`
	EndAt      string `form:"end_at"`
	// From and To are accepted as aliases of StartAt and EndAt.
	From string `form:"from"`
	To   string `form:"to"`
}

// ListAuditLogs pages through the audit trail, newest first. Staff only.
func (s *Server) ListAuditLogs(c *gin.Context) {
	var query listAuditLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := auditdomain.ListAuditLogRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		Action:     strings.TrimSpace(query.Action),
		TargetType: strings.TrimSpace(query.TargetType),
	}

	var err error
	if req.StartAt, err = auditTime("start_at", query.StartAt, query.From); err != nil {
		AbortWithError(c, err)
		return
	}
	if req.EndAt, err = auditTime("end_at", query.EndAt, query.To); err != nil {
		AbortWithError(c, err)
		return
	}
	if req.TargetID, err = parseOptionalInt64(query.TargetID); err != nil {
		AbortWithError(c, newValidationError("target_id", "invalid_target_id", "invalid target_id"))
		return
	}
	if req.ActorID, err = parseOptionalInt64(query.ActorID); err != nil {
		AbortWithError(c, newValidationError("actor_id", "invalid_actor_id", "invalid actor_id"))
		return
	}

	resp, err := s.auditSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp.AuditLogs, "page_info": resp.PageInfo})
}

// auditTime parses an RFC 3339 bound, preferring value over alias.
func auditTime(field, value, alias string) (*time.Time, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		raw = strings.TrimSpace(alias)
	}
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, newValidationError(field, "invalid_"+field, "invalid "+field)
	}
	return &t, nil
}
