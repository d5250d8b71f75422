package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/solarops/internal/registry"
	"github.com/smallbiznis/solarops/pkg/db/pagination"
)

const dateOnlyLayout = "2006-01-02"

func parseOptionalBool(value string) (*bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseOptionalInt64(value string) (*int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseOptionalTime(value string, endOfDay bool) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &parsed, nil
	}
	if parsed, err := time.Parse(dateOnlyLayout, trimmed); err == nil {
		if endOfDay {
			parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
		} else {
			parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
		}
		return &parsed, nil
	}
	return nil, errors.New("invalid_time")
}

func parsePagination(c *gin.Context) (pagination.Pagination, error) {
	page := pagination.Pagination{PageToken: strings.TrimSpace(c.Query("page_token"))}
	size, err := parseOptionalInt64(c.Query("page_size"))
	if err != nil {
		return page, newValidationError("page_size", "invalid_page_size", "page_size must be an integer")
	}
	if size != nil {
		page.PageSize = int(*size)
	}
	return page, nil
}

// parseFilter reads the shared list filter:
// q, active, owner, created_from, created_to, updated_from, updated_to.
func parseFilter(c *gin.Context) (registry.Filter, error) {
	filter := registry.Filter{Search: strings.TrimSpace(c.Query("q"))}

	active, err := parseOptionalBool(c.Query("active"))
	if err != nil {
		return filter, newValidationError("active", "invalid_active", "active must be true or false")
	}
	filter.Active = active

	owner, err := parseOptionalInt64(c.Query("owner"))
	if err != nil {
		return filter, newValidationError("owner", "invalid_owner", "owner must be a user id")
	}
	filter.OwnerID = owner

	ranges := []struct {
		param    string
		endOfDay bool
		target   **time.Time
	}{
		{"created_from", false, &filter.CreatedFrom},
		{"created_to", true, &filter.CreatedTo},
		{"updated_from", false, &filter.UpdatedFrom},
		{"updated_to", true, &filter.UpdatedTo},
	}
	for _, r := range ranges {
		parsed, err := parseOptionalTime(c.Query(r.param), r.endOfDay)
		if err != nil {
			return filter, newValidationError(r.param, "invalid_"+r.param, r.param+" must be a date or RFC3339 time")
		}
		*r.target = parsed
	}
	return filter, nil
}

func parseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrNotFound
	}
	return id, nil
}
