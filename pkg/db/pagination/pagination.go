// Package pagination implements keyset paging over ascending or descending
// int64 ids. Page tokens are opaque to clients.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 250
)

type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
}

// Limit clamps the requested page size into [1, MaxPageSize].
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	return min(p.PageSize, MaxPageSize)
}

// Cursor is the position after which the next page starts.
type Cursor struct {
	ID int64 `json:"id,omitempty"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token"`
	HasMore       bool   `json:"has_more"`
}

// EncodeCursor produces a URL-safe token.
func EncodeCursor(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeCursor treats an empty token as the first page.
func DecodeCursor(token string) (*Cursor, error) {
	var c Cursor
	if token == "" {
		return &c, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("page token: %w", err)
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("page token: %w", err)
	}
	return &c, nil
}

// BuildCursorPageInfo expects up to limit+1 rows. The extra row only signals
// that another page exists and is trimmed from the result.
func BuildCursorPageInfo[T any](rows []T, limit int, idOf func(T) int64) ([]T, *PageInfo) {
	if len(rows) <= limit {
		return rows, &PageInfo{}
	}
	rows = rows[:limit]
	info := &PageInfo{HasMore: true}
	if token, err := EncodeCursor(Cursor{ID: idOf(rows[len(rows)-1])}); err == nil {
		info.NextPageToken = token
	}
	return rows, info
}
