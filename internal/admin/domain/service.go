package domain

import (
	"context"
	"errors"
	"io"

	"github.com/smallbiznis/solarops/internal/registry"
	"github.com/smallbiznis/solarops/pkg/db/pagination"
)

type EntitySummary struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type ListRequest struct {
	pagination.Pagination
	registry.Filter
}

type Row struct {
	ID    int64    `json:"id"`
	Cells []string `json:"cells"`
}

type ListResponse struct {
	pagination.PageInfo
	Entity  string   `json:"entity"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

type Service interface {
	Index(ctx context.Context) ([]EntitySummary, error)
	List(ctx context.Context, entity string, req ListRequest) (*ListResponse, error)
	// Export writes every matching row as an .xlsx workbook and returns the row count.
	Export(ctx context.Context, entity string, filter registry.Filter, w io.Writer) (int, error)
}

var ErrExportTooLarge = errors.New("export_too_large")
