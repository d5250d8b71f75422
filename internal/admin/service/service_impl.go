package service

import (
	"context"
	"fmt"
	"io"

	"github.com/smallbiznis/solarops/internal/admin/domain"
	"github.com/smallbiznis/solarops/internal/config"
	"github.com/smallbiznis/solarops/internal/registry"
	"github.com/smallbiznis/solarops/pkg/db/pagination"
	"github.com/xuri/excelize/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Registry *registry.Registry
	Config   *config.AdminConfigHolder
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	registry *registry.Registry
	cfg      *config.AdminConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("admin.service"),
		registry: p.Registry,
		cfg:      p.Config,
	}
}

func (s *Service) Index(ctx context.Context) ([]domain.EntitySummary, error) {
	descriptors := s.registry.All()
	out := make([]domain.EntitySummary, 0, len(descriptors))
	for _, d := range descriptors {
		var count int64
		if err := s.db.WithContext(ctx).Table(d.Table).Count(&count).Error; err != nil {
			return nil, err
		}
		out = append(out, domain.EntitySummary{Slug: d.Slug, Name: d.Name, Count: count})
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, entity string, req domain.ListRequest) (*domain.ListResponse, error) {
	d, err := s.registry.Lookup(entity)
	if err != nil {
		return nil, err
	}

	page := req.Pagination
	page.PageSize = s.pageSize(page.PageSize)

	items, info, err := d.Accessor.List(ctx, page, d.QueryOptions(s.db.Dialector.Name(), req.Filter)...)
	if err != nil {
		return nil, err
	}

	resp := &domain.ListResponse{
		Entity:  d.Slug,
		Columns: d.Header(),
		Rows:    make([]domain.Row, 0, len(items)),
	}
	for _, item := range items {
		cells, err := d.Row(item)
		if err != nil {
			return nil, err
		}
		resp.Rows = append(resp.Rows, domain.Row{ID: item.RecordID(), Cells: cells})
	}
	if info != nil {
		resp.PageInfo = *info
	}
	return resp, nil
}

func (s *Service) Export(ctx context.Context, entity string, filter registry.Filter, w io.Writer) (int, error) {
	d, err := s.registry.Lookup(entity)
	if err != nil {
		return 0, err
	}
	limit := s.cfg.Get().ExportRowLimit
	opts := d.QueryOptions(s.db.Dialector.Name(), filter)

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.log.Warn("failed to close workbook", zap.Error(err))
		}
	}()

	sheet := d.Name
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return 0, err
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return 0, fmt.Errorf("create stream writer: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, fmt.Errorf("create header style: %w", err)
	}
	header := make([]any, 0, len(d.ListDisplay)+1)
	header = append(header, excelize.Cell{StyleID: headerStyle, Value: "id"})
	for _, title := range d.Header() {
		header = append(header, excelize.Cell{StyleID: headerStyle, Value: title})
	}
	if err := sw.SetRow("A1", header); err != nil {
		return 0, err
	}

	rows := 0
	page := pagination.Pagination{PageSize: pagination.MaxPageSize}
	for {
		items, info, err := d.Accessor.List(ctx, page, opts...)
		if err != nil {
			return rows, err
		}
		for _, item := range items {
			if rows >= limit {
				return rows, domain.ErrExportTooLarge
			}
			cells, err := d.Row(item)
			if err != nil {
				return rows, err
			}
			values := make([]any, 0, len(cells)+1)
			values = append(values, item.RecordID())
			for _, c := range cells {
				values = append(values, c)
			}
			axis, err := excelize.CoordinatesToCellName(1, rows+2)
			if err != nil {
				return rows, err
			}
			if err := sw.SetRow(axis, values); err != nil {
				return rows, err
			}
			rows++
		}
		if info == nil || !info.HasMore {
			break
		}
		page.PageToken = info.NextPageToken
	}

	if err := sw.Flush(); err != nil {
		return rows, err
	}
	if _, err := f.WriteTo(w); err != nil {
		return rows, err
	}
	s.log.Info("admin export written", zap.String("entity", d.Slug), zap.Int("rows", rows))
	return rows, nil
}

func (s *Service) pageSize(requested int) int {
	cfg := s.cfg.Get()
	switch {
	case requested <= 0:
		return cfg.DefaultPageSize
	case requested > cfg.MaxPageSize:
		return cfg.MaxPageSize
	default:
		return requested
	}
}
