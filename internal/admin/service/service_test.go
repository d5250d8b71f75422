package service_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/smallbiznis/solarops/internal/admin/domain"
	"github.com/smallbiznis/solarops/internal/admin/service"
	"github.com/smallbiznis/solarops/internal/config"
	plantdomain "github.com/smallbiznis/solarops/internal/plant/domain"
	"github.com/smallbiznis/solarops/internal/record"
	"github.com/smallbiznis/solarops/internal/registry"
	"github.com/smallbiznis/solarops/internal/registry/registrytest"
	"github.com/smallbiznis/solarops/pkg/db/pagination"
)

func newTestService(t *testing.T, cfg config.AdminConfig) (domain.Service, *registrytest.Env) {
	t.Helper()
	env := registrytest.New(t)
	svc := service.New(service.Params{
		DB:       env.DB,
		Log:      zap.NewNop(),
		Registry: env.Registry,
		Config:   config.NewStaticAdminConfigHolder(cfg),
	})
	return svc, env
}

func seedGroups(t *testing.T, env *registrytest.Env, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		g := &plantdomain.PlantGroup{Name: fmt.Sprintf("Group %02d", i)}
		require.NoError(t, env.Plants.Groups().Create(context.Background(), g, record.Anonymous))
	}
}

func TestIndexCountsRows(t *testing.T) {
	svc, env := newTestService(t, config.DefaultAdminConfig())
	seedGroups(t, env, 3)

	index, err := svc.Index(context.Background())
	require.NoError(t, err)
	require.Len(t, index, 11)

	counts := map[string]int64{}
	for _, e := range index {
		counts[e.Slug] = e.Count
	}
	assert.Equal(t, int64(3), counts["plantgroup"])
	assert.Equal(t, int64(0), counts["gisweather"])
}

func TestListPagesWithConfiguredSize(t *testing.T) {
	cfg := config.AdminConfig{DefaultPageSize: 2, MaxPageSize: 3, ExportRowLimit: 100}
	svc, env := newTestService(t, cfg)
	seedGroups(t, env, 5)
	ctx := context.Background()

	first, err := svc.List(ctx, "plantgroup", domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, first.Rows, 2)
	assert.True(t, first.HasMore)
	assert.Equal(t, []string{"PlantGroup", "name", "active", "created_at", "updated_at", "owner"}, first.Columns)
	assert.Equal(t, "Group 00", first.Rows[0].Cells[0])

	second, err := svc.List(ctx, "plantgroup", domain.ListRequest{
		Pagination: pagination.Pagination{PageToken: first.NextPageToken, PageSize: 50},
	})
	require.NoError(t, err)
	require.Len(t, second.Rows, 3, "page size clamps to the configured max")
	assert.False(t, second.HasMore)
}

func TestListSearches(t *testing.T) {
	svc, env := newTestService(t, config.DefaultAdminConfig())
	seedGroups(t, env, 12)

	resp, err := svc.List(context.Background(), "plantgroup", domain.ListRequest{
		Filter: registry.Filter{Search: "group 1"},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Rows, 3, "Group 01, Group 10 and Group 11")
}

func TestListUnknownEntity(t *testing.T) {
	svc, _ := newTestService(t, config.DefaultAdminConfig())
	_, err := svc.List(context.Background(), "invoice", domain.ListRequest{})
	assert.ErrorIs(t, err, registry.ErrUnknownEntity)
}

func TestExportWritesWorkbook(t *testing.T) {
	svc, env := newTestService(t, config.DefaultAdminConfig())
	seedGroups(t, env, 3)

	var buf bytes.Buffer
	rows, err := svc.Export(context.Background(), "plantgroup", registry.Filter{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, rows)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheet, err := f.GetRows("PlantGroup")
	require.NoError(t, err)
	require.Len(t, sheet, 4)
	assert.Equal(t, []string{"id", "PlantGroup", "name", "active", "created_at", "updated_at", "owner"}, sheet[0])
	assert.Equal(t, "Group 00", sheet[1][2])
}

func TestExportStopsAtRowLimit(t *testing.T) {
	cfg := config.AdminConfig{DefaultPageSize: 10, MaxPageSize: 10, ExportRowLimit: 2}
	svc, env := newTestService(t, cfg)
	seedGroups(t, env, 3)

	var buf bytes.Buffer
	rows, err := svc.Export(context.Background(), "plantgroup", registry.Filter{}, &buf)
	assert.ErrorIs(t, err, domain.ErrExportTooLarge)
	assert.Equal(t, 2, rows)
}
