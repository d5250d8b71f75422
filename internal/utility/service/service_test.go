package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	plantdomain "github.com/smallbiznis/solarops/internal/plant/domain"
	"github.com/smallbiznis/solarops/internal/record"
	"github.com/smallbiznis/solarops/internal/record/recordtest"
	"github.com/smallbiznis/solarops/internal/utility/domain"
	"github.com/smallbiznis/solarops/internal/utility/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type fixture struct {
	env   *recordtest.Env
	svc   domain.Service
	plant *plantdomain.UtilityPlantID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	env := recordtest.New(t,
		&plantdomain.PlantGroup{},
		&plantdomain.UtilityPlantID{},
		&domain.UtilityMonthlyRevenue{},
		&domain.UtilityMonthlyExpense{},
		&domain.UtilityDailyProduction{},
		&domain.CurtailmentEvent{},
	)
	ctx := context.Background()
	groups := record.NewStore[plantdomain.PlantGroup](env.Lifecycle)
	plants := record.NewStore[plantdomain.UtilityPlantID](env.Lifecycle)

	group := &plantdomain.PlantGroup{Name: "North"}
	require.NoError(t, groups.Create(ctx, group, record.Anonymous))
	plant := &plantdomain.UtilityPlantID{PlantID: "UP-001", GroupID: group.ID}
	require.NoError(t, plants.Create(ctx, plant, record.Anonymous))

	return &fixture{
		env:   env,
		plant: plant,
		svc: New(Params{
			DB: env.DB, Log: zap.NewNop(), Lifecycle: env.Lifecycle, Repo: repository.Provide(),
		}),
	}
}

func str(s string) *string { return &s }

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func revenue(plantID int64, contract, period string) *domain.UtilityMonthlyRevenue {
	return &domain.UtilityMonthlyRevenue{
		PlantID:    plantID,
		ContractID: str(contract),
		Period:     str(period),
		SalesKWh:   amount("12000.50"),
		SalesJPY:   amount("480020.00"),
	}
}

func TestRevenuePerContractAndPeriodIsUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Revenues().Create(ctx, revenue(f.plant.ID, "C-1", "2024-01"), record.Anonymous))

	err := f.svc.Revenues().Create(ctx, revenue(f.plant.ID, "C-1", "2024-01"), record.Anonymous)
	var integrity *record.IntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Equal(t, "utility_monthly_revenues", integrity.Entity)

	assert.NoError(t, f.svc.Revenues().Create(ctx, revenue(f.plant.ID, "C-2", "2024-01"), record.Anonymous))
	assert.NoError(t, f.svc.Revenues().Create(ctx, revenue(f.plant.ID, "C-1", "2024-02"), record.Anonymous))
}

func TestCurtailmentPerPlantAndDateIsUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	date := record.NewDate(2024, time.May, 1)

	require.NoError(t, f.svc.Curtailments().Create(ctx, &domain.CurtailmentEvent{PlantID: f.plant.ID, Date: &date}, record.Anonymous))
	err := f.svc.Curtailments().Create(ctx, &domain.CurtailmentEvent{PlantID: f.plant.ID, Date: &date}, record.Anonymous)
	assert.True(t, record.IsIntegrity(err))
}

func TestWritesDoNotRunCurtailmentValidation(t *testing.T) {
	f := newFixture(t)
	start := datatypes.NewTime(10, 0, 0, 0)
	end := datatypes.NewTime(9, 0, 0, 0)

	event := &domain.CurtailmentEvent{PlantID: f.plant.ID, StartTime: &start, EndTime: &end}
	require.Error(t, event.Validate())
	assert.NoError(t, f.svc.Curtailments().Create(context.Background(), event, record.Anonymous))
}

func TestImportCurtailmentsValidatesEachRow(t *testing.T) {
	f := newFixture(t)
	d1 := record.NewDate(2024, time.May, 1)
	d2 := record.NewDate(2024, time.May, 2)
	nine := datatypes.NewTime(9, 0, 0, 0)
	ten := datatypes.NewTime(10, 0, 0, 0)

	result := f.svc.ImportCurtailments(context.Background(), []*domain.CurtailmentEvent{
		{PlantID: f.plant.ID, Date: &d1, StartTime: &nine, EndTime: &ten, Period: str("2024-05")},
		{PlantID: f.plant.ID, Date: &d2, StartTime: &ten, EndTime: &nine, Period: str("2024-05")},
		{PlantID: f.plant.ID, Date: &d1, StartTime: &nine, EndTime: &ten, Period: str("2024-05")},
	}, record.UserActor(1))

	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, 1, result.Failed[0].Index)
	assert.True(t, record.IsValidation(result.Failed[0].Err))
	assert.Equal(t, 2, result.Failed[1].Index)
	assert.True(t, record.IsIntegrity(result.Failed[1].Err))
}

func TestStatementAggregatesPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := record.Anonymous

	require.NoError(t, f.svc.Revenues().Create(ctx, revenue(f.plant.ID, "C-1", "2024-01"), actor))
	require.NoError(t, f.svc.Revenues().Create(ctx, revenue(f.plant.ID, "C-2", "2024-01"), actor))
	require.NoError(t, f.svc.Expenses().Create(ctx, &domain.UtilityMonthlyExpense{
		PlantID: f.plant.ID, UsedKWh: amount("300.25"), UsedJPY: amount("9000"), TaxJPY: amount("900"), Period: str("2024-01"),
	}, actor))
	for d := 1; d <= 3; d++ {
		date := record.NewDate(2024, time.January, d)
		require.NoError(t, f.svc.Production().Create(ctx, &domain.UtilityDailyProduction{
			PlantID: f.plant.ID, ProductionKWh: amount("400"), ProductionDate: &date, Period: str("2024-01"),
		}, actor))
	}

	st, err := f.svc.Statement(ctx, f.plant.ID, "2024-01")
	require.NoError(t, err)
	assert.Equal(t, 2, st.Contracts)
	assert.True(t, st.SalesKWh.Equal(decimal.RequireFromString("24001")), st.SalesKWh.String())
	assert.True(t, st.UsedKWh.Equal(decimal.RequireFromString("300.25")))
	assert.True(t, st.TaxJPY.Equal(decimal.RequireFromString("900")))
	assert.True(t, st.ProductionKWh.Equal(decimal.RequireFromString("1200")))
	assert.Equal(t, 3, st.ProductionDays)

	_, err = f.svc.Statement(ctx, 999, "2024-01")
	assert.ErrorIs(t, err, record.ErrNotFound)
	_, err = f.svc.Statement(ctx, f.plant.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}
