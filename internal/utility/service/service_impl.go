package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	plantdomain "github.com/smallbiznis/solarops/internal/plant/domain"
	"github.com/smallbiznis/solarops/internal/record"
	"github.com/smallbiznis/solarops/internal/utility/domain"
	"github.com/smallbiznis/solarops/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Lifecycle *record.Lifecycle
	Repo      domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository

	revenues     *domain.RevenueStore
	expenses     *domain.ExpenseStore
	production   *domain.ProductionStore
	curtailments *domain.CurtailmentStore
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("utility.service"),
		repo:         p.Repo,
		revenues:     record.NewStore[domain.UtilityMonthlyRevenue](p.Lifecycle),
		expenses:     record.NewStore[domain.UtilityMonthlyExpense](p.Lifecycle),
		production:   record.NewStore[domain.UtilityDailyProduction](p.Lifecycle),
		curtailments: record.NewStore[domain.CurtailmentEvent](p.Lifecycle),
	}
}

func (s *Service) Revenues() *domain.RevenueStore         { return s.revenues }
func (s *Service) Expenses() *domain.ExpenseStore         { return s.expenses }
func (s *Service) Production() *domain.ProductionStore    { return s.production }
func (s *Service) Curtailments() *domain.CurtailmentStore { return s.curtailments }

func (s *Service) Statement(ctx context.Context, plantID int64, period string) (*domain.Statement, error) {
	period = strings.TrimSpace(period)
	if period == "" || len(period) > domain.PeriodLength {
		return nil, domain.ErrInvalidPeriod
	}
	exists, err := repository.ProvideStore[plantdomain.UtilityPlantID](s.db).Exists(ctx, plantID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, record.ErrNotFound
	}

	st := &domain.Statement{
		PlantID:       plantID,
		Period:        period,
		SalesKWh:      decimal.Zero,
		SalesJPY:      decimal.Zero,
		UsedKWh:       decimal.Zero,
		UsedJPY:       decimal.Zero,
		TaxJPY:        decimal.Zero,
		ProductionKWh: decimal.Zero,
	}

	revenues, err := s.repo.RevenuesForPeriod(ctx, s.db, plantID, period)
	if err != nil {
		return nil, err
	}
	for _, r := range revenues {
		st.Contracts++
		st.SalesKWh = addNull(st.SalesKWh, r.SalesKWh)
		st.SalesJPY = addNull(st.SalesJPY, r.SalesJPY)
		st.TaxJPY = addNull(st.TaxJPY, r.TaxJPY)
	}

	expenses, err := s.repo.ExpensesForPeriod(ctx, s.db, plantID, period)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		st.UsedKWh = addNull(st.UsedKWh, e.UsedKWh)
		st.UsedJPY = addNull(st.UsedJPY, e.UsedJPY)
		st.TaxJPY = addNull(st.TaxJPY, e.TaxJPY)
	}

	production, err := s.repo.ProductionForPeriod(ctx, s.db, plantID, period)
	if err != nil {
		return nil, err
	}
	for _, p := range production {
		st.ProductionKWh = addNull(st.ProductionKWh, p.ProductionKWh)
		st.ProductionDays++
	}

	curtailments, err := s.repo.CurtailmentsForPeriod(ctx, s.db, plantID, period)
	if err != nil {
		return nil, err
	}
	st.CurtailmentCount = len(curtailments)

	return st, nil
}

func (s *Service) ImportCurtailments(ctx context.Context, events []*domain.CurtailmentEvent, actor record.Actor) domain.ImportResult {
	var result domain.ImportResult
	for i, event := range events {
		err := event.Validate()
		if err == nil {
			err = s.curtailments.Create(ctx, event, actor)
		}
		if err != nil {
			result.Failed = append(result.Failed, domain.ImportFailure{Index: i, Err: err})
			continue
		}
		result.Created++
	}

	s.log.Info("curtailment import finished",
		zap.Int("created", result.Created),
		zap.Int("failed", len(result.Failed)),
	)
	return result
}

func addNull(total decimal.Decimal, value decimal.NullDecimal) decimal.Decimal {
	if !value.Valid {
		return total
	}
	return total.Add(value.Decimal)
}
