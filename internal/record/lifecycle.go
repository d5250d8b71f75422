package record

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/solarops/internal/clock"
	"github.com/smallbiznis/solarops/internal/config"
	obslogger "github.com/smallbiznis/solarops/internal/observability/logger"
	"github.com/smallbiznis/solarops/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Change is one audited write handed to the Recorder inside the write transaction.
type Change struct {
	Table    string
	RecordID int64
	Action   string
	ActorID  int64
	OwnerID  int64
}

// Recorder persists the change trail. Returning an error rolls the write back.
type Recorder interface {
	Record(ctx context.Context, tx *gorm.DB, change Change) error
}

type LifecycleParams struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Config   config.Config
	Clock    clock.Clock
	Recorder Recorder         `optional:"true"`
	Metrics  *metrics.Metrics `optional:"true"`
}

// Lifecycle applies the audited record contract to every entity write.
type Lifecycle struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	location     *time.Location
	defaultOwner int64
	recorder     Recorder
	metrics      *metrics.Metrics
}

func NewLifecycle(p LifecycleParams) *Lifecycle {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Lifecycle{
		db:           p.DB,
		log:          log.Named("record.lifecycle"),
		clock:        clk,
		location:     p.Config.Location(),
		defaultOwner: p.Config.DefaultOwnerID,
		recorder:     p.Recorder,
		metrics:      p.Metrics,
	}
}

func (l *Lifecycle) DB() *gorm.DB { return l.db }

// Now is the lifecycle clock in the configured time zone.
func (l *Lifecycle) Now() time.Time {
	return l.clock.Now().In(l.location)
}

func (l *Lifecycle) stamp() time.Time {
	return l.clock.Now().UTC().Truncate(time.Microsecond)
}

// Create stamps owner and timestamps, then inserts m in one transaction.
func (l *Lifecycle) Create(ctx context.Context, m Model, actor Actor) error {
	if err := l.prepare(m); err != nil {
		return err
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, m); err != nil {
			return err
		}

		meta := m.Meta()
		meta.OwnerID = ResolveOwner(meta.OwnerID, actor, l.defaultOwner)
		if !actor.Authenticated {
			if err := checkOwner(tx, meta.OwnerID); err != nil {
				return err
			}
		}
		now := l.stamp()
		meta.CreatedAt = now
		meta.UpdatedAt = now
		meta.Active = true

		if err := tx.Omit(clause.Associations).Create(m).Error; err != nil {
			return translate(err, m.TableName())
		}
		return l.record(ctx, tx, m, ActionCreate, actor)
	})
	return l.finish(ctx, m, ActionCreate, err)
}

// Update persists the business fields and updated_at, then recomputes the
// active flag in a separate column write that leaves updated_at alone.
func (l *Lifecycle) Update(ctx context.Context, m Model, actor Actor) error {
	if err := l.prepare(m); err != nil {
		return err
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current Audit
		err := tx.Table(m.TableName()).
			Select("active", "created_at", "updated_at", "owner_id").
			Where("id = ?", m.RecordID()).
			Take(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := checkReferences(tx, m); err != nil {
			return err
		}

		meta := m.Meta()
		owner := meta.OwnerID
		if owner == 0 {
			owner = current.OwnerID
		}
		meta.OwnerID = ResolveOwner(owner, actor, l.defaultOwner)
		if !actor.Authenticated && meta.OwnerID != current.OwnerID {
			if err := checkOwner(tx, meta.OwnerID); err != nil {
				return err
			}
		}
		meta.CreatedAt = current.CreatedAt
		meta.UpdatedAt = l.stamp()

		err = tx.Model(m).
			Select("*").
			Omit(clause.Associations, "created_at").
			Updates(m).Error
		if err != nil {
			return translate(err, m.TableName())
		}

		active, err := recomputeActive(tx, m)
		if err != nil {
			return err
		}
		meta.Active = active

		return l.record(ctx, tx, m, ActionUpdate, actor)
	})
	return l.finish(ctx, m, ActionUpdate, err)
}

// Delete removes m; child rows go with it through ON DELETE CASCADE.
func (l *Lifecycle) Delete(ctx context.Context, m Model, actor Actor) error {
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Table(m.TableName()).Where("id = ?", m.RecordID()).Delete(m)
		if res.Error != nil {
			return translate(res.Error, m.TableName())
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return l.record(ctx, tx, m, ActionDelete, actor)
	})
	return l.finish(ctx, m, ActionDelete, err)
}

func (l *Lifecycle) prepare(m Model) error {
	if d, ok := m.(Defaulter); ok {
		d.ApplyDefaults(l.Now())
	}
	if c, ok := m.(FieldChecker); ok {
		if err := c.CheckFields(); err != nil {
			return err
		}
	}
	return nil
}

func (l *Lifecycle) record(ctx context.Context, tx *gorm.DB, m Model, action string, actor Actor) error {
	if l.recorder == nil {
		return nil
	}
	return l.recorder.Record(ctx, tx, Change{
		Table:    m.TableName(),
		RecordID: m.RecordID(),
		Action:   action,
		ActorID:  actor.UserID,
		OwnerID:  m.Meta().OwnerID,
	})
}

func (l *Lifecycle) finish(ctx context.Context, m Model, action string, err error) error {
	log := obslogger.WithContext(ctx, l.log).With(
		zap.String("entity", m.TableName()),
		zap.String("operation", action),
		zap.Int64("record_id", m.RecordID()),
	)
	switch {
	case err == nil:
		l.metrics.RecordWrite(ctx, m.TableName(), action)
		log.Debug("record written")
	case IsIntegrity(err):
		l.metrics.RecordIntegrityViolation(ctx, m.TableName(), "duplicate")
		log.Info("record rejected", zap.Error(err))
	case IsReference(err):
		l.metrics.RecordIntegrityViolation(ctx, m.TableName(), "reference")
		log.Info("record rejected", zap.Error(err))
	case errors.Is(err, ErrNotFound):
	default:
		log.Error("record write failed", zap.Error(err))
	}
	return err
}

// activeRule decides the flag from the row as stored after the update.
const activeRule = "CASE WHEN created_at = updated_at THEN true ELSE false END"

// recomputeActive is the second pass of Update. UpdateColumn skips hooks and
// time tracking, so updated_at is not touched again.
func recomputeActive(tx *gorm.DB, m Model) (bool, error) {
	err := tx.Table(m.TableName()).
		Where("id = ?", m.RecordID()).
		UpdateColumn("active", gorm.Expr(activeRule)).Error
	if err != nil {
		return false, err
	}

	var active bool
	row := tx.Table(m.TableName()).Select("active").Where("id = ?", m.RecordID()).Row()
	if err := row.Scan(&active); err != nil {
		return false, err
	}
	return active, nil
}

// checkOwner verifies an owner that did not come from an authenticated
// actor. Not every dialect carries the owner foreign key.
func checkOwner(tx *gorm.DB, owner int64) error {
	var count int64
	if err := tx.Table(OwnerTable).Where("id = ?", owner).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return &ReferenceError{Field: "owner", Entity: OwnerTable, ID: owner}
	}
	return nil
}

func checkReferences(tx *gorm.DB, m Model) error {
	r, ok := m.(Referencer)
	if !ok {
		return nil
	}
	for _, ref := range r.References() {
		if ref.ID <= 0 {
			return Invalid(ref.Field, "This field is required.")
		}
		var count int64
		if err := tx.Table(ref.Table).Where("id = ?", ref.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return &ReferenceError{Field: ref.Field, Entity: ref.Table, ID: ref.ID}
		}
	}
	return nil
}
