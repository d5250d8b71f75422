package record

import "time"

// Key is the auto-increment identity shared by every table.
type Key struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
}

func (k Key) RecordID() int64 { return k.ID }

func (k *Key) SetRecordID(id int64) { k.ID = id }

// Audit is the bookkeeping block embedded by value in every entity.
// Timestamps are written by Lifecycle only, never by gorm's auto time tracking.
type Audit struct {
	Active    bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime:false" json:"updated_at"`
	OwnerID   int64     `gorm:"column:owner_id;not null;index" json:"owner"`
}

func (a *Audit) Meta() *Audit { return a }

// Model is implemented by every persisted entity.
type Model interface {
	TableName() string
	RecordID() int64
	SetRecordID(id int64)
	Meta() *Audit
}

// Labeler renders the human readable form used by admin listings.
type Labeler interface {
	Label() string
}

// FieldChecker reports length and precision violations.
type FieldChecker interface {
	CheckFields() error
}

// Defaulter fills fields whose default depends on the current date.
type Defaulter interface {
	ApplyDefaults(now time.Time)
}

// Referencer lists the parent rows an entity points at.
type Referencer interface {
	References() []Reference
}

// Validator is the explicit cross-field check. Lifecycle never calls it;
// callers run Validate before persisting.
type Validator interface {
	Validate() error
}

// Validate runs v.Validate when v implements Validator.
func Validate(v any) error {
	if val, ok := v.(Validator); ok {
		return val.Validate()
	}
	return nil
}

// Check runs the per-field checks a write would apply, then Validate. It
// writes nothing.
func Check(v any) error {
	if c, ok := v.(FieldChecker); ok {
		if err := c.CheckFields(); err != nil {
			return err
		}
	}
	return Validate(v)
}

// Reference names one parent row required by a child.
type Reference struct {
	Field string
	Table string
	ID    int64
}
