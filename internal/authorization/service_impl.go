package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/smallbiznis/solarops/internal/audit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	RoleUser  = "role:user"
	RoleStaff = "role:staff"
)

const (
	ObjectRecord   = "record"
	ObjectUser     = "user"
	ObjectAdmin    = "admin"
	ObjectAuditLog = "audit_log"
)

const (
	ActionRecordView   = "record.view"
	ActionRecordCreate = "record.create"
	ActionRecordUpdate = "record.update"
	ActionRecordDelete = "record.delete"

	ActionUserCreate = "user.create"

	ActionAdminView   = "admin.view"
	ActionAdminExport = "admin.export"

	ActionAuditLogView = "audit_log.view"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

// NewEnforcer stores policies in casbin_rule through the gorm adapter and
// seeds the built-in roles.
func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, subject Subject, object string, action string) error {
	if subject.UserID <= 0 {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	sub := subjectName(subject)
	if err := s.ensureGrouping(sub, roleFor(subject)); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(sub, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Info("authorization denied",
			zap.Int64("user_id", subject.UserID),
			zap.String("object", object),
			zap.String("action", action),
		)
		s.auditDenied(ctx, subject, object, action)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) Allowed(ctx context.Context, subject Subject) ([][]string, error) {
	if subject.UserID <= 0 {
		return nil, ErrInvalidActor
	}
	sub := subjectName(subject)
	if err := s.ensureGrouping(sub, roleFor(subject)); err != nil {
		return nil, err
	}
	perms, err := s.enforcer.GetImplicitPermissionsForUser(sub)
	if err != nil {
		return nil, err
	}
	out := make([][]string, 0, len(perms))
	for _, p := range perms {
		if len(p) < 3 {
			continue
		}
		out = append(out, []string{p[1], p[2]})
	}
	return out, nil
}

// ensureGrouping keeps exactly one role link per user, following the staff flag.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 || rule[1] == roleName {
			continue
		}
		params := make([]interface{}, 0, len(rule))
		for _, value := range rule {
			params = append(params, value)
		}
		if _, err := s.enforcer.RemoveGroupingPolicy(params...); err != nil {
			return err
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, subject Subject, object string, action string) {
	if s.auditSvc == nil {
		return
	}
	err := s.auditSvc.Log(ctx, auditdomain.Event{
		Action:     "authorization.denied",
		ActorID:    subject.UserID,
		TargetType: "authorization",
		Metadata: map[string]any{
			"object":  object,
			"action":  action,
			"subject": subjectName(subject),
		},
	})
	if err != nil {
		s.log.Warn("audit log failed", zap.Error(err))
	}
}

func subjectName(subject Subject) string {
	return fmt.Sprintf("user:%d", subject.UserID)
}

func roleFor(subject Subject) string {
	if subject.IsStaff {
		return RoleStaff
	}
	return RoleUser
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Authenticated users manage records and may register users.
		{RoleUser, ObjectRecord, ActionRecordView},
		{RoleUser, ObjectRecord, ActionRecordCreate},
		{RoleUser, ObjectRecord, ActionRecordUpdate},
		{RoleUser, ObjectRecord, ActionRecordDelete},
		{RoleUser, ObjectUser, ActionUserCreate},

		// Staff additionally reach the admin surface.
		{RoleStaff, ObjectAdmin, ActionAdminView},
		{RoleStaff, ObjectAdmin, ActionAdminExport},
		{RoleStaff, ObjectAuditLog, ActionAuditLogView},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	if _, err := enforcer.AddGroupingPolicy(RoleStaff, RoleUser); err != nil {
		return err
	}
	return nil
}
