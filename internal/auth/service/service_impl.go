package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/solarops/internal/audit/domain"
	"github.com/smallbiznis/solarops/internal/auth/domain"
	"github.com/smallbiznis/solarops/internal/auth/password"
	"github.com/smallbiznis/solarops/internal/clock"
	"github.com/smallbiznis/solarops/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// tokenBytes gives a 40 character hex key.
const tokenBytes = 20

type Params struct {
	fx.In

	Log       *zap.Logger
	Repo      domain.Repository
	TokenRepo domain.TokenRepository
	GenID     *snowflake.Node
	Clock     clock.Clock
	Metrics   *metrics.Metrics    `optional:"true"`
	Audit     auditdomain.Service `optional:"true"`
}

type Service struct {
	log       *zap.Logger
	repo      domain.Repository
	tokenRepo domain.TokenRepository
	genID     *snowflake.Node
	clock     clock.Clock
	metrics   *metrics.Metrics
	audit     auditdomain.Service
}

func New(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Service{
		log:       p.Log.Named("auth.service"),
		repo:      p.Repo,
		tokenRepo: p.TokenRepo,
		genID:     p.GenID,
		clock:     clk,
		metrics:   p.Metrics,
		audit:     p.Audit,
	}
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}
	if password.Check(req.Password) != nil {
		return nil, domain.ErrPasswordTooShort
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = defaultDisplayName(email)
	}

	now := s.clock.Now().UTC()
	user := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: &hashed,
		IsActive:     true,
		IsStaff:      req.IsStaff,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user created", zap.Int64("user_id", user.ID), zap.Bool("is_staff", user.IsStaff))
	return user, nil
}

func (s *Service) EnsureUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, bool, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, false, domain.ErrInvalidEmail
	}
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, err
	}

	user, err := s.CreateUser(ctx, req)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *Service) ObtainToken(ctx context.Context, req domain.TokenRequest) (*domain.TokenResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.auditDenied(ctx, email, nil)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == nil || !password.Verify(req.Password, *user.PasswordHash) || !user.IsActive {
		s.auditDenied(ctx, email, &user.ID)
		return nil, domain.ErrInvalidCredentials
	}

	rawToken, err := newToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	token := &domain.Token{
		ID:        s.genID.Generate(),
		UserID:    user.ID,
		KeyHash:   hashToken(rawToken),
		CreatedAt: now,
	}
	if err := s.tokenRepo.ReplaceToken(ctx, token); err != nil {
		return nil, err
	}
	fields := map[string]any{"last_login": now}
	if password.NeedsRehash(*user.PasswordHash) {
		rehashed, err := password.Hash(req.Password)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = rehashed
	}
	if err := s.repo.UpdateFields(ctx, user.ID, fields); err != nil {
		return nil, err
	}

	s.metrics.RecordTokenIssued(ctx)
	s.log.Info("token issued", zap.Int64("user_id", user.ID))
	s.auditLog(ctx, "auth.token_issued", user.ID, map[string]any{"token": rawToken})
	return &domain.TokenResult{Token: rawToken, UserID: user.ID}, nil
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.User, error) {
	key := strings.TrimSpace(rawToken)
	if key == "" {
		return nil, domain.ErrInvalidToken
	}

	token, err := s.tokenRepo.GetTokenByHash(ctx, hashToken(key))
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}
	return user, nil
}

func (s *Service) Logout(ctx context.Context, userID int64) error {
	deleted, err := s.tokenRepo.DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrTokenNotFound
	}
	s.log.Info("token revoked", zap.Int64("user_id", userID))
	s.auditLog(ctx, "auth.logout", userID, nil)
	return nil
}

func (s *Service) CurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *Service) UpdateCurrentUser(ctx context.Context, userID int64, req domain.UpdateUserRequest) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Email != nil {
		email, err := normalizeEmail(*req.Email)
		if err != nil {
			return nil, domain.ErrInvalidEmail
		}
		if email != user.Email {
			if _, err := s.repo.FindByEmail(ctx, email); err == nil {
				return nil, domain.ErrUserExists
			} else if !errors.Is(err, domain.ErrUserNotFound) {
				return nil, err
			}
			fields["email"] = email
		}
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.Password != nil {
		if password.Check(*req.Password) != nil {
			return nil, domain.ErrPasswordTooShort
		}
		hashed, err := password.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = hashed
	}
	if len(fields) == 0 {
		return user, nil
	}

	fields["updated_at"] = s.clock.Now().UTC()
	if err := s.repo.UpdateFields(ctx, userID, fields); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, userID)
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(addr.Address)), nil
}

func defaultDisplayName(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) != "" {
		return strings.TrimSpace(parts[0])
	}
	return email
}

// auditDenied records a refused token request. The caller is anonymous; the
// attempted email is stored masked.
func (s *Service) auditDenied(ctx context.Context, email string, userID *int64) {
	if s.audit == nil {
		return
	}
	err := s.audit.Log(ctx, auditdomain.Event{
		Action:     "auth.token_denied",
		TargetType: domain.User{}.TableName(),
		TargetID:   userID,
		Secrets:    map[string]any{"attempt_email": email},
	})
	if err != nil {
		s.log.Warn("audit log failed", zap.String("action", "auth.token_denied"), zap.Error(err))
	}
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// auditLog is best effort; a trail failure never fails the login itself.
func (s *Service) auditLog(ctx context.Context, action string, userID int64, secrets map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Log(ctx, auditdomain.Event{
		Action:     action,
		ActorID:    userID,
		TargetType: domain.User{}.TableName(),
		TargetID:   &userID,
		Secrets:    secrets,
	})
	if err != nil {
		s.log.Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}
