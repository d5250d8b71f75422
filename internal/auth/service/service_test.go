package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/solarops/internal/audit/domain"
	authdomain "github.com/smallbiznis/solarops/internal/auth/domain"
	"github.com/smallbiznis/solarops/internal/auth/password"
	"github.com/smallbiznis/solarops/internal/auth/repository"
	"github.com/smallbiznis/solarops/internal/clock"
	"github.com/smallbiznis/solarops/pkg/db"
	"go.uber.org/zap"
	"golang.org/x/crypto/pbkdf2"
)

func newTestService(t *testing.T) authdomain.Service {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&authdomain.User{}, &authdomain.Token{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	repo, tokenRepo := repository.New(dbConn)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	return New(Params{
		Log:       zap.NewNop(),
		Repo:      repo,
		TokenRepo: tokenRepo,
		GenID:     node,
		Clock:     clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
}

func createAlice(t *testing.T, svc authdomain.Service) *authdomain.User {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "Alice@Example.com",
		Password: "correct-password",
		Name:     "Alice",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestCreateUserNormalizesEmail(t *testing.T) {
	svc := newTestService(t)
	user := createAlice(t, svc)
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if user.PasswordHash == nil || *user.PasswordHash == "correct-password" {
		t.Fatal("expected hashed password")
	}

	_, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "another-password",
	})
	if !errors.Is(err, authdomain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestCreateUserRejectsShortPassword(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "bob@example.com",
		Password: "short",
	})
	if !errors.Is(err, authdomain.ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestObtainTokenWrongPassword(t *testing.T) {
	svc := newTestService(t)
	createAlice(t, svc)

	_, err := svc.ObtainToken(context.Background(), authdomain.TokenRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	if !errors.Is(err, authdomain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestTokenLifecycle(t *testing.T) {
	svc := newTestService(t)
	alice := createAlice(t, svc)
	ctx := context.Background()

	first, err := svc.ObtainToken(ctx, authdomain.TokenRequest{Email: "alice@example.com", Password: "correct-password"})
	if err != nil {
		t.Fatalf("obtain token: %v", err)
	}
	if len(first.Token) != 40 {
		t.Fatalf("expected 40 char token, got %d", len(first.Token))
	}

	user, err := svc.Authenticate(ctx, first.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != alice.ID {
		t.Fatalf("expected user %d, got %d", alice.ID, user.ID)
	}
	if user.LastLogin == nil {
		t.Fatal("expected last_login to be stamped")
	}

	second, err := svc.ObtainToken(ctx, authdomain.TokenRequest{Email: "alice@example.com", Password: "correct-password"})
	if err != nil {
		t.Fatalf("obtain second token: %v", err)
	}
	if _, err := svc.Authenticate(ctx, first.Token); !errors.Is(err, authdomain.ErrInvalidToken) {
		t.Fatalf("expected first token to be replaced, got %v", err)
	}

	if err := svc.Logout(ctx, alice.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Authenticate(ctx, second.Token); !errors.Is(err, authdomain.ErrInvalidToken) {
		t.Fatalf("expected token deleted on logout, got %v", err)
	}
	if err := svc.Logout(ctx, alice.ID); !errors.Is(err, authdomain.ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestUpdateCurrentUser(t *testing.T) {
	svc := newTestService(t)
	alice := createAlice(t, svc)
	ctx := context.Background()

	name := "Alice Liddell"
	updated, err := svc.UpdateCurrentUser(ctx, alice.ID, authdomain.UpdateUserRequest{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != name || updated.Email != "alice@example.com" {
		t.Fatalf("unexpected user %+v", updated)
	}

	newPassword := "brand-new-password"
	if _, err := svc.UpdateCurrentUser(ctx, alice.ID, authdomain.UpdateUserRequest{Password: &newPassword}); err != nil {
		t.Fatalf("update password: %v", err)
	}
	if _, err := svc.ObtainToken(ctx, authdomain.TokenRequest{Email: "alice@example.com", Password: newPassword}); err != nil {
		t.Fatalf("expected new password to work: %v", err)
	}

	if _, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{Email: "bob@example.com", Password: "bob-password"}); err != nil {
		t.Fatalf("create bob: %v", err)
	}
	taken := "bob@example.com"
	if _, err := svc.UpdateCurrentUser(ctx, alice.ID, authdomain.UpdateUserRequest{Email: &taken}); !errors.Is(err, authdomain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	req := authdomain.CreateUserRequest{Email: "admin@example.com", Password: "admin-password", IsStaff: true}

	first, created, err := svc.EnsureUser(ctx, req)
	if err != nil || !created {
		t.Fatalf("expected creation, got created=%v err=%v", created, err)
	}
	second, created, err := svc.EnsureUser(ctx, req)
	if err != nil || created {
		t.Fatalf("expected existing user, got created=%v err=%v", created, err)
	}
	if first.ID != second.ID || !second.IsStaff {
		t.Fatalf("unexpected user %+v", second)
	}
}

type recordingAudit struct {
	auditdomain.Service
	events []auditdomain.Event
}

func (r *recordingAudit) Log(_ context.Context, ev auditdomain.Event) error {
	r.events = append(r.events, ev)
	return nil
}

func TestObtainTokenAuditsOutcome(t *testing.T) {
	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&authdomain.User{}, &authdomain.Token{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	repo, tokenRepo := repository.New(dbConn)
	node, _ := snowflake.NewNode(1)
	trail := &recordingAudit{}
	svc := New(Params{
		Log:       zap.NewNop(),
		Repo:      repo,
		TokenRepo: tokenRepo,
		GenID:     node,
		Clock:     clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		Audit:     trail,
	})
	alice := createAlice(t, svc)
	ctx := context.Background()

	_, _ = svc.ObtainToken(ctx, authdomain.TokenRequest{Email: "nobody@example.com", Password: "whatever-pass"})
	_, _ = svc.ObtainToken(ctx, authdomain.TokenRequest{Email: "alice@example.com", Password: "wrong-password"})
	if _, err := svc.ObtainToken(ctx, authdomain.TokenRequest{Email: "alice@example.com", Password: "correct-password"}); err != nil {
		t.Fatalf("obtain token: %v", err)
	}

	if len(trail.events) != 3 {
		t.Fatalf("expected 3 audit events, got %d", len(trail.events))
	}
	unknown, wrong, issued := trail.events[0], trail.events[1], trail.events[2]
	if unknown.Action != "auth.token_denied" || unknown.TargetID != nil || unknown.ActorID != 0 {
		t.Fatalf("unexpected event for unknown email: %+v", unknown)
	}
	if wrong.Action != "auth.token_denied" || wrong.TargetID == nil || *wrong.TargetID != alice.ID {
		t.Fatalf("unexpected event for wrong password: %+v", wrong)
	}
	if wrong.Secrets["attempt_email"] != "alice@example.com" {
		t.Fatalf("expected attempted email in secrets, got %v", wrong.Secrets)
	}
	if issued.Action != "auth.token_issued" || issued.ActorID != alice.ID {
		t.Fatalf("unexpected issue event: %+v", issued)
	}
}

func TestObtainTokenRehashesLegacyPassword(t *testing.T) {
	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&authdomain.User{}, &authdomain.Token{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	repo, tokenRepo := repository.New(dbConn)
	node, _ := snowflake.NewNode(1)
	svc := New(Params{
		Log:       zap.NewNop(),
		Repo:      repo,
		TokenRepo: tokenRepo,
		GenID:     node,
		Clock:     clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	})

	key := pbkdf2.Key([]byte("imported-password"), []byte("legacysalt"), 1000, 32, sha256.New)
	legacy := "pbkdf2_sha256$1000$legacysalt$" + base64.StdEncoding.EncodeToString(key)
	now := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := dbConn.Create(&authdomain.User{
		Email: "legacy@example.com", Name: "Legacy", PasswordHash: &legacy,
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	}).Error; err != nil {
		t.Fatalf("insert legacy user: %v", err)
	}

	ctx := context.Background()
	if _, err := svc.ObtainToken(ctx, authdomain.TokenRequest{Email: "legacy@example.com", Password: "imported-password"}); err != nil {
		t.Fatalf("obtain token with legacy hash: %v", err)
	}

	var stored authdomain.User
	if err := dbConn.Where("email = ?", "legacy@example.com").First(&stored).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if stored.PasswordHash == nil || password.NeedsRehash(*stored.PasswordHash) {
		t.Fatalf("expected an argon2id hash after login, got %v", stored.PasswordHash)
	}
	if _, err := svc.ObtainToken(ctx, authdomain.TokenRequest{Email: "legacy@example.com", Password: "imported-password"}); err != nil {
		t.Fatalf("obtain token after rehash: %v", err)
	}
}
