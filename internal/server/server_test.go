package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	adminservice "github.com/smallbiznis/solarops/internal/admin/service"
	auditdomain "github.com/smallbiznis/solarops/internal/audit/domain"
	auditrepository "github.com/smallbiznis/solarops/internal/audit/repository"
	auditservice "github.com/smallbiznis/solarops/internal/audit/service"
	authdomain "github.com/smallbiznis/solarops/internal/auth/domain"
	authrepository "github.com/smallbiznis/solarops/internal/auth/repository"
	authservice "github.com/smallbiznis/solarops/internal/auth/service"
	"github.com/smallbiznis/solarops/internal/authorization"
	"github.com/smallbiznis/solarops/internal/config"
	measurementdomain "github.com/smallbiznis/solarops/internal/measurement/domain"
	notificationdomain "github.com/smallbiznis/solarops/internal/notification/domain"
	"github.com/smallbiznis/solarops/internal/observability"
	plantdomain "github.com/smallbiznis/solarops/internal/plant/domain"
	"github.com/smallbiznis/solarops/internal/ratelimit"
	"github.com/smallbiznis/solarops/internal/record"
	"github.com/smallbiznis/solarops/internal/registry/registrytest"
)

type testServer struct {
	*registrytest.Env
	server *Server
	auth   authdomain.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := registrytest.New(t)
	require.NoError(t, env.DB.AutoMigrate(&authdomain.Token{}, &auditdomain.AuditLog{}))

	log := zap.NewNop()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	auditSvc := auditservice.NewService(auditservice.Params{
		DB: env.DB, Log: log, GenID: node, Clock: env.Clock, Repo: auditrepository.Provide(),
	})
	userRepo, tokenRepo := authrepository.New(env.DB)
	authSvc := authservice.New(authservice.Params{
		Log: log, Repo: userRepo, TokenRepo: tokenRepo, GenID: node, Clock: env.Clock, Audit: auditSvc,
	})

	enforcer, err := authorization.NewEnforcer(env.DB)
	require.NoError(t, err)
	authzSvc := authorization.NewService(authorization.Params{Log: log, Enforcer: enforcer})

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	limiter, err := ratelimit.NewLoginLimiterWithClient(client, 60, 3)
	require.NoError(t, err)

	srv := NewServer(ServerParams{
		Gin:      NewEngine(observability.Config{}, nil),
		Cfg:      env.Config,
		DB:       env.DB,
		Log:      log,
		Authsvc:  authSvc,
		AuthzSvc: authzSvc,
		AuditSvc: auditSvc,
		AdminSvc: adminservice.New(adminservice.Params{
			DB: env.DB, Log: log, Registry: env.Registry,
			Config: config.NewStaticAdminConfigHolder(config.DefaultAdminConfig()),
		}),
		Registry:        env.Registry,
		PlantSvc:        env.Plants,
		UtilitySvc:      env.Utility,
		MeasurementSvc:  env.Measurements,
		NotificationSvc: env.Notifications,
		LoginLimiter:    limiter,
	})
	return &testServer{Env: env, server: srv, auth: authSvc}
}

// login creates an account and returns its API token.
func (ts *testServer) login(t *testing.T, email string, staff bool) string {
	t.Helper()
	ctx := context.Background()
	_, err := ts.auth.CreateUser(ctx, authdomain.CreateUserRequest{
		Email: email, Password: "correct-horse", IsStaff: staff,
	})
	require.NoError(t, err)
	result, err := ts.auth.ObtainToken(ctx, authdomain.TokenRequest{Email: email, Password: "correct-horse"})
	require.NoError(t, err)
	return result.Token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	rec := httptest.NewRecorder()
	ts.server.Engine().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorType(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	payload, ok := decode(t, rec)["error"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	return payload["type"].(string)
}

func TestRootRedirectsToAdmin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/solar-api/admin/", rec.Header().Get("Location"))

	rec = ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenLifecycle(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	_, err := ts.auth.CreateUser(ctx, authdomain.CreateUserRequest{Email: "op@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	rec := ts.do(t, http.MethodPost, "/solar-api/user/token/", "", map[string]string{
		"email": "op@example.com", "password": "wrong-horse",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", errorType(t, rec))

	rec = ts.do(t, http.MethodPost, "/solar-api/user/token/", "", map[string]string{
		"email": "op@example.com", "password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := decode(t, rec)["token"].(string)
	assert.Len(t, token, 40)

	rec = ts.do(t, http.MethodGet, "/solar-api/user/me/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token", rec.Header().Get("WWW-Authenticate"))

	rec = ts.do(t, http.MethodGet, "/solar-api/user/me/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "op@example.com", decode(t, rec)["email"])

	req := httptest.NewRequest(http.MethodGet, "/solar-api/user/me/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	bearer := httptest.NewRecorder()
	ts.server.Engine().ServeHTTP(bearer, req)
	assert.Equal(t, http.StatusOK, bearer.Code)

	rec = ts.do(t, http.MethodPost, "/solar-api/user/logout/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully", decode(t, rec)["message"])

	rec = ts.do(t, http.MethodGet, "/solar-api/user/me/", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewLoginRevokesPreviousToken(t *testing.T) {
	ts := newTestServer(t)
	first := ts.login(t, "op@example.com", false)

	rec := ts.do(t, http.MethodPost, "/solar-api/user/token/", "", map[string]string{
		"email": "op@example.com", "password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	second := decode(t, rec)["token"].(string)
	assert.NotEqual(t, first, second)

	rec = ts.do(t, http.MethodGet, "/solar-api/user/me/", first, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = ts.do(t, http.MethodGet, "/solar-api/user/me/", second, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenEndpointIsRateLimited(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{"email": "nobody@example.com", "password": "whatever-1"}
	for i := 0; i < 3; i++ {
		rec := ts.do(t, http.MethodPost, "/solar-api/user/token/", "", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, "attempt %d", i+1)
	}

	rec := ts.do(t, http.MethodPost, "/solar-api/user/token/", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limited", errorType(t, rec))
}

func TestCreateUserRequiresAuthentication(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "op@example.com", false)

	payload := map[string]string{"email": "new@example.com", "name": "New", "password": "long-enough"}
	rec := ts.do(t, http.MethodPost, "/solar-api/user/create/", "", payload)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/solar-api/user/create/", token, payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	assert.Equal(t, "new@example.com", created["email"])
	assert.NotContains(t, created, "password_hash")

	rec = ts.do(t, http.MethodPost, "/solar-api/user/create/", token, payload)
	assert.Equal(t, http.StatusConflict, rec.Code)

	payload["email"] = "short@example.com"
	payload["password"] = "short"
	rec = ts.do(t, http.MethodPost, "/solar-api/user/create/", token, payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateMe(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "op@example.com", false)

	rec := ts.do(t, http.MethodPut, "/solar-api/user/me/", token, map[string]string{"name": "Operator"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPatch, "/solar-api/user/me/", token, map[string]string{"name": "Operator"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Operator", decode(t, rec)["name"])
}

func TestRecordCRUD(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "op@example.com", false)
	me, err := ts.auth.Authenticate(context.Background(), token)
	require.NoError(t, err)

	rec := ts.do(t, http.MethodPost, "/solar-api/core/plantgroup/", "", map[string]any{"name": "North"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/solar-api/core/plantgroup/", token, map[string]any{
		"name": "North", "owner": 999, "active": false,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	group := decode(t, rec)
	id := int64(group["id"].(float64))
	assert.Equal(t, float64(me.ID), group["owner"], "the caller owns what it creates")
	assert.Equal(t, true, group["active"])

	rec = ts.do(t, http.MethodPost, "/solar-api/core/plantgroup/", token, map[string]any{"name": "North"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	ts.Clock.Advance(time.Second)
	path := fmt.Sprintf("/solar-api/core/plantgroup/%d/", id)
	rec = ts.do(t, http.MethodPatch, path, token, map[string]any{"name": "North Renamed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode(t, rec)
	assert.Equal(t, "North Renamed", updated["name"])
	assert.Equal(t, false, updated["active"])
	assert.Equal(t, group["created_at"], updated["created_at"])

	rec = ts.do(t, http.MethodGet, "/solar-api/core/plantgroup/?q=renamed", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["data"], 1)

	rec = ts.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/solar-api/core/no-such-thing/", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordReferenceAndCrossFieldErrors(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "op@example.com", false)

	rec := ts.do(t, http.MethodPost, "/solar-api/core/utilityplantid/", token, map[string]any{
		"plant_id": "UP-1", "group": 42,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	errs := decode(t, rec)["error"].(map[string]any)["errors"].([]any)
	assert.Equal(t, "group", errs[0].(map[string]any)["field"])

	rec = ts.do(t, http.MethodPost, "/solar-api/core/plantgroup/", token, map[string]any{"name": "North"})
	require.Equal(t, http.StatusCreated, rec.Code)
	groupID := decode(t, rec)["id"]

	rec = ts.do(t, http.MethodPost, "/solar-api/core/utilityplantid/", token, map[string]any{
		"plant_id": "UP-1", "group": groupID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	plantID := decode(t, rec)["id"]

	rec = ts.do(t, http.MethodPost, "/solar-api/core/curtailmentevent/", token, map[string]any{
		"plant": plantID, "date": "2024-05-01", "start_time": "10:00:00", "end_time": "09:00:00",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	errs = decode(t, rec)["error"].(map[string]any)["errors"].([]any)
	assert.Equal(t, "end_time", errs[0].(map[string]any)["field"])
	assert.Equal(t, "End time must be later than start time.", errs[0].(map[string]any)["message"])

	var count int64
	require.NoError(t, ts.DB.Table("curtailment_events").Count(&count).Error)
	assert.Zero(t, count)

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/solar-api/reports/groups/%v/summary/", groupID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	counts := decode(t, rec)["counts"].(map[string]any)
	assert.Equal(t, float64(1), counts["utility_plants"])
}

func TestAdminRequiresStaff(t *testing.T) {
	ts := newTestServer(t)
	userToken := ts.login(t, "op@example.com", false)
	staffToken := ts.login(t, "admin@example.com", true)

	rec := ts.do(t, http.MethodGet, "/solar-api/admin/", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodGet, "/solar-api/admin/", staffToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode(t, rec)["data"], 11)

	for _, name := range []string{"North", "South"} {
		rec = ts.do(t, http.MethodPost, "/solar-api/core/plantgroup/", staffToken, map[string]any{"name": name})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/solar-api/admin/plantgroup/?q=sou", staffToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	listing := decode(t, rec)
	assert.Equal(t, []any{"PlantGroup", "name", "active", "created_at", "updated_at", "owner"}, listing["columns"])
	assert.Len(t, listing["rows"], 1)

	rec = ts.do(t, http.MethodGet, "/solar-api/admin/plantgroup/export.xlsx", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodGet, "/solar-api/admin/plantgroup/export.xlsx", staffToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "2", rec.Header().Get("X-Row-Count"))

	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	rows, err := book.GetRows("PlantGroup")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestAuditLogListing(t *testing.T) {
	ts := newTestServer(t)
	userToken := ts.login(t, "op@example.com", false)
	staffToken := ts.login(t, "admin@example.com", true)

	rec := ts.do(t, http.MethodGet, "/solar-api/admin/audit-logs/", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodGet, "/solar-api/admin/audit-logs/?action=auth.token_issued", staffToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode(t, rec)["data"], 2)

	rec = ts.do(t, http.MethodGet, "/solar-api/admin/audit-logs/?start_at=yesterday", staffToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "op@example.com", false)
	ctx := context.Background()

	group := &plantdomain.PlantGroup{Name: "North"}
	require.NoError(t, ts.Plants.Groups().Create(ctx, group, record.Anonymous))
	plant := &plantdomain.PowerPlantDetail{
		SystemName:   "Alpha",
		SystemID:     "SYS-1",
		CustomerName: "Hokuto Energy",
		CountryName:  "Japan",
		Latitude:     decimal.RequireFromString("35.1"),
		Longitude:    decimal.RequireFromString("139.2"),
		Altitude:     decimal.RequireFromString("10"),
		Azimuth:      decimal.RequireFromString("180"),
		Tilt:         decimal.RequireFromString("20"),
		CapacityDC:   decimal.RequireFromString("500"),
		GroupID:      group.ID,
	}
	require.NoError(t, ts.Plants.Plants().Create(ctx, plant, record.Anonymous))
	logger := &plantdomain.LoggerCategory{LoggerName: "LG-01", GroupID: group.ID}
	require.NoError(t, ts.Plants.Loggers().Create(ctx, logger, record.Anonymous))

	for d, value := range map[int]string{1: "100.25", 2: "200.5", 5: "50"} {
		date := record.NewDate(2024, time.January, d)
		require.NoError(t, ts.Measurements.Generation().Create(ctx, &measurementdomain.LoggerPowerGen{
			LoggerID: logger.ID, PowerGen: decimal.RequireFromString(value), Date: &date,
		}, record.Anonymous))
		require.NoError(t, ts.Measurements.Weather().Create(ctx, &measurementdomain.GisWeather{
			PowerPlantID: plant.ID,
			GHI:          decimal.RequireFromString("4.125"),
			GTI:          decimal.RequireFromString("4.9"),
			PVOut:        decimal.RequireFromString(value[:1]),
			Date:         &date,
		}, record.Anonymous))
	}
	for i, impact := range []notificationdomain.Impact{"Major", "Minor", "Minor"} {
		body := fmt.Sprintf("mail %d", i)
		require.NoError(t, ts.Notifications.Mails().Create(ctx, &notificationdomain.MailNotification{
			From: "grid@example.com", Body: &body, Impact: impact,
		}, record.Anonymous))
	}

	rec := ts.do(t, http.MethodGet, "/solar-api/reports/groups/?name=North", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	found := decode(t, rec)
	assert.Equal(t, "North", found["name"])
	assert.Equal(t, float64(1), found["counts"].(map[string]any)["loggers"])

	rec = ts.do(t, http.MethodGet, "/solar-api/reports/groups/?name=nowhere", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/solar-api/reports/power-plants/%d/weather/?from=2024-01-01&to=2024-01-02", plant.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode(t, rec)["data"], 2)

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/solar-api/reports/power-plants/%d/weather/?from=2024-01-05&to=2024-01-01", plant.ID), token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	errs := decode(t, rec)["error"].(map[string]any)["errors"].([]any)
	assert.Equal(t, "to", errs[0].(map[string]any)["field"])

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/solar-api/reports/power-plants/%d/weather/?from=yesterday&to=2024-01-01", plant.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/solar-api/reports/loggers/generation/?name=LG-01&from=2024-01-01&to=2024-01-03", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := decode(t, rec)
	assert.Equal(t, float64(logger.ID), summary["logger"])
	assert.Equal(t, float64(2), summary["days"])
	total, err := decimal.NewFromString(summary["total"].(string))
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("300.75")), total.String())

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/solar-api/reports/loggers/generation/?logger=%d&from=2024-01-01&to=2024-01-31", logger.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(3), decode(t, rec)["days"])

	rec = ts.do(t, http.MethodGet, "/solar-api/reports/loggers/generation/?from=2024-01-01&to=2024-01-31", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/solar-api/reports/mail-impact/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	breakdown := decode(t, rec)["impact"].(map[string]any)
	assert.Equal(t, float64(1), breakdown["Major"])
	assert.Equal(t, float64(2), breakdown["Minor"])

	rec = ts.do(t, http.MethodGet, "/solar-api/reports/mails/?impact=Minor&limit=1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode(t, rec)["data"], 1)

	rec = ts.do(t, http.MethodGet, "/solar-api/reports/mails/?impact=Severe", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	errs = decode(t, rec)["error"].(map[string]any)["errors"].([]any)
	assert.Equal(t, "impact", errs[0].(map[string]any)["field"])

	rec = ts.do(t, http.MethodGet, "/solar-api/reports/mails/?impact=Minor&limit=zero", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/solar-api/reports/mail-impact/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
