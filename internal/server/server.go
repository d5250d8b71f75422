package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/solarops/internal/admin"
	admindomain "github.com/smallbiznis/solarops/internal/admin/domain"
	"github.com/smallbiznis/solarops/internal/audit"
	auditdomain "github.com/smallbiznis/solarops/internal/audit/domain"
	"github.com/smallbiznis/solarops/internal/auth"
	authdomain "github.com/smallbiznis/solarops/internal/auth/domain"
	"github.com/smallbiznis/solarops/internal/authorization"
	"github.com/smallbiznis/solarops/internal/config"
	"github.com/smallbiznis/solarops/internal/measurement"
	measurementdomain "github.com/smallbiznis/solarops/internal/measurement/domain"
	"github.com/smallbiznis/solarops/internal/notification"
	notificationdomain "github.com/smallbiznis/solarops/internal/notification/domain"
	"github.com/smallbiznis/solarops/internal/observability"
	obsmiddleware "github.com/smallbiznis/solarops/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/solarops/internal/observability/metrics"
	obstracing "github.com/smallbiznis/solarops/internal/observability/tracing"
	"github.com/smallbiznis/solarops/internal/plant"
	plantdomain "github.com/smallbiznis/solarops/internal/plant/domain"
	"github.com/smallbiznis/solarops/internal/ratelimit"
	"github.com/smallbiznis/solarops/internal/record"
	"github.com/smallbiznis/solarops/internal/registry"
	"github.com/smallbiznis/solarops/internal/utility"
	utilitydomain "github.com/smallbiznis/solarops/internal/utility/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	apiPrefix   = "/solar-api"
	corePrefix  = apiPrefix + "/core"
	adminPrefix = apiPrefix + "/admin"
)

var Module = fx.Module("http.server",
	record.Module,
	audit.Module,
	auth.Module,
	authorization.Module,
	ratelimit.Module,
	plant.Module,
	measurement.Module,
	utility.Module,
	notification.Module,
	registry.Module,
	admin.Module,
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
		SlowRequest:     obsCfg.SlowRequest,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, s *Server) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", srv.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	log             *zap.Logger
	authsvc         authdomain.Service
	authzSvc        authorization.Service
	auditSvc        auditdomain.Service
	adminSvc        admindomain.Service
	registry        *registry.Registry
	plantSvc        plantdomain.Service
	utilitySvc      utilitydomain.Service
	measurementSvc  measurementdomain.Service
	notificationSvc notificationdomain.Service
	loginLimiter    *ratelimit.LoginLimiter
	metrics         *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	Log             *zap.Logger
	Authsvc         authdomain.Service
	AuthzSvc        authorization.Service
	AuditSvc        auditdomain.Service
	AdminSvc        admindomain.Service
	Registry        *registry.Registry
	PlantSvc        plantdomain.Service
	UtilitySvc      utilitydomain.Service
	MeasurementSvc  measurementdomain.Service
	NotificationSvc notificationdomain.Service
	LoginLimiter    *ratelimit.LoginLimiter `optional:"true"`
	Metrics         *obsmetrics.Metrics     `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		log:             log.Named("http.server"),
		authsvc:         p.Authsvc,
		authzSvc:        p.AuthzSvc,
		auditSvc:        p.AuditSvc,
		adminSvc:        p.AdminSvc,
		registry:        p.Registry,
		plantSvc:        p.PlantSvc,
		utilitySvc:      p.UtilitySvc,
		measurementSvc:  p.MeasurementSvc,
		notificationSvc: p.NotificationSvc,
		loginLimiter:    p.LoginLimiter,
		metrics:         p.Metrics,
	}

	svc.registerUserRoutes()
	svc.registerCoreRoutes()
	svc.registerAdminRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerUserRoutes() {
	user := s.engine.Group(apiPrefix + "/user")

	user.POST("/token/", s.TokenRateLimit(), s.ObtainToken)

	authed := user.Group("", s.TokenRequired())
	{
		authed.POST("/create/", s.authorize(authorization.ObjectUser, authorization.ActionUserCreate), s.CreateUser)
		authed.GET("/me/", s.Me)
		authed.PUT("/me/", s.UpdateMe)
		authed.PATCH("/me/", s.UpdateMe)
		authed.POST("/logout/", s.Logout)
	}
}

func (s *Server) registerCoreRoutes() {
	core := s.engine.Group(corePrefix, s.TokenRequired(), s.authorizeRecord())

	core.GET("/", s.ListEntities)
	core.GET("/:entity/", s.ListRecords)
	core.POST("/:entity/", s.CreateRecord)
	core.GET("/:entity/:id/", s.GetRecord)
	core.PUT("/:entity/:id/", s.UpdateRecord)
	core.PATCH("/:entity/:id/", s.UpdateRecord)
	core.DELETE("/:entity/:id/", s.DeleteRecord)

	reports := s.engine.Group(apiPrefix+"/reports", s.TokenRequired(), s.authorizeRecord())
	{
		reports.GET("/groups/", s.GroupByName)
		reports.GET("/groups/:id/summary/", s.GroupSummary)
		reports.GET("/utility-plants/:id/statement/", s.UtilityStatement)
		reports.GET("/power-plants/:id/weather/", s.PlantWeather)
		reports.GET("/loggers/generation/", s.LoggerGeneration)
		reports.GET("/mail-impact/", s.MailImpact)
		reports.GET("/mails/", s.MailsByImpact)
	}
}

func (s *Server) registerAdminRoutes() {
	adminGroup := s.engine.Group(adminPrefix, s.TokenRequired())

	view := s.authorize(authorization.ObjectAdmin, authorization.ActionAdminView)
	adminGroup.GET("/", view, s.AdminIndex)
	adminGroup.GET("/audit-logs/", s.authorize(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
	adminGroup.GET("/:entity/", view, s.AdminList)
	adminGroup.GET("/:entity/export.xlsx", s.authorize(authorization.ObjectAdmin, authorization.ActionAdminExport), s.AdminExport)
}

func (s *Server) registerFallback() {
	s.engine.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, adminPrefix+"/")
	})
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
