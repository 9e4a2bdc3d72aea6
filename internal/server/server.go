package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apikeydomain "github.com/smallbiznis/lienclock/internal/apikey/domain"
	auditdomain "github.com/smallbiznis/lienclock/internal/audit/domain"
	authdomain "github.com/smallbiznis/lienclock/internal/auth/domain"
	brokerdomain "github.com/smallbiznis/lienclock/internal/broker/domain"
	capturedomain "github.com/smallbiznis/lienclock/internal/capture/domain"
	"github.com/smallbiznis/lienclock/internal/clock"
	"github.com/smallbiznis/lienclock/internal/config"
	"github.com/smallbiznis/lienclock/internal/observability/logger"
	"github.com/smallbiznis/lienclock/internal/observability/metrics"
	"github.com/smallbiznis/lienclock/internal/observability/tracing"
	paymentdomain "github.com/smallbiznis/lienclock/internal/payment/domain"
	payoutdomain "github.com/smallbiznis/lienclock/internal/payout/domain"
	referraldomain "github.com/smallbiznis/lienclock/internal/referral/domain"
)

// Module wires the HTTP surface into the fx graph.
var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {
		s.RegisterAPIRoutes()
	}),
	fx.Invoke(RunHTTP),
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Cfg         config.Config
	Clock       clock.Clock
	Engine      *gin.Engine
	BrokerSvc   brokerdomain.Service
	ReferralSvc referraldomain.Service
	PayoutSvc   payoutdomain.Service
	PaymentSvc  paymentdomain.Service
	CaptureSvc  capturedomain.Service
	AuthSvc     authdomain.Service
	APIKeySvc   apikeydomain.Service
	AuditSvc    auditdomain.Service `optional:"true"`
}

// Server carries the handler dependencies.
type Server struct {
	db          *gorm.DB
	log         *zap.Logger
	cfg         config.Config
	clock       clock.Clock
	engine      *gin.Engine
	brokerSvc   brokerdomain.Service
	referralSvc referraldomain.Service
	payoutSvc   payoutdomain.Service
	paymentSvc  paymentdomain.Service
	captureSvc  capturedomain.Service
	authSvc     authdomain.Service
	apiKeySvc   apikeydomain.Service
	auditSvc    auditdomain.Service

	captureLimiter *rateLimiter
	loginLimiter   *rateLimiter
}

// NewEngine builds the gin engine with the shared middleware chain.
func NewEngine(cfg config.Config, log *zap.Logger, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(tracing.GinMiddleware())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		Logger:    log.Named("http"),
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(metrics.GinMiddleware(httpMetrics))
	return engine
}

// NewServer constructs the HTTP server from the fx graph.
func NewServer(p Params) *Server {
	return &Server{
		db:          p.DB,
		log:         p.Log.Named("server"),
		cfg:         p.Cfg,
		clock:       p.Clock,
		engine:      p.Engine,
		brokerSvc:   p.BrokerSvc,
		referralSvc: p.ReferralSvc,
		payoutSvc:   p.PayoutSvc,
		paymentSvc:  p.PaymentSvc,
		captureSvc:  p.CaptureSvc,
		authSvc:     p.AuthSvc,
		apiKeySvc:   p.APIKeySvc,
		auditSvc:    p.AuditSvc,

		captureLimiter: newRateLimiter(60, time.Minute),
		loginLimiter:   newRateLimiter(10, time.Minute),
	}
}

// RegisterAPIRoutes mounts every route on the engine.
func (s *Server) RegisterAPIRoutes() {
	s.engine.GET("/healthz", s.Healthz)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := s.engine.Group("/api/v1")
	{
		public.POST("/auth/login", s.rateLimited(s.loginLimiter), s.Login)
		public.POST("/capture/leads", s.rateLimited(s.captureLimiter), s.CaptureLead)
		public.POST("/capture/pageviews", s.rateLimited(s.captureLimiter), s.RecordPageView)
	}

	api := s.engine.Group("/api/v1", s.APIKeyRequired())
	{
		api.POST("/brokers", s.CreateBroker)
		api.GET("/brokers", s.ListBrokers)
		api.GET("/brokers/:id", s.GetBrokerByID)
		api.GET("/brokers/:id/referrals", s.ListBrokerReferrals)
		api.GET("/brokers/:id/payout-report", s.BrokerPayoutReport)
		api.POST("/brokers/:id/disburse", s.DisburseBroker)

		api.POST("/referrals", s.CreateReferral)
		api.GET("/referrals/:id", s.GetReferralByID)
		api.POST("/referrals/:id/cancel", s.CancelReferral)
		api.POST("/referrals/:id/payments", s.RecordReferralPayment)

		api.GET("/api-keys", s.ListAPIKeys)
		api.POST("/api-keys", s.IssueAPIKey)
		api.DELETE("/api-keys/:id", s.RevokeAPIKey)

		api.POST("/webhooks/payments/:provider", s.IngestPaymentWebhook)

		api.GET("/audit-logs", s.ListAuditLogs)

		api.POST("/test/cleanup", s.TestCleanup)
	}
}

// Healthz reports process liveness and database reachability.
func (s *Server) Healthz(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err != nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) rateLimited(limiter *rateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server exited", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down http server")
			return srv.Shutdown(ctx)
		},
	})
}
