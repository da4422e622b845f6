package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/auth"
	"github.com/BruksfildServices01/salon-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/salon-booking/internal/db"
	"github.com/BruksfildServices01/salon-booking/internal/handlers"
	"github.com/BruksfildServices01/salon-booking/internal/logging"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/notify"
	"github.com/BruksfildServices01/salon-booking/internal/payment"
	"github.com/BruksfildServices01/salon-booking/internal/routes"
	"github.com/BruksfildServices01/salon-booking/internal/storage"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.IsProduction())

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := dbpkg.NewDB(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("database unavailable")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ======================================================
	// INFRA
	// ======================================================
	auditDispatcher := audit.NewDispatcher(audit.New(db), log)

	var sender notify.Sender = notify.LogSender{Log: log}
	if cfg.SMTPEnabled() {
		sender = notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
		})
	}
	notifier := notify.NewDispatcher(sender, log, cfg.NotificationQueueSize)

	revoked, closeRevoked := revocationStore(ctx, cfg, log)
	defer closeRevoked()

	deps := routes.Dependencies{
		DB:       db,
		Config:   cfg,
		Log:      log,
		Audit:    auditDispatcher,
		Notifier: notifier,
		Tokens:   auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
		Revoked:  revoked,
		Payments: paymentService(cfg, db, notifier, auditDispatcher, log),
		Limiter:  middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
	}
	deps.Limiter.StartCleanup(10*time.Minute, ctx.Done())

	if cfg.GoogleEnabled() {
		deps.Google = auth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL())
		deps.Sessions = handlers.NewSessionStore(cfg.SessionSecret, cfg.IsProduction())
	}

	if cfg.S3Enabled() {
		deps.Uploader = storage.NewS3Storage(storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	}

	// ======================================================
	// HTTP
	// ======================================================
	r := gin.New()
	r.Use(gin.Recovery())
	routes.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Addr()).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}

	// Requests are drained; flush what they queued.
	notifier.Close()
	auditDispatcher.Close()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// revocationStore uses Redis when REDIS_URL is set; the in-memory store
// only covers a single instance.
func revocationStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (auth.RevocationStore, func()) {
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not set, token revocation is kept in memory")
		return auth.NewMemoryRevocationStore(), func() {}
	}

	store, err := auth.NewRedisRevocationStore(ctx, cfg.RedisURL)
	if err != nil {
		log.WithError(err).Fatal("redis unavailable")
	}
	return store, func() { _ = store.Close() }
}

func paymentService(
	cfg *config.Config,
	db *gorm.DB,
	notifier notify.Notifier,
	auditDispatcher *audit.Dispatcher,
	log *logrus.Logger,
) *payment.Service {
	var gateways []payment.Gateway

	if cfg.StripeSecretKey != "" {
		gateways = append(gateways, payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret))
	}

	if cfg.MercadoPagoAccessToken != "" {
		mp, err := payment.NewMercadoPagoGateway(cfg.MercadoPagoAccessToken, cfg.BaseURL, cfg.APIURL)
		if err != nil {
			log.WithError(err).Fatal("mercadopago setup")
		}
		gateways = append(gateways, mp)
	}

	if len(gateways) == 0 {
		log.Warn("no payment provider configured, course checkout disabled")
	}

	return payment.NewService(db, cfg.PaymentProvider, cfg.PaymentCurrency, notifier, auditDispatcher, log, gateways...)
}
