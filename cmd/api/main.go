package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/irpartners/brokerage-api/internal/api/router"
	"github.com/irpartners/brokerage-api/internal/auth"
	appconfig "github.com/irpartners/brokerage-api/internal/config"
	"github.com/irpartners/brokerage-api/internal/leads"
	"github.com/irpartners/brokerage-api/internal/notify"
	"github.com/irpartners/brokerage-api/internal/observability/metrics"
	"github.com/irpartners/brokerage-api/internal/properties"
	"github.com/irpartners/brokerage-api/internal/ratelimit"
	"github.com/irpartners/brokerage-api/internal/storage"
	"github.com/irpartners/brokerage-api/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting brokerage API server", "env", cfg.Env, "port", cfg.Port)

	ctx := context.Background()

	// Storage backends. Without DATABASE_URL everything runs in memory,
	// which keeps local development a one-command affair.
	var (
		pool         *pgxpool.Pool
		leadsRepo    leads.Repository
		propsRepo    properties.Repository
		adminsRepo   auth.AdminRepository
		limiterStore ratelimit.Store
	)
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("database unreachable", "error", err)
			os.Exit(1)
		}
		propsRepo = properties.NewPostgresRepository(pool)
		leadsRepo = leads.NewPostgresRepository(pool)
		adminsRepo = auth.NewPostgresAdminRepository(pool)
		limiterStore = ratelimit.NewPostgresStore(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		propsRepo = properties.NewInMemoryRepository()
		leadsRepo = leads.NewInMemoryRepository(propsRepo)
		adminsRepo = auth.NewInMemoryAdminRepository()
		limiterStore = ratelimit.NewMemoryStore()
	}

	// Sessions live in Redis so deploys do not log admins out.
	var sessionStore auth.SessionStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("redis unreachable", "error", err)
			os.Exit(1)
		}
		sessionStore = auth.NewRedisSessionStore(redisClient)
	} else {
		logger.Warn("REDIS_ADDR not set, admin sessions disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	limiter := ratelimit.New(limiterStore, cfg.RateLimitWindow, cfg.RateLimitMax, logger)

	emailSender := buildEmailSender(ctx, cfg, logger)
	notifyService := notify.NewService(emailSender, cfg.NotifyToEmail, logger)
	dispatcher := notify.NewDispatcher(notifyService, propsRepo, m, notify.DispatcherConfig{
		QueueSize:   cfg.NotifyQueueSize,
		SendTimeout: cfg.NotifySendTimeout,
	}, logger)
	defer dispatcher.Close()

	uploader, err := storage.NewS3Uploader(ctx, storage.Config{
		Endpoint:  cfg.StorageEndpoint,
		Region:    cfg.StorageRegion,
		Bucket:    cfg.StorageBucket,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
	}, logger)
	if err != nil {
		logger.Error("failed to init object storage", "error", err)
		os.Exit(1)
	}
	if uploader == nil {
		logger.Warn("STORAGE_BUCKET not set, image uploads disabled")
	}

	var authService *auth.Service
	var authHandler *auth.Handler
	if sessionStore != nil {
		authService = auth.NewService(adminsRepo, sessionStore, cfg.SessionTTL, logger)
		authHandler = auth.NewHandler(authService, cfg.IsProduction(), logger)
	}

	leadsHandler := leads.NewHandler(leadsRepo, dispatcher, m, logger)
	var propertiesUploader properties.Uploader
	if uploader != nil {
		propertiesUploader = uploader
	}
	propertiesHandler := properties.NewHandler(propsRepo, propertiesUploader, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		LeadsHandler:       leadsHandler,
		PropertiesHandler:  propertiesHandler,
		AuthHandler:        authHandler,
		AuthService:        authService,
		SubmitLimiter:      limiter,
		Metrics:            m,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminJWTSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender == nil {
			logger.Warn("EMAIL_PROVIDER=sendgrid but SENDGRID_API_KEY missing")
			return nil
		}
		return sender
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Error("failed to load AWS config for SES", "error", err)
			return nil
		}
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
	case "none", "":
		return nil
	default:
		logger.Warn("unknown EMAIL_PROVIDER, notifications disabled", "provider", cfg.EmailProvider)
		return nil
	}
}
