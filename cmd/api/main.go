package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jkazadi/portfolio-ai-platform/cmd/mainconfig"
	"github.com/jkazadi/portfolio-ai-platform/internal/api/router"
	"github.com/jkazadi/portfolio-ai-platform/internal/app/bootstrap"
	"github.com/jkazadi/portfolio-ai-platform/internal/archive"
	appconfig "github.com/jkazadi/portfolio-ai-platform/internal/config"
	"github.com/jkazadi/portfolio-ai-platform/internal/leads"
	"github.com/jkazadi/portfolio-ai-platform/internal/notify"
	"github.com/jkazadi/portfolio-ai-platform/internal/observability/metrics"
	"github.com/jkazadi/portfolio-ai-platform/internal/qualify"
	"github.com/jkazadi/portfolio-ai-platform/internal/webchat"
	"github.com/jkazadi/portfolio-ai-platform/pkg/logging"
)

func main() {
	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting portfolio-ai-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	qualMetrics := metrics.NewQualificationMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	// Lead storage: Postgres when configured, in-memory otherwise.
	var (
		leadStore     leads.Store
		statsReporter *leads.StatsReporter
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		leadStore = leads.NewPostgresStore(pool)

		statsDB, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open stats connection", "error", err)
			os.Exit(1)
		}
		defer func() { _ = statsDB.Close() }()
		statsReporter = leads.NewStatsReporter(statsDB)
		logger.Info("postgres lead store enabled")
	} else {
		leadStore = leads.NewInMemoryStore()
		logger.Warn("no DATABASE_URL configured; leads are stored in memory only")
	}

	// Redis-backed session history (optional)
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	// Qualification engine
	llmClient := bootstrap.BuildLLMClient(ctx, cfg, awsCfg, logger)
	session := bootstrap.BuildQualifyService(cfg, llmClient, leadStore, redisClient, qualMetrics, logger)

	// Lead notification email: SendGrid when configured, SES as fallback.
	var sender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		sender = sg
	} else if ses := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
		FromEmail: cfg.SESFromEmail,
	}, logger); ses != nil && cfg.SESFromEmail != "" {
		sender = ses
	}
	if notifier := notify.NewLeadNotifier(sender, cfg.LeadNotifyEmail, logger); notifier != nil {
		session.OnLeadFinalized(notifier.NotifyLead)
		logger.Info("lead email notifications enabled", "to", cfg.LeadNotifyEmail)
	}

	// Transcript archival (optional)
	archiveStore := archive.NewStore(s3.NewFromConfig(awsCfg), cfg.ArchiveBucket, logger)
	if archiveStore.Enabled() {
		session.OnLeadFinalized(func(ctx context.Context, lead *qualify.Lead) {
			if err := archiveStore.ArchiveLead(ctx, lead); err != nil {
				logger.Error("failed to archive lead", "error", err, "lead_id", lead.ID)
			}
		})
		logger.Info("lead archival enabled", "bucket", cfg.ArchiveBucket)
	}

	// Queue-backed dispatcher. The SQS path also records pollable job
	// status in DynamoDB; the in-memory path skips job tracking.
	var (
		jobTracker  qualify.JobTracker
		jobRecorder qualify.JobRecorder
	)
	var dispatcher *qualify.Dispatcher
	if cfg.UseMemoryQueue || cfg.SessionQueueURL == "" {
		dispatcher = qualify.NewDispatcher(session, qualify.NewMemoryQueue(128), nil, logger,
			qualify.WithWorkerCount(cfg.WorkerCount))
		logger.Info("using in-memory session queue", "workers", cfg.WorkerCount)
	} else {
		jobStore := qualify.NewJobStore(dynamodb.NewFromConfig(awsCfg), cfg.SessionJobsTable, logger)
		jobTracker = jobStore
		jobRecorder = jobStore
		dispatcher = qualify.NewDispatcher(session,
			qualify.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.SessionQueueURL), jobTracker, logger,
			qualify.WithWorkerCount(cfg.WorkerCount))
		logger.Info("using SQS session queue", "queue", cfg.SessionQueueURL, "workers", cfg.WorkerCount)
	}

	// Initialize handlers
	sessionsHandler := qualify.NewHandler(dispatcher, jobRecorder, logger)
	leadsHandler := leads.NewHandler(leadStore, statsReporter, logger)
	webchatHandler := webchat.NewHandler(dispatcher, nil, logger)

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		SessionsHandler:    sessionsHandler,
		LeadsHandler:       leadsHandler,
		WebchatHandler:     webchatHandler,
		MetricsHandler:     metricsHandler,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ChatRateLimit:      2,
		ChatRateBurst:      10,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Error("dispatcher forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
