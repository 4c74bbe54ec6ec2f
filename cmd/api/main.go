package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/medspa-booking-wizard/cmd/mainconfig"
	"github.com/wolfman30/medspa-booking-wizard/internal/api/router"
	"github.com/wolfman30/medspa-booking-wizard/internal/app/bootstrap"
	"github.com/wolfman30/medspa-booking-wizard/internal/appointments"
	appconfig "github.com/wolfman30/medspa-booking-wizard/internal/config"
	"github.com/wolfman30/medspa-booking-wizard/internal/events"
	"github.com/wolfman30/medspa-booking-wizard/internal/notify"
	"github.com/wolfman30/medspa-booking-wizard/internal/observability/metrics"
	"github.com/wolfman30/medspa-booking-wizard/internal/wizard"
	"github.com/wolfman30/medspa-booking-wizard/pkg/logging"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting medspa booking wizard API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"draft_store", cfg.DraftStore,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsClients, err := mainconfig.LoadAWS(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	readiness := map[string]router.ReadinessCheck{}

	// Draft store
	var deps bootstrap.DraftStoreDeps
	switch cfg.DraftStore {
	case "redis":
		if redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true); redisClient != nil {
			defer redisClient.Close()
			deps.Redis = redisClient
			readiness["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	case "dynamodb":
		deps.Dynamo = awsClients.DynamoDB()
	}
	draftStore, closeDrafts, err := bootstrap.BuildDraftStore(cfg, deps, logger)
	if err != nil {
		logger.Error("failed to build draft store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeDrafts(); err != nil {
			logger.Error("failed to close draft store", "error", err)
		}
	}()

	// Appointments and confirmation email
	var sesClient *sesv2.Client
	if cfg.EmailProvider == "ses" {
		sesClient = awsClients.SESv2()
	}
	confirmer := notify.NewConfirmer(bootstrap.BuildEmailSender(cfg, sesClient, logger), logger)

	var repo appointments.Repository = appointments.NewInMemoryRepository()
	var outbox *events.OutboxStore
	if pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger); pool != nil {
		defer pool.Close()
		repo = appointments.NewPostgresRepository(pool)
		outbox = events.NewOutboxStore(pool)
		readiness["postgres"] = pool.Ping
	}
	appointmentService := appointments.NewService(repo, confirmer, logger)

	// Outbox delivery
	if outbox != nil {
		var publisher events.DeliveryHandler = events.NewLogPublisher(logger)
		if cfg.AppointmentEventsQueueURL != "" {
			publisher = events.NewSQSPublisher(awsClients.SQS(), cfg.AppointmentEventsQueueURL)
		}
		deliverer := events.NewDeliverer(outbox, publisher, logger).
			WithInterval(cfg.OutboxPollInterval).
			WithMaxAttempts(cfg.OutboxMaxAttempts)
		go deliverer.Start(ctx)
	}

	// Wizard
	wizardOpts, err := bootstrap.WizardOptions(cfg)
	if err != nil {
		logger.Error("invalid wizard configuration", "error", err)
		os.Exit(1)
	}
	metricsHandler, wizardMetrics := setupWizardMetrics()
	wizardHandler := wizard.NewHandler(
		draftStore,
		bootstrap.NewAppointmentCreator(appointmentService),
		logger,
		wizardMetrics,
		wizardOpts...,
	)

	// Setup router
	routerCfg := &router.Config{
		Logger:               logger,
		WizardHandler:        wizardHandler,
		AppointmentsHandler:  appointments.NewHandler(appointmentService, logger),
		MetricsHandler:       metricsHandler,
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
		WizardRateLimitRPS:   cfg.WizardRateLimitRPS,
		WizardRateLimitBurst: cfg.WizardRateLimitBurst,
		ReadinessChecks:      readiness,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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
	<-ctx.Done()
	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// connectPostgresPool returns nil when no database is configured; appointments
// then stay in memory.
func connectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if databaseURL == "" {
		logger.Warn("DATABASE_URL not set; appointments are kept in memory")
		return nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	return pool
}

func setupWizardMetrics() (http.Handler, *metrics.WizardMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewWizardMetrics(reg)
}
