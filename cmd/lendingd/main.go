package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/greystone/lending-api/internal/application/usecase"
	"github.com/greystone/lending-api/internal/domain/port"
	"github.com/greystone/lending-api/internal/infrastructure/cache"
	"github.com/greystone/lending-api/internal/infrastructure/config"
	"github.com/greystone/lending-api/internal/infrastructure/kafka"
	"github.com/greystone/lending-api/internal/infrastructure/outbox"
	pgRepo "github.com/greystone/lending-api/internal/infrastructure/postgres"
	"github.com/greystone/lending-api/internal/infrastructure/security"
	grpcPresentation "github.com/greystone/lending-api/internal/presentation/grpc"
	"github.com/greystone/lending-api/internal/presentation/rest"
	pkgkafka "github.com/greystone/lending-api/pkg/kafka"
	"github.com/greystone/lending-api/pkg/observability"
	pkgpostgres "github.com/greystone/lending-api/pkg/postgres"
)

const meterName = "github.com/greystone/lending-api"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: cfg.ServiceName,
	})

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("lending-api exited", "error", err)
		os.Exit(1)
	}
	logger.Info("lending-api stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("starting "+cfg.AppName,
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Telemetry.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    true,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }() //nolint:errcheck // best-effort tracer shutdown
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName:       cfg.ServiceName,
		RuntimeCollectors: true,
	})
	if err != nil {
		return err
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck // best-effort flush
	meter := meterProvider.Meter(meterName)

	// Database connection and schema.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pgCfg := cfg.DB.Postgres()
	pool, err := pkgpostgres.NewPool(dbCtx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if err := pkgpostgres.RunMigrations(pgCfg.DSN(), cfg.DB.MigrationsPath); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// Infrastructure adapters.
	userRepo := pgRepo.NewUserRepo(pool)
	loanRepo := pgRepo.NewLoanRepo(pool)
	hasher := security.NewBcryptHasher(cfg.BcryptCost)

	var scheduleCache port.ScheduleCache
	if cfg.Redis.Enabled() {
		client, err := cache.NewClient(dbCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("schedule cache unavailable, computing every request", "error", err)
		} else {
			defer client.Close()
			scheduleCache = cache.NewScheduleCache(client, cfg.Redis.TTL)
			logger.Info("schedule cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
		}
	}

	var relay *outbox.Relay
	if cfg.Kafka.Enabled() {
		producer, err := pkgkafka.NewProducer(cfg.Kafka.Producer())
		if err != nil {
			return fmt.Errorf("kafka producer: %w", err)
		}
		defer producer.Close()

		relay = outbox.NewRelay(
			pgRepo.NewOutboxRepo(pool),
			kafka.NewOutboxPublisher(producer, logger),
			cfg.Kafka.Topic,
			cfg.Outbox.BatchSize,
			logger,
		)
		if err := relay.Start(ctx, cfg.Outbox.Schedule); err != nil {
			return err
		}
		logger.Info("outbox relay scheduled", "schedule", cfg.Outbox.Schedule, "topic", cfg.Kafka.Topic)
	} else {
		logger.Info("KAFKA_BROKERS not set, outbox entries stay unpublished")
	}

	// Use cases.
	scheduler := usecase.NewScheduler(scheduleCache, logger, meter)
	computeUC := usecase.NewComputeAmortizationUseCase(scheduler)
	loanAmortizationUC := usecase.NewGetLoanAmortizationUseCase(loanRepo, scheduler)

	api := rest.NewHandler(rest.UseCases{
		CreateUser:          usecase.NewCreateUserUseCase(userRepo, hasher),
		GetUser:             usecase.NewGetUserUseCase(userRepo),
		ListUsers:           usecase.NewListUsersUseCase(userRepo),
		UpdateUser:          usecase.NewUpdateUserUseCase(userRepo, hasher),
		DeleteUser:          usecase.NewDeleteUserUseCase(userRepo),
		CreateLoan:          usecase.NewCreateLoanUseCase(userRepo, loanRepo),
		GetLoan:             usecase.NewGetLoanUseCase(loanRepo),
		ListLoans:           usecase.NewListLoansUseCase(loanRepo),
		ListUserLoans:       usecase.NewListUserLoansUseCase(userRepo, loanRepo),
		UpdateLoan:          usecase.NewUpdateLoanUseCase(loanRepo),
		DeleteLoan:          usecase.NewDeleteLoanUseCase(loanRepo),
		ComputeAmortization: computeUC,
		LoanAmortization:    loanAmortizationUC,
	}, logger)

	// gRPC server.
	grpcServer, err := grpcPresentation.NewServer(
		grpcPresentation.NewAmortizationHandler(computeUC, loanAmortizationUC, logger),
		logger,
		grpcPresentation.Options{
			ServiceName: cfg.ServiceName,
			CertFile:    cfg.TLS.CertFile,
			KeyFile:     cfg.TLS.KeyFile,
			Reflection:  cfg.GRPC.Reflection,
		},
	)
	if err != nil {
		return err
	}

	// HTTP server.
	router, err := rest.NewRouter(rest.RouterConfig{
		API:       api,
		Health:    rest.NewHealthHandler(pool, cfg.ServiceName, logger),
		Metrics:   metricsHandler,
		Meter:     meter,
		Logger:    logger,
		RateLimit: cfg.RateLimit,
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal.
	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
		logger.Error("server error", "error", serveErr)
	}

	// Graceful shutdown.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	grpcServer.GracefulStop()
	if relay != nil {
		relay.Stop()
	}

	return serveErr
}
