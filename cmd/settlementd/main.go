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

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	pkgkafka "github.com/soumabha1987/yn-dev-sub000/pkg/kafka"
	"github.com/soumabha1987/yn-dev-sub000/pkg/money"
	"github.com/soumabha1987/yn-dev-sub000/pkg/observability"
	pgpkg "github.com/soumabha1987/yn-dev-sub000/pkg/postgres"

	"github.com/soumabha1987/yn-dev-sub000/internal/application/usecase"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/service"
	"github.com/soumabha1987/yn-dev-sub000/internal/infrastructure/config"
	"github.com/soumabha1987/yn-dev-sub000/internal/infrastructure/gateway"
	"github.com/soumabha1987/yn-dev-sub000/internal/infrastructure/lock"
	"github.com/soumabha1987/yn-dev-sub000/internal/infrastructure/messaging"
	"github.com/soumabha1987/yn-dev-sub000/internal/infrastructure/metrics"
	infraPostgres "github.com/soumabha1987/yn-dev-sub000/internal/infrastructure/postgres"
	"github.com/soumabha1987/yn-dev-sub000/internal/infrastructure/ratecache"
	grpcPresentation "github.com/soumabha1987/yn-dev-sub000/internal/presentation/grpc"
	"github.com/soumabha1987/yn-dev-sub000/internal/presentation/rest"
)

const instrumentationName = "github.com/soumabha1987/yn-dev-sub000"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.Telemetry.LogLevel,
		Format:      cfg.Telemetry.LogFormat,
		ServiceName: cfg.ServiceName,
	})

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("settlement service failed", "error", err)
		os.Exit(1)
	}
	logger.Info("settlement service stopped")
}

func run(cfg config.Config, logger *slog.Logger) error {
	logger.Info("starting settlement service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry.
	if cfg.Telemetry.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: cfg.ServiceName,
			Endpoint:    cfg.Telemetry.OTLPEndpoint,
			Insecure:    true,
			SampleRatio: cfg.Telemetry.SampleRatio,
		})
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracer(flushCtx); err != nil {
				logger.Warn("tracer shutdown", "error", err)
			}
		}()
	}
	tracer := otel.Tracer(instrumentationName)

	obs, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: "settlement"})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	collectors, err := metrics.New(obs.Registry, obs.MeterProvider.Meter(instrumentationName))
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	// Storage.
	dbCfg := pgpkg.Config{
		Host:            cfg.DB.Host,
		Port:            cfg.DB.Port,
		User:            cfg.DB.User,
		Password:        cfg.DB.Password,
		Database:        cfg.DB.Name,
		SSLMode:         cfg.DB.SSLMode,
		ApplicationName: cfg.ServiceName,
		MaxConns:        cfg.DB.MaxConns,
	}
	connectCtx, cancelConnect := context.WithTimeout(ctx, 10*time.Second)
	pool, err := pgpkg.NewPool(connectCtx, dbCfg)
	cancelConnect()
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database", "database", cfg.DB.Name)

	if err := pgpkg.RunMigrations(dbCfg.DSN(), infraPostgres.Migrations, infraPostgres.MigrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	uow := infraPostgres.NewUnitOfWork(pool)
	locker := lock.NewRedisLocker(rdb, cfg.Redis.LockTTL, 0, logger)
	rates := ratecache.New(rdb, infraPostgres.NewRevenueTermsRepo(pool), cfg.Redis.RateTTL, logger)

	// Payment providers.
	currency, err := money.NewCurrency(cfg.Gateway.Currency)
	if err != nil {
		return fmt.Errorf("gateway currency: %w", err)
	}
	payments := usecase.NewPaymentProcessor(
		uow,
		gateway.NewInstrumented(gateway.NewProviderRouter(gateway.Options{
			StubEnabled:       cfg.Gateway.StubEnabled,
			StubDeclineRefs:   cfg.Gateway.StubDeclineRefs,
			RazorpayKeyID:     cfg.Gateway.RazorpayKeyID,
			RazorpayKeySecret: cfg.Gateway.RazorpayKeySecret,
		}, logger), collectors, tracer),
		locker,
		rates,
		service.NewBalanceLedger(logger),
		service.NewRevenueShareCalculator(),
		usecase.ProcessorConfig{Currency: currency, GatewayTimeout: cfg.Gateway.Timeout},
		logger,
	)

	// Use cases.
	snapshot := usecase.NewGetConsumerSnapshotUseCase(uow)
	scheduled := usecase.NewListScheduledPaymentsUseCase(uow)
	transactions := usecase.NewListTransactionsUseCase(uow)
	handler := grpcPresentation.NewHandler(grpcPresentation.UseCases{
		SubmitOffer:         usecase.NewSubmitOfferUseCase(uow),
		ProposeCounterOffer: usecase.NewProposeCounterOfferUseCase(uow),
		AcceptOffer:         usecase.NewAcceptOfferUseCase(uow),
		GenerateSchedule:    usecase.NewGenerateScheduleUseCase(uow, rates, service.NewScheduleGenerator()),
		ReschedulePayment:   usecase.NewReschedulePaymentUseCase(uow, locker),
		SkipPayment:         usecase.NewSkipPaymentUseCase(uow, locker),
		ChangePaymentDate:   usecase.NewChangePaymentDateUseCase(uow, locker),
		CancelSchedule:      usecase.NewCancelScheduleUseCase(uow, locker),
		ConsumerSnapshot:    snapshot,
		ScheduledPayments:   scheduled,
		Transactions:        transactions,
		PurgeConsumer:       usecase.NewPurgeConsumerUseCase(uow, locker),
		Payments:            payments,
	}, logger)

	grpcServer, err := grpcPresentation.NewServer(handler, grpcPresentation.ServerOptions{
		ServiceName: cfg.ServiceName,
		Reflection:  cfg.GRPC.Reflection,
		TLSCertFile: cfg.GRPC.TLSCertFile,
		TLSKeyFile:  cfg.GRPC.TLSKeyFile,
		Tracer:      tracer,
	}, logger)
	if err != nil {
		return fmt.Errorf("create gRPC server: %w", err)
	}

	httpServer := &http.Server{
		Addr: cfg.HTTPAddr(),
		Handler: rest.NewRouter(rest.RouterConfig{
			Reports: rest.NewReportHandler(rest.Queries{
				Snapshot:          snapshot,
				ScheduledPayments: scheduled,
				Transactions:      transactions,
			}, logger),
			Health: rest.NewHealthHandler(cfg.ServiceName, logger,
				rest.Check{Name: "postgres", Ping: func(ctx context.Context) error { return pgpkg.HealthCheck(ctx, pool) }},
				rest.Check{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
			),
			Metrics:            obs.Handler(),
			Collectors:         collectors,
			CORSAllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
			Logger:             logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Messaging.
	kafkaCfg := pkgkafka.Config{
		Brokers:       cfg.Kafka.Brokers,
		ConsumerGroup: cfg.Kafka.ConsumerGroup,
	}
	producer := pkgkafka.NewProducer(kafkaCfg)
	defer producer.Close()

	relay := messaging.NewOutboxRelay(infraPostgres.NewOutboxRepo(pool), producer, messaging.RelayConfig{
		Topic:     cfg.Kafka.EventsTopic,
		BatchSize: cfg.Outbox.BatchSize,
		Interval:  cfg.Outbox.PollInterval,
	}, collectors, logger)

	dueHandler := messaging.NewDuePaymentHandler(payments, collectors, logger)
	dueConsumer := pkgkafka.NewConsumer(kafkaCfg, cfg.Kafka.DueTopic, dueHandler.Handle, logger,
		pkgkafka.WithRetry(cfg.Kafka.HandlerAttempts, cfg.Kafka.RetryBackoff),
		pkgkafka.WithHandlerTimeout(2*cfg.Gateway.Timeout),
	)
	defer dueConsumer.Close()

	// Start everything. The relay and consumer write through the pool and
	// redis client, so they are drained before the deferred closes run.
	servers := newWorkers(2)
	servers.Go("gRPC server", func() error {
		logger.Info("gRPC server starting", "addr", cfg.GRPCAddr())
		return grpcServer.Serve(cfg.GRPCAddr())
	})
	servers.Go("HTTP server", func() error {
		logger.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	background := newWorkers(2)
	background.Go("outbox relay", func() error { return relay.Run(ctx) })
	background.Go("due payment consumer", func() error { return dueConsumer.Start(ctx) })

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case runErr = <-servers.Errors():
	case runErr = <-background.Errors():
	}
	stop()

	logger.Info("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	grpcServer.GracefulStop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}
	if err := background.Wait(shutdownCtx); err != nil {
		logger.Error("background workers did not stop in time", "error", err)
	}
	if err := obs.MeterProvider.Shutdown(shutdownCtx); err != nil {
		logger.Warn("meter provider shutdown", "error", err)
	}
	return runErr
}
