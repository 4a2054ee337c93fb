package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/calyptra/autopress/internal/analytics"
	"github.com/calyptra/autopress/internal/api"
	"github.com/calyptra/autopress/internal/config"
	"github.com/calyptra/autopress/internal/events"
	"github.com/calyptra/autopress/internal/platform/gemini"
	"github.com/calyptra/autopress/internal/platform/postgres"
	"github.com/calyptra/autopress/internal/platform/redisjobs"
	"github.com/calyptra/autopress/internal/platform/wordpress"
	"github.com/calyptra/autopress/internal/routing"
	"github.com/calyptra/autopress/internal/service"
	"github.com/calyptra/autopress/internal/store"
	"github.com/calyptra/autopress/internal/task"
)

const migrationsDir = "migrations"

// application holds the composed dependency graph: shared clients,
// the task runner and the HTTP router.
type application struct {
	config *config.Config
	logger *slog.Logger

	db          *sql.DB
	redisClient *redis.Client
	runner      *task.Runner
	router      http.Handler
}

// newApplication wires the full dependency graph: clients, stores,
// queue and runner, services, task handlers and the HTTP router.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	app := &application{
		config:      cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
	}
	if err := app.wire(ctx); err != nil {
		app.cleanup()
		return nil, err
	}
	return app, nil
}

// openDatabase connects to Postgres and brings the schema up to date.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, migrationsDir); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func (app *application) wire(ctx context.Context) error {
	cfg := app.config
	logger := app.logger

	batchJobs := redisjobs.NewRedisBatchJobStore(app.redisClient, cfg.Pipeline.JobTTL, logger)
	publishingJobs := redisjobs.NewRedisPublishingJobStore(app.redisClient, cfg.Pipeline.JobTTL, logger)
	researchJobs := redisjobs.NewRedisResearchStore(app.redisClient, cfg.Pipeline.JobTTL, logger)
	metricsStore := redisjobs.NewRedisMetricsStore(app.redisClient, cfg.Pipeline.MetricsTTL, logger)
	fineTuning := redisjobs.NewRedisFineTuningStore(app.redisClient, logger)
	contentStore := postgres.NewPostgresContentStore(app.db, logger)

	generator, err := gemini.NewArticleGenerator(ctx, logger, cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create content generator: %w", err)
	}

	siteStore := routing.NewSiteStore(routing.SitesFromConfig(cfg.Routing.Sites))
	ruleStore := routing.NewRuleStore(routing.RulesFromConfig(cfg.Routing.Rules))
	destRouter := routing.NewRouter(
		siteStore,
		ruleStore,
		cfg.Routing.ContentTypeMap,
		cfg.Routing.DefaultSiteID,
		routing.DefaultScoringConfig(),
		logger,
	)

	wpPublisher := wordpress.NewClient(logger)
	collector, err := analytics.NewHTTPCollector(cfg.Analytics.BaseURL, logger)
	if err != nil {
		return fmt.Errorf("failed to create metrics collector: %w", err)
	}

	queue := task.NewQueue(app.redisClient, logger)
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(task.NewSchedulerHandler(queue, logger))

	batchService, err := service.NewBatchService(
		batchJobs, researchJobs, contentStore, generator, emitter,
		cfg.Pipeline.GenerationStagger, logger)
	if err != nil {
		return fmt.Errorf("failed to create batch service: %w", err)
	}
	publishingService, err := service.NewPublishingService(
		publishingJobs, contentStore, metricsStore, wpPublisher,
		destRouter, siteStore, emitter, logger)
	if err != nil {
		return fmt.Errorf("failed to create publishing service: %w", err)
	}
	performanceService, err := service.NewPerformanceService(
		metricsStore, contentStore, fineTuning, collector, logger)
	if err != nil {
		return fmt.Errorf("failed to create performance service: %w", err)
	}

	app.runner = task.NewRunner(queue, task.RunnerConfig{
		GenerationWorkers: cfg.Pipeline.GenerationWorkers,
		PublishingWorkers: cfg.Pipeline.PublishingWorkers,
		TrackingWorkers:   cfg.Pipeline.TrackingWorkers,
		PollInterval:      cfg.Pipeline.QueuePollInterval,
		MaxAttempts:       task.DefaultRunnerConfig().MaxAttempts,
		RetryBase:         task.DefaultRunnerConfig().RetryBase,
	}, logger)
	registerTaskHandlers(app.runner, batchService, publishingService, performanceService)

	app.router = api.NewRouter(
		api.NewBatchHandler(batchService, logger),
		api.NewPublishingHandler(publishingService, logger),
		api.NewRoutingHandler(destRouter, logger),
		api.NewPerformanceHandler(performanceService, logger),
	)
	return nil
}

// registerTaskHandlers binds each task type to its service method.
// Handlers record task outcomes themselves, so only optimistic-lock
// conflicts on the job record are worth retrying at runner level.
func registerTaskHandlers(
	runner *task.Runner,
	batch *service.BatchService,
	publishing *service.PublishingService,
	performance *service.PerformanceService,
) {
	runner.Register(task.TypeContentGeneration, func(ctx context.Context, raw json.RawMessage) error {
		var payload task.GenerationPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("malformed generation payload: %w", err)
		}
		return batch.ProcessGenerationTask(ctx, payload)
	})
	runner.Register(task.TypeContentPublish, func(ctx context.Context, raw json.RawMessage) error {
		var payload task.PublishPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("malformed publish payload: %w", err)
		}
		return publishing.ProcessPublishTask(ctx, payload)
	})
	runner.Register(task.TypePerformanceTracking, func(ctx context.Context, raw json.RawMessage) error {
		var payload task.TrackingPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("malformed tracking payload: %w", err)
		}
		return performance.TrackContentPerformance(ctx, payload)
	})
	runner.SetRetryClassifier(func(err error) bool {
		return errors.Is(err, store.ErrConflict)
	})
}

// cleanup releases long-lived resources in reverse dependency order.
func (app *application) cleanup() {
	if app.runner != nil {
		app.runner.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", "error", err)
		}
	}
	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("failed to close redis client", "error", err)
		}
	}
}
