// Package control wires the catalog components together and manages their lifecycle.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vietddude/catalog/internal/api"
	"github.com/vietddude/catalog/internal/catalog"
	"github.com/vietddude/catalog/internal/core/config"
	"github.com/vietddude/catalog/internal/core/resilience"
	"github.com/vietddude/catalog/internal/health"
	redisclient "github.com/vietddude/catalog/internal/infra/redis"
	"github.com/vietddude/catalog/internal/infra/storage"
	"github.com/vietddude/catalog/internal/infra/storage/memory"
	"github.com/vietddude/catalog/internal/infra/storage/postgres"
	"github.com/vietddude/catalog/internal/metrics"
)

const (
	healthCacheWindow = 5 * time.Second
	dbMetricsInterval = 15 * time.Second
)

// App is the main application struct that owns the catalog service and its dependencies.
type App struct {
	cfg         config.AppConfig
	service     *catalog.Service
	runner      *resilience.Runner
	server      *api.Server
	healthMon   *health.Monitor
	db          *postgres.DB
	redisClient *redisclient.Client
	log         *slog.Logger
}

// NewApp creates a new App with all dependencies initialized.
func NewApp(ctx context.Context, cfg config.AppConfig) (*App, error) {
	log := slog.Default().With("component", "app")

	execCfg := cfg.Execution.Resilience()
	if err := execCfg.Validate(); err != nil {
		return nil, err
	}

	// 1. Initialize Storage
	var repo storage.ProductRepository
	var db *postgres.DB
	transient := []catalog.Option{}

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}
		repo = postgres.NewProductRepo(db)
		transient = append(transient, catalog.WithTransient(postgres.IsTransient))
		log.Info("Using PostgreSQL storage")
	} else {
		repo = memory.NewProductRepo()
		log.Info("Using Memory storage")
	}

	// 2. Optional read-through cache
	var redisClient *redisclient.Client
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			if db != nil {
				_ = db.Close()
			}
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		repo = redisclient.NewProductCache(redisClient, repo, cfg.Redis.TTL)
		log.Info("Product cache enabled", "ttl", cfg.Redis.TTL)
	}

	// 3. Execution core
	hooks := metrics.Hooks()
	runner := resilience.NewRunner(cfg.Execution.Workers, hooks)
	policy := resilience.NewPolicy(runner, execCfg, resilience.WithHooks(hooks))
	recovery := resilience.NewRecoveryHandler(slog.Default().With("component", "recovery"))

	opts := append(transient, catalog.WithLogger(slog.Default().With("component", "catalog")))
	service := catalog.NewService(repo, policy, recovery, opts...)

	// 4. Health and API
	healthMon := health.NewMonitor(runner, healthCacheWindow)
	if db != nil {
		healthMon.Register("database", db.Health, true)
	}
	if redisClient != nil {
		healthMon.Register("cache", redisClient.Health, false)
	}

	server := api.NewServer(service, healthMon, cfg.Server.Port, cfg.Server.APIKey)

	log.Info("Execution configured",
		"max_attempts", execCfg.MaxAttempts,
		"delay", execCfg.Delay,
		"timeout", execCfg.Timeout,
		"workers", runner.Size(),
	)

	return &App{
		cfg:         cfg,
		service:     service,
		runner:      runner,
		server:      server,
		healthMon:   healthMon,
		db:          db,
		redisClient: redisClient,
		log:         log,
	}, nil
}

// Service returns the catalog service.
func (a *App) Service() *catalog.Service { return a.service }

// Start starts the HTTP server and background collectors. It does not block.
func (a *App) Start(ctx context.Context) error {
	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("API server failed", "error", err)
		}
	}()

	if a.db != nil {
		a.db.StartMetricsCollector(ctx, dbMetricsInterval)
	}

	a.log.Info("Catalog service started", "port", a.cfg.Server.Port)
	return nil
}

// Stop stops the server, drains in-flight work and closes connections.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping catalog service...")

	var errs []error
	if err := a.server.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop server: %w", err))
	}
	if err := a.runner.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("drain workers: %w", err))
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}
	return errors.Join(errs...)
}
