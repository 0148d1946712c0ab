package app

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/skillswap-backend/internal/data/db"
	httpserver "github.com/yungbote/skillswap-backend/internal/http"
	"github.com/yungbote/skillswap-backend/internal/observability"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
	"github.com/yungbote/skillswap-backend/internal/realtime"
)

type App struct {
	Log       *logger.Logger
	DB        *gorm.DB
	Cfg       Config
	Metrics   *observability.Metrics
	Clients   Clients
	Repos     Repos
	Services  Services
	SSEHub    *realtime.SSEHub
	Server    *httpserver.Server
	Scheduler *Scheduler

	dbService    *db.Service
	otelShutdown func(context.Context) error
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.OtelServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
		Endpoint:    cfg.OtelEndpoint,
		Insecure:    cfg.OtelInsecure,
		Headers:     cfg.OtelHeaders,
		SampleRatio: cfg.OtelSampleRatio,
	})

	dbService, err := openDB(log, cfg)
	if err != nil {
		return nil, err
	}
	theDB := dbService.DB()
	if err := db.AutoMigrateAll(theDB); err != nil {
		_ = dbService.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = dbService.Close()
		return nil, err
	}

	metrics := observability.NewMetrics(cfg.MetricsInterval)
	hub := realtime.NewSSEHub(log)
	reposet := wireRepos(theDB, log)
	aggs := wireAggregates(theDB, log, cfg, reposet, metrics)

	serviceset, err := wireServices(theDB, log, cfg, reposet, aggs, clients, hub, metrics)
	if err != nil {
		clients.Close()
		_ = dbService.Close()
		return nil, err
	}

	scheduler, err := newScheduler(log, cfg, serviceset)
	if err != nil {
		clients.Close()
		_ = dbService.Close()
		return nil, err
	}

	handlerset := wireHandlers(theDB, log, serviceset, hub)
	middleware := wireMiddleware(log, serviceset)
	routerCfg := wireRouterConfig(log, cfg, metrics, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Metrics:      metrics,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		SSEHub:       hub,
		Server:       httpserver.NewServer(log, cfg.Addr(), routerCfg),
		Scheduler:    scheduler,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

func openDB(log *logger.Logger, cfg Config) (*db.Service, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.DBDriver)) {
	case "sqlite":
		svc, err := db.NewSQLiteService(cfg.SQLitePath, log)
		if err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		return svc, nil
	default:
		svc, err := db.NewPostgresService(db.PostgresConfig{
			Host:         cfg.PostgresHost,
			Port:         cfg.PostgresPort,
			User:         cfg.PostgresUser,
			Password:     cfg.PostgresPassword,
			Name:         cfg.PostgresName,
			SSLMode:      cfg.PostgresSSLMode,
			MaxOpenConns: cfg.DBMaxOpenConns,
			MaxIdleConns: cfg.DBMaxIdleConns,
			ConnMaxLife:  cfg.DBConnMaxLife,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		return svc, nil
	}
}

// Run serves HTTP and runs the background loops until ctx is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, ctx := errgroup.WithContext(ctx)

	a.Metrics.StartDBCollector(ctx, a.Log, a.DB)
	a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)

	if a.Clients.EventBus != nil {
		g.Go(func() error {
			return a.Clients.EventBus.StartForwarder(ctx, a.SSEHub.Broadcast)
		})
	}
	g.Go(func() error {
		return a.Scheduler.Run(ctx)
	})
	g.Go(func() error {
		return a.Server.Run(ctx, a.Cfg.ShutdownTimeout)
	})
	return g.Wait()
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("close database", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
	}
	a.Log.Sync()
}
