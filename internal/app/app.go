package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lightkeep/lightkeep/internal/config"
	"github.com/lightkeep/lightkeep/internal/httpserver"
	"github.com/lightkeep/lightkeep/internal/httpserver/deps"
	"github.com/lightkeep/lightkeep/internal/lighthouse"
	"github.com/lightkeep/lightkeep/internal/logger"
	"github.com/lightkeep/lightkeep/internal/redis"
	"github.com/lightkeep/lightkeep/internal/scheduler"
	"github.com/lightkeep/lightkeep/internal/sources/watchlist"
	redisstore "github.com/lightkeep/lightkeep/internal/store/redis"
	"github.com/lightkeep/lightkeep/internal/tasks"
	"github.com/lightkeep/lightkeep/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	refresher   *scheduler.Refresher
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		DB:             cfg.RedisDB,
		DialTimeout:    cfg.RedisDialTimeout,
		ReadTimeout:    cfg.RedisReadTimeout,
		WriteTimeout:   cfg.RedisWriteTimeout,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	// Bundled reference report feeds the static metadata endpoints.
	reference, err := lighthouse.LoadReference(cfg.ReferenceReport)
	if err != nil {
		loggerClient.Errorf("Failed to load reference report: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("reference report loaded",
		logger.String("file", cfg.ReferenceReport),
		logger.Int("categories", len(reference.Categories())),
		logger.Int("audits", len(reference.Audits())))

	reportStore := redisstore.NewStore(redisClient, cfg.MaxStoredReports)

	runner := lighthouse.NewRunner(
		reportStore,
		loggerClient,
		cfg.AuditAPIURL,
		cfg.AuditAPIKey,
		cfg.AuditTimeout,
	)

	dispatcher := tasks.NewHTTPDispatcher(cfg.TaskTargetURL, cfg.TaskTimeout, loggerClient)

	var wl *watchlist.Loader
	if cfg.WatchlistFile != "" {
		loggerClient.Info("watchlist configured",
			logger.String("file", cfg.WatchlistFile))
		wl = watchlist.NewLoader(cfg.WatchlistFile)
	} else {
		loggerClient.Info("no watchlist configured, refreshing stored urls only")
	}

	refreshTrigger := make(chan struct{}, 1)
	refresher := scheduler.NewRefresher(
		reportStore,
		wl,
		dispatcher,
		loggerClient,
		cfg.RefreshInterval,
		refreshTrigger,
	)

	d := deps.Deps{
		Logger:             loggerClient,
		StartTime:          time.Now(),
		Version:            version.Version,
		Commit:             version.Commit,
		BuildDate:          version.BuildDate,
		GoVersion:          version.GoVersion,
		TimeNow:            time.Now,
		Store:              reportStore,
		Runner:             runner,
		Reference:          reference,
		RedisClient:        redisClient,
		RefreshTrigger:     refreshTrigger,
		TrustProxy:         cfg.TrustProxy,
		RateLimitBurst:     cfg.RateLimitBurst,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		refresher:   refresher,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting lightkeep v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("lightkeep %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start refresh scheduler (reacts to cron triggers; ticks on its own
	// when a refresh interval is configured)
	if err := a.refresher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start refresher: %w", err)
	}
	if a.cfg.RefreshInterval > 0 {
		a.logger.Info("periodic refresh enabled",
			logger.Duration("interval", a.cfg.RefreshInterval))
	} else {
		a.logger.Info("refresh runs on cron trigger only")
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.refresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ lightkeep stopped cleanly")
	return nil
}
