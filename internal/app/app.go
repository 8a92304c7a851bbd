package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/nearby/internal/admin"
	"github.com/MrSnakeDoc/nearby/internal/ai"
	"github.com/MrSnakeDoc/nearby/internal/config"
	"github.com/MrSnakeDoc/nearby/internal/geo"
	"github.com/MrSnakeDoc/nearby/internal/httpserver"
	"github.com/MrSnakeDoc/nearby/internal/httpserver/deps"
	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/persist"
	"github.com/MrSnakeDoc/nearby/internal/redis"
	"github.com/MrSnakeDoc/nearby/internal/scheduler"
	"github.com/MrSnakeDoc/nearby/internal/search"
	"github.com/MrSnakeDoc/nearby/internal/sources/catalog"
	"github.com/MrSnakeDoc/nearby/internal/store"
	memorystore "github.com/MrSnakeDoc/nearby/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/nearby/internal/store/redis"
	"github.com/MrSnakeDoc/nearby/internal/version"
	"github.com/MrSnakeDoc/nearby/internal/voice"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	reloader    *scheduler.CatalogReloader
	watcher     *scheduler.CatalogWatcher
	reaper      *scheduler.SessionReaper
	seeder      *scheduler.MerchantSeeder
	voice       *voice.Manager
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Redis is optional; without it state lives in process memory.
	var (
		redisClient *goredis.Client
		st          store.Store
	)
	if cfg.RedisEnabled {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(context.Background(), redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
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
		redisClient = client
		st = redisstore.NewStore(client)
	} else {
		loggerClient.Warn("redis disabled, state will not survive a restart")
		st = memorystore.NewStore()
	}

	holder := catalog.NewHolder()
	reloadTrigger := make(chan struct{}, 1)
	reloader := scheduler.NewCatalogReloader(
		cfg.CatalogFile,
		holder,
		loggerClient,
		cfg.ReloadInterval,
		reloadTrigger,
	)

	repos := persist.New(st, loggerClient, persist.Sources{
		DefaultMerchants:   holder.DefaultMerchants,
		SupportedLanguages: holder.Languages,
	})

	aiClient, err := ai.New(context.Background(), ai.Options{
		APIKey:          cfg.GeminiAPIKey,
		Model:           cfg.SearchModel,
		Timeout:         cfg.AITimeout,
		WeatherCacheTTL: cfg.WeatherCacheTTL,
		ChatSessionTTL:  cfg.ChatSessionTTL,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to initialize AI client: %v", err)
		os.Exit(1)
	}

	searchService := search.NewService(
		aiClient,
		repos.Merchants,
		repos.Insights,
		holder,
		search.NewSequencer(cfg.ChatSessionTTL),
		loggerClient,
	)

	voiceManager := voice.NewManager(
		voice.GeminiLive{Client: aiClient.GenAI()},
		voice.Config{Model: cfg.LiveModel, SystemInstruction: ai.VoiceInstruction},
		cfg.VoiceIdleTimeout,
		loggerClient,
	)

	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		AdminPasskey:    cfg.AdminPasskey,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: int(cfg.RateLimitRPS * 60),
		Store:           st,
		RedisClient:     redisClient,
		Catalog:         holder,
		Repos:           repos,
		Search:          searchService,
		Weather:         aiClient,
		Concierge:       aiClient,
		Admin:           admin.NewService(repos.Merchants, repos.Reports, repos.Insights, loggerClient),
		Voice:           voiceManager,
		GeoOptions:      geo.Options{HighAccuracy: true, Timeout: cfg.GeoTimeout},
		ReloadTrigger:   reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		reloader:    reloader,
		watcher:     scheduler.NewCatalogWatcher(cfg.CatalogFile, reloadTrigger, loggerClient),
		reaper:      scheduler.NewSessionReaper(voiceManager, loggerClient, cfg.ReapInterval),
		seeder:      scheduler.NewMerchantSeeder(repos.Merchants, loggerClient),
		voice:       voiceManager,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Nearby v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Nearby %s", version.Info())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Catalog first: the merchant seed comes from it.
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start catalog reloader: %w", err)
	}
	a.logger.Info("catalog reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	if a.cfg.WatchCatalog {
		if err := a.watcher.Start(ctx); err != nil {
			a.logger.Warn("catalog file watching disabled", logger.Error(err))
		}
	}

	if _, err := a.seeder.Seed(ctx); err != nil {
		a.logger.Warn("failed to seed merchant directory", logger.Error(err))
	}

	if err := a.reaper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session reaper: %w", err)
	}
	a.logger.Info("voice session reaper started",
		logger.Duration("interval", a.cfg.ReapInterval))

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

	a.watcher.Stop()
	a.reloader.Stop()
	a.reaper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.voice.CloseAll()

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Nearby stopped cleanly")
	return nil
}
