package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/partdex/internal/config"
	"github.com/kailas-cloud/partdex/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/partdex/internal/db/redis"
	logpkg "github.com/kailas-cloud/partdex/internal/logger"
	"github.com/kailas-cloud/partdex/internal/metrics"
	"github.com/kailas-cloud/partdex/internal/repository/catalog"
	"github.com/kailas-cloud/partdex/internal/repository/events"
	"github.com/kailas-cloud/partdex/internal/repository/rescache"
	chiTransport "github.com/kailas-cloud/partdex/internal/transport/chi"
	"github.com/kailas-cloud/partdex/internal/transport/kafka"
	openaiLLM "github.com/kailas-cloud/partdex/internal/transport/openai"
	healthuc "github.com/kailas-cloud/partdex/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/partdex/internal/usecase/recommend"
	searchuc "github.com/kailas-cloud/partdex/internal/usecase/search"
	"github.com/kailas-cloud/partdex/internal/version"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Println(version.String())
		return
	}

	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting partdex API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("cache", cfg.Cache.Enabled()),
		zap.Bool("llm", cfg.LLM.Enabled()),
		zap.Strings("kafka_brokers", cfg.Analytics.Brokers),
	)

	// Register search, cache and LLM metrics explicitly (no init())
	metrics.Register()

	// Catalog database
	ctx := context.Background()
	pg, err := postgres.Open(postgres.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime(),
		SlowQuery:       cfg.Database.SlowQuery(),
	})
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer pg.Close()

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := pg.WaitForReady(ctx, readiness); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	if cfg.Database.AutoMigrate {
		models := append(catalog.Models(), events.Models()...)
		if err := pg.AutoMigrate(ctx, models...); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Info("Database schema migrated")
	}

	catalogRepo := catalog.New(pg.Gorm())
	eventRepo := events.New(pg.Gorm())

	var searchOpts []searchuc.Option
	searchOpts = append(searchOpts, searchuc.WithPopular(eventRepo), searchuc.WithConfig(searchuc.Config{
		ResultTTL:         time.Duration(cfg.Cache.ResultTTLSec) * time.Second,
		FacetsTTL:         time.Duration(cfg.Cache.FacetsTTLSec) * time.Second,
		PopularTTL:        time.Duration(cfg.Cache.PopularTTLSec) * time.Second,
		PopularWindow:     time.Duration(cfg.Search.PopularWindowDays) * 24 * time.Hour,
		EnhancerTimeout:   time.Duration(cfg.LLM.TimeoutSec) * time.Second,
		BackgroundTimeout: time.Duration(cfg.Search.BackgroundTimeoutMs) * time.Millisecond,
	}))

	// Result cache (optional). Pass nil interfaces, not typed nil pointers.
	var cachePinger healthuc.Pinger
	if cfg.Cache.Enabled() {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()
		if err := store.WaitForReady(ctx, readiness); err != nil {
			logger.Warn("Cache not ready, continuing without warm cache", zap.Error(err))
		}
		cachePinger = store
		searchOpts = append(searchOpts,
			searchuc.WithCache(rescache.New(store, "search", metrics.CacheTotal, logger)))
	}

	// Search events: database always, Kafka when brokers are configured.
	recorders := events.Fanout{eventRepo}
	if cfg.Analytics.Enabled() {
		pub, err := kafka.NewPublisher(kafka.Config{
			Brokers: cfg.Analytics.Brokers,
			Topic:   cfg.Analytics.Topic,
			Timeout: time.Duration(cfg.Analytics.TimeoutSec) * time.Second,
		})
		if err != nil {
			logger.Fatal("Failed to create Kafka publisher", zap.Error(err))
		}
		defer func() { _ = pub.Close() }()
		recorders = append(recorders, pub)
	}
	searchOpts = append(searchOpts, searchuc.WithEvents(recorders))

	// Language model (optional)
	var llmChecker healthuc.ProviderChecker
	var advisor recommenduc.Advisor
	if cfg.LLM.Enabled() {
		llm := openaiLLM.NewClient(&openaiLLM.Config{
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
			Model:    cfg.LLM.Model,
			JSONMode: cfg.LLM.JSONMode,
			Logger:   logger,
		})
		llmChecker = llm
		advisor = llm
		searchOpts = append(searchOpts, searchuc.WithEnhancer(llm))
		logger.Info("Language model configured", zap.String("model", cfg.LLM.Model))
	}

	searchSvc := searchuc.New(catalogRepo, logger, searchOpts...)
	recommendSvc := recommenduc.New(advisor, catalogRepo, 0, logger, recommenduc.WithInteractions(eventRepo))
	healthSvc := healthuc.New(pg, cachePinger, llmChecker)

	server := chiTransport.NewServer(searchSvc, recommendSvc, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	// Flush pending cache writes and search events before closing stores.
	if err := searchSvc.Drain(shutdownCtx); err != nil {
		logger.Warn("Background work not drained", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
