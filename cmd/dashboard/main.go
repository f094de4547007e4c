package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/openmohaa/hiscores-dash/internal/catalog"
	"github.com/openmohaa/hiscores-dash/internal/config"
	"github.com/openmohaa/hiscores-dash/internal/handlers"
	"github.com/openmohaa/hiscores-dash/internal/hiscores"
	"github.com/openmohaa/hiscores-dash/internal/mapper"
	"github.com/openmohaa/hiscores-dash/internal/progression"
	"github.com/openmohaa/hiscores-dash/internal/selection"
	"github.com/openmohaa/hiscores-dash/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Dashboard exited with error", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	sugar := logger.Sugar()

	ladder, err := progression.LadderPreset(cfg.KillLadder)
	if err != nil {
		return err
	}
	pinPolicy, err := selection.ParsePinPolicy(cfg.PinPolicy)
	if err != nil {
		return err
	}

	client := hiscores.NewClient(hiscores.ClientConfig{
		BaseURL: cfg.HiscoresURL,
		Timeout: cfg.FetchTimeout,
		Logger:  logger.Named("hiscores"),
	})

	var (
		cache  hiscores.SnapshotCache
		pinger handlers.Pinger
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		redisCache := hiscores.NewRedisCache(rdb, cfg.CacheTTL)
		cache, pinger = redisCache, redisCache
		sugar.Infow("Using Redis snapshot cache", "addr", opts.Addr, "ttl", cfg.CacheTTL)
	} else {
		cache = hiscores.NewMemoryCache(cfg.CacheSize, cfg.CacheTTL)
		sugar.Infow("Using in-memory snapshot cache", "size", cfg.CacheSize, "ttl", cfg.CacheTTL)
	}
	fetcher := hiscores.NewCachedFetcher(client, cache, logger.Named("cache"))

	cat := catalog.Default()
	m := mapper.New(mapper.Options{
		Catalog:     cat,
		KillLadder:  ladder,
		IconBaseURL: cfg.IconBaseURL,
	})

	var h *handlers.Handler
	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:  cfg.PollWorkers,
		QueueSize:    cfg.PollQueue,
		PollInterval: cfg.PollInterval,
		Source:       worker.SourceFunc(func() []worker.Target { return h.Targets() }),
		Logger:       logger.Named("worker"),
	})

	h = handlers.New(handlers.Config{
		Fetcher: fetcher,
		Mapper:  m,
		Catalog: cat,
		Logger:  logger,
		Session: selection.Config{
			CycleInterval: cfg.CycleInterval,
			FetchTimeout:  cfg.FetchTimeout,
			PinPolicy:     pinPolicy,
		},
		DefaultPlayer: cfg.DefaultPlayer,
		Players:       cfg.Players,
		Group:         cfg.GroupPlayers,
		Queue:         pool,
		Cache:         pinger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool.Start(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h.Routes(cfg.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.FetchTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("Dashboard listening",
			"port", cfg.Port,
			"env", cfg.Env,
			"defaultPlayer", cfg.DefaultPlayer,
			"cycleInterval", cfg.CycleInterval,
			"pinPolicy", pinPolicy,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			pool.Stop()
			h.Close()
			return err
		}
	case <-ctx.Done():
	}

	sugar.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("HTTP shutdown failed", "error", err)
	}
	pool.Stop()
	h.Close()
	sugar.Info("Shutdown complete")
	return nil
}
