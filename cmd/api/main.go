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

	apphttp "lead_intel_backend/internal/http"
	"lead_intel_backend/internal/http/router"
	"lead_intel_backend/internal/intel"
	"lead_intel_backend/internal/intel/repository"
	"lead_intel_backend/internal/intel/summary"
	"lead_intel_backend/platform/ai/textgen"
	"lead_intel_backend/platform/cache"
	"lead_intel_backend/platform/config"
	"lead_intel_backend/platform/db"
	"lead_intel_backend/platform/logger"
	"lead_intel_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

const cachePrefix = "intel:"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, pool)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	store, closeCache := initCache(ctx, cfg, log)
	defer closeCache()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	intelModule, err := intel.NewModule(intel.Deps{
		Repo:      repository.New(pool),
		Cache:     store,
		Generator: initGenerator(cfg, log),
		Validator: validator.New(),
		Config:    cfg,
		Log:       log,
	})
	if err != nil {
		log.Error("failed to initialize intel module", "error", err)
		panic("failed to initialize intel module: " + err.Error())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Health:  db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{intelModule},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initCache connects to Redis when configured. Without Redis every lookup
// misses and the engine computes on each request.
func initCache(ctx context.Context, cfg *config.Config, log *logger.Logger) (cache.Cache, func()) {
	if !cfg.IsRedisEnabled() {
		log.Warn("REDIS_URL not configured; summary and dashboard caching disabled")
		return cache.Noop{}, func() {}
	}

	redisCache, err := cache.NewRedis(cfg, cachePrefix)
	if err != nil {
		log.Error("failed to initialize redis cache; caching disabled", "error", err)
		return cache.Noop{}, func() {}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := redisCache.Ping(pingCtx); err != nil {
		log.Warn("redis not reachable at startup; cache calls will degrade", "error", err)
	}
	return redisCache, func() { _ = redisCache.Close() }
}

// initGenerator returns nil when no API key is configured, which sends every
// summary without stored text straight to the local fallback.
func initGenerator(cfg *config.Config, log *logger.Logger) summary.Generator {
	if !cfg.IsTextGenEnabled() {
		log.Warn("TEXTGEN_API_KEY not configured; summaries use the local fallback")
		return nil
	}
	return textgen.NewClient(textgen.Config{
		APIKey:    cfg.GetTextGenAPIKey(),
		BaseURL:   cfg.GetTextGenBaseURL(),
		Model:     cfg.GetTextGenModel(),
		MaxTokens: cfg.GetTextGenMaxTokens(),
		Timeout:   cfg.GetTextGenTimeout(),
	})
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
