package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"lead_intel_backend/internal/intel"
	"lead_intel_backend/internal/intel/dashboard"
	"lead_intel_backend/internal/intel/repository"
	"lead_intel_backend/internal/scheduler"
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

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	if !cfg.IsRedisEnabled() {
		panic("REDIS_URL is required for the scheduler")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	redisCache, err := cache.NewRedis(cfg, cachePrefix)
	if err != nil {
		panic("failed to initialize redis cache: " + err.Error())
	}
	defer func() { _ = redisCache.Close() }()

	// Refreshes only warm the dashboard snapshot, so no text generator is wired.
	intelModule, err := intel.NewModule(intel.Deps{
		Repo:      repository.New(pool),
		Cache:     redisCache,
		Validator: validator.New(),
		Config:    cfg,
		Log:       log,
	})
	if err != nil {
		panic("failed to initialize intel module: " + err.Error())
	}

	params := []dashboard.Params{intel.DefaultParams(cfg)}

	worker, err := scheduler.NewWorker(cfg, intelModule.Service(), log)
	if err != nil {
		panic("failed to initialize scheduler worker: " + err.Error())
	}
	periodic, err := scheduler.NewPeriodic(cfg, params, log)
	if err != nil {
		panic("failed to initialize periodic scheduler: " + err.Error())
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	// Warm the snapshot immediately instead of waiting a full interval.
	for _, p := range params {
		if err := client.EnqueueDashboardRefresh(ctx, p); err != nil {
			log.Warn("initial dashboard refresh not enqueued", "error", err)
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		periodic.Run(ctx)
	}()

	log.Info("scheduler running", "interval", cfg.GetDashboardRefreshInterval().String())
	<-ctx.Done()
	log.Info("shutdown signal received, stopping scheduler")
	wg.Wait()
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
