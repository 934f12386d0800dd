package scheduler

import (
	"context"
	"fmt"

	"lead_intel_backend/internal/intel/dashboard"
	"lead_intel_backend/platform/config"
	"lead_intel_backend/platform/logger"
	"lead_intel_backend/platform/metrics"

	"github.com/hibiken/asynq"
)

// DashboardRefresher recomputes and stores a dashboard snapshot.
type DashboardRefresher interface {
	RefreshDashboard(ctx context.Context, p dashboard.Params) (dashboard.Snapshot, error)
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	refresher DashboardRefresher
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, refresher DashboardRefresher, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 4
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(refresher, log)
	w.server = server
	return w, nil
}

func newWorker(refresher DashboardRefresher, log *logger.Logger) *Worker {
	if log == nil {
		log = logger.Discard()
	}
	mux := asynq.NewServeMux()
	w := &Worker{
		mux:       mux,
		refresher: refresher,
		log:       log,
	}
	mux.HandleFunc(TaskDashboardRefresh, w.handleDashboardRefresh)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleDashboardRefresh(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseDashboardRefreshPayload(task)
	if err != nil {
		metrics.DashboardRefreshesTotal.WithLabelValues("invalid").Inc()
		return fmt.Errorf("parse dashboard refresh payload: %v: %w", err, asynq.SkipRetry)
	}

	params := payload.Params()
	if params.HotLeadThreshold < 0 || params.HotLeadThreshold > 100 ||
		params.WarmLeadThreshold < 0 || params.WarmLeadThreshold > params.HotLeadThreshold {
		metrics.DashboardRefreshesTotal.WithLabelValues("invalid").Inc()
		return fmt.Errorf("invalid dashboard thresholds %d/%d: %w", params.HotLeadThreshold, params.WarmLeadThreshold, asynq.SkipRetry)
	}

	snap, err := w.refresher.RefreshDashboard(ctx, params)
	if err != nil {
		metrics.DashboardRefreshesTotal.WithLabelValues("error").Inc()
		w.log.Error("dashboard refresh failed", "error", err, "hotLeadThreshold", params.HotLeadThreshold)
		return err
	}

	metrics.DashboardRefreshesTotal.WithLabelValues("success").Inc()
	w.log.Info("dashboard snapshot refreshed",
		"hotLeadThreshold", params.HotLeadThreshold,
		"warmLeadThreshold", params.WarmLeadThreshold,
		"totalLeads", snap.TotalLeads,
	)
	return nil
}
