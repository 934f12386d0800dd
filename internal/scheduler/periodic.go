package scheduler

import (
	"context"
	"fmt"
	"time"

	"lead_intel_backend/internal/intel/dashboard"
	"lead_intel_backend/platform/config"
	"lead_intel_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Periodic enqueues dashboard refreshes on a fixed interval.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, params []dashboard.Params, log *logger.Logger) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	interval := cfg.GetDashboardRefreshInterval()
	if interval <= 0 {
		return nil, fmt.Errorf("dashboard refresh interval must be positive")
	}

	s := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.UTC})
	for _, p := range params {
		task, err := NewDashboardRefreshTask(p)
		if err != nil {
			return nil, err
		}
		if _, err := s.Register(cronSpec(interval), task, asynq.Queue(queueName(cfg)), asynq.Unique(interval)); err != nil {
			return nil, fmt.Errorf("register dashboard refresh: %w", err)
		}
	}

	if log == nil {
		log = logger.Discard()
	}
	return &Periodic{scheduler: s, log: log}, nil
}

func cronSpec(interval time.Duration) string {
	return "@every " + interval.String()
}

// Run blocks until ctx is done.
func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil {
		return
	}
	if err := p.scheduler.Start(); err != nil {
		p.log.Error("periodic scheduler failed to start", "error", err)
		return
	}
	<-ctx.Done()
	p.scheduler.Shutdown()
}
