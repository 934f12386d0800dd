package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"lead_intel_backend/internal/intel/dashboard"

	"github.com/hibiken/asynq"
)

type fakeRefresher struct {
	calls  []dashboard.Params
	err    error
	result dashboard.Snapshot
}

func (f *fakeRefresher) RefreshDashboard(_ context.Context, p dashboard.Params) (dashboard.Snapshot, error) {
	f.calls = append(f.calls, p)
	return f.result, f.err
}

type stubSchedulerConfig struct {
	redisURL string
}

func (c stubSchedulerConfig) GetRedisURL() string                        { return c.redisURL }
func (c stubSchedulerConfig) GetRedisTLSInsecure() bool                  { return false }
func (c stubSchedulerConfig) GetAsynqQueueName() string                  { return "" }
func (c stubSchedulerConfig) GetAsynqConcurrency() int                   { return 0 }
func (c stubSchedulerConfig) GetDashboardRefreshInterval() time.Duration { return 5 * time.Minute }

func TestDashboardRefreshTaskRoundTrip(t *testing.T) {
	task, err := NewDashboardRefreshTask(dashboard.Params{HotLeadThreshold: 80, WarmLeadThreshold: 45})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TaskDashboardRefresh {
		t.Fatalf("unexpected type %s", task.Type())
	}
	payload, err := ParseDashboardRefreshPayload(task)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if payload.Params() != (dashboard.Params{HotLeadThreshold: 80, WarmLeadThreshold: 45}) {
		t.Fatalf("unexpected params %+v", payload.Params())
	}
}

func TestHandleDashboardRefresh(t *testing.T) {
	refresher := &fakeRefresher{}
	w := newWorker(refresher, nil)
	task, _ := NewDashboardRefreshTask(dashboard.DefaultParams())

	if err := w.handleDashboardRefresh(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(refresher.calls) != 1 || refresher.calls[0] != dashboard.DefaultParams() {
		t.Fatalf("unexpected calls %+v", refresher.calls)
	}
}

func TestHandleDashboardRefreshRejectsInvalidPayload(t *testing.T) {
	refresher := &fakeRefresher{}
	w := newWorker(refresher, nil)

	err := w.handleDashboardRefresh(context.Background(), asynq.NewTask(TaskDashboardRefresh, []byte("{broken")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected skip retry, got %v", err)
	}

	task, _ := NewDashboardRefreshTask(dashboard.Params{HotLeadThreshold: 30, WarmLeadThreshold: 60})
	err = w.handleDashboardRefresh(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected skip retry for inverted thresholds, got %v", err)
	}
	if len(refresher.calls) != 0 {
		t.Fatalf("refresher must not run for invalid payloads")
	}
}

func TestHandleDashboardRefreshPropagatesStoreErrors(t *testing.T) {
	refresher := &fakeRefresher{err: errors.New("redis down")}
	w := newWorker(refresher, nil)
	task, _ := NewDashboardRefreshTask(dashboard.DefaultParams())

	if err := w.handleDashboardRefresh(context.Background(), task); err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}

func TestConstructorsRequireRedis(t *testing.T) {
	if _, err := NewClient(stubSchedulerConfig{}); err == nil {
		t.Fatalf("expected client error without redis url")
	}
	if _, err := NewWorker(stubSchedulerConfig{}, &fakeRefresher{}, nil); err == nil {
		t.Fatalf("expected worker error without redis url")
	}
	if _, err := NewPeriodic(stubSchedulerConfig{}, nil, nil); err == nil {
		t.Fatalf("expected periodic error without redis url")
	}
}

func TestCronSpec(t *testing.T) {
	if got := cronSpec(5 * time.Minute); got != "@every 5m0s" {
		t.Fatalf("unexpected spec %q", got)
	}
}

func TestNilClientEnqueueIsNoop(t *testing.T) {
	var c *Client
	if err := c.EnqueueDashboardRefresh(context.Background(), dashboard.DefaultParams()); err != nil {
		t.Fatalf("expected nil client to be a no-op, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
