package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"lead_intel_backend/internal/intel/dashboard"
	"lead_intel_backend/internal/intel/domain"
	"lead_intel_backend/platform/metrics"

	"golang.org/x/sync/errgroup"
)

const (
	dashboardCacheName = "dashboard"

	// Stage history only feeds the 7 day transition counts.
	dashboardStageWindow = 7 * 24 * time.Hour
)

// DashboardSnapshot returns the cached snapshot for p, computing and caching
// it on a miss. It always returns a usable snapshot.
func (s *Service) DashboardSnapshot(ctx context.Context, p dashboard.Params) dashboard.Snapshot {
	var snap dashboard.Snapshot
	found, err := s.cache.Get(ctx, p.CacheKey(), &snap)
	switch {
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues(dashboardCacheName, "error").Inc()
		s.log.WithContext(ctx).Warn("dashboard cache lookup failed", "error", err)
	case found:
		metrics.CacheLookupsTotal.WithLabelValues(dashboardCacheName, "hit").Inc()
		return snap
	default:
		metrics.CacheLookupsTotal.WithLabelValues(dashboardCacheName, "miss").Inc()
	}

	snap = s.ComputeDashboard(ctx, p)
	// A degraded snapshot only serves this request; the next one retries the
	// failed sources.
	if len(snap.DegradedSources) > 0 {
		return snap
	}
	if err := s.cache.Set(ctx, p.CacheKey(), snap, s.dashboardTTL); err != nil {
		s.log.WithContext(ctx).Warn("dashboard cache store failed", "error", err)
	}
	return snap
}

// ErrDegradedSnapshot is returned by RefreshDashboard when a source failed.
// The snapshot is not stored, so the previous one stays in place.
var ErrDegradedSnapshot = errors.New("dashboard snapshot degraded")

// RefreshDashboard recomputes the snapshot for p and stores it. Degraded
// snapshots and store failures are returned as errors so background jobs can
// retry.
func (s *Service) RefreshDashboard(ctx context.Context, p dashboard.Params) (dashboard.Snapshot, error) {
	snap := s.ComputeDashboard(ctx, p)
	if len(snap.DegradedSources) > 0 {
		return snap, fmt.Errorf("%w: %s", ErrDegradedSnapshot, strings.Join(snap.DegradedSources, ", "))
	}
	if err := s.cache.Set(ctx, p.CacheKey(), snap, s.dashboardTTL); err != nil {
		return snap, fmt.Errorf("store dashboard snapshot: %w", err)
	}
	return snap, nil
}

// ComputeDashboard fetches every collection concurrently and aggregates.
// Failed collections are replaced by empty ones.
func (s *Service) ComputeDashboard(ctx context.Context, p dashboard.Params) dashboard.Snapshot {
	now := s.now()
	var (
		in  dashboard.Input
		deg degradation
		mu  sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		leads, err := s.repo.ListLeads(gctx)
		if err != nil {
			s.degrade(gctx, &deg, sourceLeads, err)
			return nil
		}
		in.Leads = leads
		return nil
	})

	for _, ch := range domain.ChannelOrder {
		g.Go(func() error {
			sessions, err := s.repo.ListSessions(gctx, ch)
			if err != nil {
				s.degrade(gctx, &deg, sessionSource(ch), err)
				return nil
			}
			mu.Lock()
			in.Sessions = append(in.Sessions, sessions...)
			mu.Unlock()
			return nil
		})
	}

	g.Go(func() error {
		messages, err := s.repo.ListMessages(gctx)
		if err != nil {
			s.degrade(gctx, &deg, sourceMessages, err)
			return nil
		}
		in.Messages = messages
		return nil
	})

	g.Go(func() error {
		events, err := s.repo.ListStageChangesSince(gctx, now.Add(-dashboardStageWindow))
		if err != nil {
			s.degrade(gctx, &deg, sourceStageChanges, err)
			return nil
		}
		in.StageChanges = events
		return nil
	})

	_ = g.Wait()

	orderSessions(in.Sessions)
	in.DegradedSources = deg.list()
	return s.aggregator.Aggregate(in, p)
}
