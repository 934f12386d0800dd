// Package service orchestrates the intel engine: it fetches a lead's data
// concurrently, degrades each failed source to an empty collection and hands
// the materialized inputs to the pure engine components.
package service

import (
	"context"
	"errors"
	"time"

	"lead_intel_backend/internal/intel/dashboard"
	"lead_intel_backend/internal/intel/domain"
	"lead_intel_backend/internal/intel/facts"
	"lead_intel_backend/internal/intel/repository"
	"lead_intel_backend/internal/intel/scoring"
	"lead_intel_backend/internal/intel/summary"
	"lead_intel_backend/platform/apperr"
	"lead_intel_backend/platform/cache"
	"lead_intel_backend/platform/logger"
	"lead_intel_backend/platform/metrics"

	"github.com/google/uuid"
)

// Deps are the collaborators of the intel service.
type Deps struct {
	Repo       repository.Reader
	Reconciler *facts.Reconciler
	Scorer     *scoring.Engine
	Aggregator *dashboard.Aggregator
	Summaries  *summary.Resolver
	Cache      cache.Cache
	Log        *logger.Logger
	Now        func() time.Time

	SummaryCacheTTL   time.Duration
	DashboardCacheTTL time.Duration
}

type Service struct {
	repo       repository.Reader
	reconciler *facts.Reconciler
	scorer     *scoring.Engine
	aggregator *dashboard.Aggregator
	summaries  *summary.Resolver
	cache      cache.Cache
	log        *logger.Logger
	now        func() time.Time

	summaryTTL   time.Duration
	dashboardTTL time.Duration
}

func New(deps Deps) *Service {
	svc := &Service{
		repo:         deps.Repo,
		reconciler:   deps.Reconciler,
		scorer:       deps.Scorer,
		aggregator:   deps.Aggregator,
		summaries:    deps.Summaries,
		cache:        deps.Cache,
		log:          deps.Log,
		now:          deps.Now,
		summaryTTL:   deps.SummaryCacheTTL,
		dashboardTTL: deps.DashboardCacheTTL,
	}
	if svc.reconciler == nil {
		svc.reconciler = facts.New("")
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.scorer == nil {
		svc.scorer = scoring.New(nil, svc.now)
	}
	if svc.aggregator == nil {
		svc.aggregator = dashboard.NewAggregator(svc.reconciler, svc.now)
	}
	if svc.summaries == nil {
		svc.summaries = summary.NewResolver(nil, 0, svc.now, deps.Log)
	}
	if svc.cache == nil {
		svc.cache = cache.Noop{}
	}
	if svc.log == nil {
		svc.log = logger.Discard()
	}
	return svc
}

// ScoreResult is a score breakdown for one lead.
type ScoreResult struct {
	LeadID          uuid.UUID `json:"leadId"`
	scoring.Breakdown
	DegradedSources []string `json:"degradedSources,omitempty"`
}

// BookingResult is the reconciled booking for one lead.
type BookingResult struct {
	LeadID     uuid.UUID `json:"leadId"`
	facts.Booking
	HasBooking      bool     `json:"hasBooking"`
	DegradedSources []string `json:"degradedSources,omitempty"`
}

// Insights combines every per-lead output in one response.
type Insights struct {
	LeadID          uuid.UUID              `json:"leadId"`
	Score           scoring.Breakdown      `json:"score"`
	Booking         facts.Booking          `json:"booking"`
	Facts           facts.CanonicalContext `json:"facts"`
	Summary         summary.Result         `json:"summary"`
	DegradedSources []string               `json:"degradedSources,omitempty"`
}

func (s *Service) Facts(ctx context.Context, leadID uuid.UUID) (facts.CanonicalContext, error) {
	b, err := s.loadLead(ctx, leadID)
	if err != nil {
		return facts.CanonicalContext{}, err
	}
	return b.facts(s.reconciler), nil
}

func (s *Service) Booking(ctx context.Context, leadID uuid.UUID) (BookingResult, error) {
	lead, err := s.getLead(ctx, leadID)
	if err != nil {
		return BookingResult{}, err
	}
	sessions, degraded := s.fetchLeadSessions(ctx, leadID)
	booking := s.reconciler.ResolveBooking(lead, sessions)
	return BookingResult{
		LeadID:          leadID,
		Booking:         booking,
		HasBooking:      booking.Present(),
		DegradedSources: degraded,
	}, nil
}

func (s *Service) Score(ctx context.Context, leadID uuid.UUID) (ScoreResult, error) {
	b, err := s.loadLead(ctx, leadID)
	if err != nil {
		return ScoreResult{}, err
	}
	return ScoreResult{
		LeadID:          leadID,
		Breakdown:       s.score(b, b.facts(s.reconciler)),
		DegradedSources: b.degraded,
	}, nil
}

// Summary always returns a usable result. A lead that cannot be loaded
// yields the "Unable to load summary" placeholder.
func (s *Service) Summary(ctx context.Context, leadID uuid.UUID) summary.Result {
	b, err := s.loadLead(ctx, leadID)
	if err != nil {
		s.log.WithContext(ctx).Warn("summary: lead unavailable", "leadId", leadID, "error", err)
		metrics.SummaryResolutionsTotal.WithLabelValues(string(summary.SourceUnavailable)).Inc()
		return summary.Unavailable()
	}
	return s.resolveSummary(ctx, b, b.facts(s.reconciler))
}

func (s *Service) Insights(ctx context.Context, leadID uuid.UUID) (Insights, error) {
	b, err := s.loadLead(ctx, leadID)
	if err != nil {
		return Insights{}, err
	}
	canonical := b.facts(s.reconciler)
	return Insights{
		LeadID:          leadID,
		Score:           s.score(b, canonical),
		Booking:         canonical.Booking,
		Facts:           canonical,
		Summary:         s.resolveSummary(ctx, b, canonical),
		DegradedSources: b.degraded,
	}, nil
}

func (s *Service) score(b *leadBundle, canonical facts.CanonicalContext) scoring.Breakdown {
	breakdown := s.scorer.Score(scoring.Input{Lead: b.lead, Facts: canonical, Messages: b.messages})
	metrics.ScoreTotal.Observe(float64(breakdown.Total))
	return breakdown
}

func (s *Service) getLead(ctx context.Context, leadID uuid.UUID) (domain.Lead, error) {
	lead, err := s.repo.GetLead(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return lead, apperr.NotFound("lead not found")
	}
	if err != nil {
		s.log.WithContext(ctx).DatabaseError("get_lead", err)
		return lead, apperr.Unavailable("lead lookup failed", err).WithOp("get_lead")
	}
	return lead, nil
}
