package service

import (
	"context"
	"sort"
	"sync"

	"lead_intel_backend/internal/intel/domain"
	"lead_intel_backend/internal/intel/facts"
	"lead_intel_backend/platform/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Source names recorded when a fetch degrades.
const (
	sourceMessages     = "messages"
	sourceActivities   = "activities"
	sourceStageChanges = "stage_changes"
	sourceUsers        = "users"
	sourceLeads        = "leads"
)

func sessionSource(ch domain.Channel) string {
	return string(ch) + "_sessions"
}

// leadBundle is the fully materialized data for one lead.
type leadBundle struct {
	lead         domain.Lead
	sessions     []domain.ChannelSession
	messages     []domain.Message
	activities   []domain.Activity
	stageChanges []domain.StageChangeEvent
	users        map[string]domain.User
	degraded     []string
}

func (b *leadBundle) facts(r *facts.Reconciler) facts.CanonicalContext {
	return r.Reconcile(b.lead, b.sessions, b.messages)
}

// degradation collects failed sources from concurrent fetches.
type degradation struct {
	mu      sync.Mutex
	sources []string
}

func (d *degradation) add(source string) {
	d.mu.Lock()
	d.sources = append(d.sources, source)
	d.mu.Unlock()
}

func (d *degradation) list() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.sources) == 0 {
		return nil
	}
	out := append([]string(nil), d.sources...)
	sort.Strings(out)
	return out
}

// degrade logs and counts a failed fetch. Callers continue with an empty
// collection.
func (s *Service) degrade(ctx context.Context, d *degradation, source string, err error) {
	s.log.WithContext(ctx).DegradedFetch(source, err)
	metrics.DegradedFetchesTotal.WithLabelValues(source).Inc()
	d.add(source)
}

// loadLead fetches the lead, then its independent collections concurrently.
// Only the lead lookup itself can fail the call.
func (s *Service) loadLead(ctx context.Context, leadID uuid.UUID) (*leadBundle, error) {
	lead, err := s.getLead(ctx, leadID)
	if err != nil {
		return nil, err
	}

	b := &leadBundle{lead: lead}
	var (
		deg degradation
		mu  sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)

	for _, ch := range domain.ChannelOrder {
		g.Go(func() error {
			sessions, err := s.repo.ListSessionsByLead(gctx, ch, leadID)
			if err != nil {
				s.degrade(gctx, &deg, sessionSource(ch), err)
				return nil
			}
			mu.Lock()
			b.sessions = append(b.sessions, sessions...)
			mu.Unlock()
			return nil
		})
	}

	g.Go(func() error {
		messages, err := s.repo.ListMessagesByLead(gctx, leadID)
		if err != nil {
			s.degrade(gctx, &deg, sourceMessages, err)
			return nil
		}
		b.messages = messages
		return nil
	})

	g.Go(func() error {
		activities, err := s.repo.ListActivitiesByLead(gctx, leadID)
		if err != nil {
			s.degrade(gctx, &deg, sourceActivities, err)
			return nil
		}
		b.activities = activities
		return nil
	})

	g.Go(func() error {
		events, err := s.repo.ListStageChangesByLead(gctx, leadID)
		if err != nil {
			s.degrade(gctx, &deg, sourceStageChanges, err)
			return nil
		}
		b.stageChanges = events
		return nil
	})

	_ = g.Wait()

	// Sessions arrive in completion order; restore a stable channel order so
	// booking tie-breaks do not depend on scheduling.
	orderSessions(b.sessions)

	b.users = s.fetchUsers(ctx, &deg, b.activities, b.stageChanges)
	b.degraded = deg.list()
	return b, nil
}

// fetchLeadSessions reads every channel's sessions for one lead, skipping
// failed channels.
func (s *Service) fetchLeadSessions(ctx context.Context, leadID uuid.UUID) ([]domain.ChannelSession, []string) {
	var (
		deg      degradation
		mu       sync.Mutex
		sessions []domain.ChannelSession
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, ch := range domain.ChannelOrder {
		g.Go(func() error {
			rows, err := s.repo.ListSessionsByLead(gctx, ch, leadID)
			if err != nil {
				s.degrade(gctx, &deg, sessionSource(ch), err)
				return nil
			}
			mu.Lock()
			sessions = append(sessions, rows...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	orderSessions(sessions)
	return sessions, deg.list()
}

func (s *Service) fetchUsers(ctx context.Context, deg *degradation, activities []domain.Activity, events []domain.StageChangeEvent) map[string]domain.User {
	seen := make(map[string]bool)
	var ids []string
	collect := func(id string) {
		if id == "" || domain.IsAutomatedActor(id) || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}
	for _, ev := range events {
		collect(ev.ChangedBy)
	}
	for _, a := range activities {
		collect(a.CreatedBy)
	}
	if len(ids) == 0 {
		return nil
	}

	users, err := s.repo.GetUsersByIDs(ctx, ids)
	if err != nil {
		s.degrade(ctx, deg, sourceUsers, err)
		return nil
	}
	return users
}

var channelRank = func() map[domain.Channel]int {
	rank := make(map[domain.Channel]int, len(domain.ChannelOrder))
	for i, ch := range domain.ChannelOrder {
		rank[ch] = i
	}
	return rank
}()

// orderSessions sorts by channel order, keeping each channel's query order.
func orderSessions(sessions []domain.ChannelSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return channelRank[sessions[i].Channel] < channelRank[sessions[j].Channel]
	})
}
