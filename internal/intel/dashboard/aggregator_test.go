package dashboard

import (
	"testing"
	"time"

	"lead_intel_backend/internal/intel/domain"
	"lead_intel_backend/internal/intel/facts"

	"github.com/google/uuid"
)

var fixedNow = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

func newTestAggregator() *Aggregator {
	return NewAggregator(facts.New(""), func() time.Time { return fixedNow })
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func conversationSession(leadID uuid.UUID, ch domain.Channel, createdAt time.Time) domain.ChannelSession {
	id := leadID
	return domain.ChannelSession{ID: uuid.New(), LeadID: &id, Channel: ch, MessageCount: 3, CreatedAt: createdAt}
}

func TestConversionRateUsesConversationDenominator(t *testing.T) {
	var (
		leads    []domain.Lead
		sessions []domain.ChannelSession
	)
	for i := 0; i < 10; i++ {
		lead := domain.Lead{ID: uuid.New(), CreatedAt: fixedNow.Add(-time.Duration(i) * time.Hour)}
		if i < 3 {
			lead.UnifiedContext = map[string]any{"web": map[string]any{"booking_date": "2025-03-20"}}
		}
		leads = append(leads, lead)
		sessions = append(sessions, conversationSession(lead.ID, domain.ChannelWeb, lead.CreatedAt))
	}
	// Sessions without messages are not conversations.
	sessions = append(sessions, domain.ChannelSession{Channel: domain.ChannelVoice, MessageCount: 0, CreatedAt: fixedNow})

	snap := newTestAggregator().Aggregate(Input{Leads: leads, Sessions: sessions}, DefaultParams())

	if snap.TotalConversations != 10 {
		t.Fatalf("expected 10 conversations, got %d", snap.TotalConversations)
	}
	if snap.ConversionRate != 30 {
		t.Fatalf("expected conversion rate 30, got %d", snap.ConversionRate)
	}
	if snap.BookingRate != 30 {
		t.Fatalf("expected booking rate 30, got %d", snap.BookingRate)
	}
}

func TestRatesAreZeroGuarded(t *testing.T) {
	snap := newTestAggregator().Aggregate(Input{}, DefaultParams())

	if snap.ResponseRate != 0 || snap.BookingRate != 0 || snap.ConversionRate != 0 {
		t.Fatalf("expected zero rates, got %+v", snap)
	}
	if snap.Conversations.Trend7D != 0 || snap.NewLeads.Trend7D != 0 {
		t.Fatalf("expected zero trends")
	}
	if len(snap.Daily) != 7 {
		t.Fatalf("expected 7 daily points, got %d", len(snap.Daily))
	}
	if snap.AvgResponseSeconds != 0 {
		t.Fatalf("expected zero avg response, got %v", snap.AvgResponseSeconds)
	}
}

func TestTrend(t *testing.T) {
	cases := []struct {
		current, previous, want int
	}{
		{current: 5, previous: 0, want: 0},
		{current: 0, previous: 0, want: 0},
		{current: 15, previous: 10, want: 50},
		{current: 5, previous: 10, want: -50},
		{current: 2, previous: 3, want: -33},
	}
	for _, tc := range cases {
		if got := Trend(tc.current, tc.previous); got != tc.want {
			t.Errorf("Trend(%d, %d) = %d, want %d", tc.current, tc.previous, got, tc.want)
		}
	}
}

func TestConversationWindowsPerChannel(t *testing.T) {
	lead := uuid.New()
	sessions := []domain.ChannelSession{
		conversationSession(lead, domain.ChannelWeb, fixedNow.Add(-1*day)),
		conversationSession(lead, domain.ChannelWeb, fixedNow.Add(-2*day)),
		conversationSession(lead, domain.ChannelWhatsApp, fixedNow.Add(-3*day)),
		conversationSession(lead, domain.ChannelWeb, fixedNow.Add(-10*day)),
		conversationSession(lead, domain.ChannelVoice, fixedNow.Add(-20*day)),
	}

	snap := newTestAggregator().Aggregate(Input{Sessions: sessions}, DefaultParams())

	got := snap.Conversations
	if got.Last7D != 3 || got.Previous7D != 1 || got.Last14D != 4 || got.Last30D != 5 {
		t.Fatalf("unexpected conversation window: %+v", got)
	}
	if got.Trend7D != 200 {
		t.Fatalf("expected trend 200, got %d", got.Trend7D)
	}
	if web := snap.ConversationsByChannel[domain.ChannelWeb]; web.Last7D != 2 || web.Previous7D != 1 || web.Trend7D != 100 {
		t.Fatalf("unexpected web window: %+v", web)
	}
	if wa := snap.ConversationsByChannel[domain.ChannelWhatsApp]; wa.Trend7D != 0 {
		t.Fatalf("expected zero-guarded whatsapp trend, got %d", wa.Trend7D)
	}
}

func TestAvgResponseSecondsPrefersMetadata(t *testing.T) {
	messages := []domain.Message{
		{Sender: domain.SenderAgent, Metadata: map[string]any{"responseTimeMs": 2000.0}, CreatedAt: fixedNow},
		{Sender: domain.SenderAgent, Metadata: map[string]any{"responseTimeMs": 4000.0}, CreatedAt: fixedNow},
		{Sender: domain.SenderCustomer, CreatedAt: fixedNow.Add(-time.Hour)},
	}
	if got := AvgResponseSeconds(messages); got != 3 {
		t.Fatalf("expected 3 seconds, got %v", got)
	}
}

func TestAvgResponseSecondsFallsBackToPairs(t *testing.T) {
	leadA, leadB := uuid.New(), uuid.New()
	base := fixedNow.Add(-2 * time.Hour)
	messages := []domain.Message{
		// Out of order on purpose; only createdAt ordering is guaranteed.
		{LeadID: &leadA, Sender: domain.SenderAgent, CreatedAt: base.Add(30 * time.Second)},
		{LeadID: &leadA, Sender: domain.SenderCustomer, CreatedAt: base},
		{LeadID: &leadA, Sender: domain.SenderCustomer, CreatedAt: base.Add(time.Minute)},
		{LeadID: &leadA, Sender: domain.SenderCustomer, CreatedAt: base.Add(2 * time.Minute)},
		{LeadID: &leadA, Sender: domain.SenderAgent, CreatedAt: base.Add(3 * time.Minute)},
		// The second lead's agent reply must not pair with lead A's customer.
		{LeadID: &leadB, Sender: domain.SenderAgent, CreatedAt: base.Add(90 * time.Second)},
	}

	// Pairs: 30s and 60s.
	if got := AvgResponseSeconds(messages); got != 45 {
		t.Fatalf("expected 45 seconds, got %v", got)
	}
}

func TestClassificationsUseExplicitThresholds(t *testing.T) {
	recent := fixedNow.Add(-3 * day)
	old := fixedNow.Add(-10 * day)
	leads := []domain.Lead{
		{ID: uuid.New(), LeadScore: intPtr(85), LastInteractionAt: timePtr(recent), CreatedAt: old},
		{ID: uuid.New(), LeadScore: intPtr(60), LastInteractionAt: timePtr(fixedNow.Add(-time.Hour)), CreatedAt: old},
		{ID: uuid.New(), LeadScore: intPtr(20), CreatedAt: old},
	}

	snap := newTestAggregator().Aggregate(Input{Leads: leads}, Params{HotLeadThreshold: 80, WarmLeadThreshold: 50})

	if snap.HotLeads != 1 || snap.WarmLeads != 1 || snap.ColdLeads != 1 {
		t.Fatalf("unexpected buckets hot=%d warm=%d cold=%d", snap.HotLeads, snap.WarmLeads, snap.ColdLeads)
	}
	if snap.RecentlyHot.Count != 1 || snap.RecentlyHot.LeadIDs[0] != leads[0].ID {
		t.Fatalf("unexpected recently hot: %+v", snap.RecentlyHot)
	}
	if snap.NeedsAttention.Count != 2 {
		t.Fatalf("expected 2 leads needing attention, got %d", snap.NeedsAttention.Count)
	}
	if snap.Stale.Count != 2 {
		t.Fatalf("expected 2 stale leads, got %d", snap.Stale.Count)
	}

	snap = newTestAggregator().Aggregate(Input{Leads: leads}, Params{HotLeadThreshold: 50, WarmLeadThreshold: 10})
	if snap.HotLeads != 2 || snap.RecentlyHot.Count != 2 {
		t.Fatalf("expected threshold change to move buckets, got hot=%d recent=%d", snap.HotLeads, snap.RecentlyHot.Count)
	}
}

func TestPredicates(t *testing.T) {
	lead := domain.Lead{LeadScore: intPtr(55), CreatedAt: fixedNow.Add(-49 * time.Hour)}
	if !IsStale(lead, fixedNow) {
		t.Fatalf("expected stale after 49h")
	}
	lead.LastInteractionAt = timePtr(fixedNow.Add(-47 * time.Hour))
	if IsStale(lead, fixedNow) {
		t.Fatalf("expected fresh within 48h")
	}
	if !NeedsAttention(lead, fixedNow) {
		t.Fatalf("expected needs attention")
	}
	lead.LeadScore = intPtr(50)
	if NeedsAttention(lead, fixedNow) {
		t.Fatalf("score 50 must not need attention")
	}
	lead.LeadScore = intPtr(70)
	lead.LastInteractionAt = timePtr(fixedNow.Add(-7 * day))
	if !IsRecentlyHot(lead, 70, fixedNow) {
		t.Fatalf("expected recently hot at exactly 7 days")
	}
	if IsRecentlyHot(lead, 71, fixedNow) {
		t.Fatalf("expected threshold to be honoured")
	}
}

func TestDailySeries(t *testing.T) {
	today := startOfDay(fixedNow)
	yesterday := today.AddDate(0, 0, -1)
	booked := domain.Lead{
		ID:             uuid.New(),
		CreatedAt:      yesterday.Add(9 * time.Hour),
		UnifiedContext: map[string]any{"whatsapp": map[string]any{"booking": map[string]any{"time": "11:00"}}},
	}
	hot := domain.Lead{
		ID:                uuid.New(),
		LeadScore:         intPtr(90),
		CreatedAt:         today.AddDate(0, 0, -20),
		LastInteractionAt: timePtr(today.Add(time.Hour)),
	}
	sessions := []domain.ChannelSession{
		conversationSession(booked.ID, domain.ChannelWhatsApp, yesterday.Add(9*time.Hour)),
		conversationSession(hot.ID, domain.ChannelWeb, today.Add(time.Hour)),
		conversationSession(hot.ID, domain.ChannelWeb, today.AddDate(0, 0, -7)),
	}
	messages := []domain.Message{
		{Sender: domain.SenderAgent, CreatedAt: today.Add(2 * time.Hour), Metadata: map[string]any{"responseTimeMs": 1500.0}},
	}

	snap := newTestAggregator().Aggregate(Input{
		Leads:    []domain.Lead{booked, hot},
		Sessions: sessions,
		Messages: messages,
	}, DefaultParams())

	if len(snap.Daily) != 7 {
		t.Fatalf("expected 7 points, got %d", len(snap.Daily))
	}
	first, last := snap.Daily[0], snap.Daily[6]
	if first.Date != today.AddDate(0, 0, -6).Format("2006-01-02") || last.Date != today.Format("2006-01-02") {
		t.Fatalf("unexpected series range %s..%s", first.Date, last.Date)
	}

	y := snap.Daily[5]
	if y.NewLeads != 1 || y.Bookings != 1 || y.Conversations != 1 {
		t.Fatalf("unexpected yesterday point: %+v", y)
	}
	if last.HotLeads != 1 || last.Conversations != 1 || last.AvgResponseSeconds != 1.5 {
		t.Fatalf("unexpected today point: %+v", last)
	}
	for _, p := range snap.Daily[:5] {
		if p.Conversations != 0 || p.NewLeads != 0 {
			t.Fatalf("expected empty earlier day, got %+v", p)
		}
	}
}

func TestStageTransitionsLastSevenDays(t *testing.T) {
	events := []domain.StageChangeEvent{
		{NewStage: domain.StageQualified, ChangedAt: fixedNow.Add(-day)},
		{NewStage: domain.StageQualified, ChangedAt: fixedNow.Add(-2 * day)},
		{NewStage: domain.StageConverted, ChangedAt: fixedNow.Add(-9 * day)},
	}

	snap := newTestAggregator().Aggregate(Input{StageChanges: events, DegradedSources: []string{"messages"}}, DefaultParams())

	if snap.StageTransitions7D[domain.StageQualified] != 2 || snap.StageTransitions7D[domain.StageConverted] != 0 {
		t.Fatalf("unexpected transitions: %#v", snap.StageTransitions7D)
	}
	if len(snap.DegradedSources) != 1 || snap.DegradedSources[0] != "messages" {
		t.Fatalf("expected degraded sources to be carried, got %v", snap.DegradedSources)
	}
}

func TestParamsCacheKeyAndBucket(t *testing.T) {
	p := DefaultParams()
	if p.CacheKey() != "dashboard:snapshot:70:40" {
		t.Fatalf("unexpected cache key %q", p.CacheKey())
	}
	if p.Bucket(70) != BucketHot || p.Bucket(40) != BucketWarm || p.Bucket(39) != BucketCold {
		t.Fatalf("unexpected bucketing")
	}
}
