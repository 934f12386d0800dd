package dashboard

import (
	"sort"
	"time"

	"lead_intel_backend/internal/intel/domain"
	"lead_intel_backend/internal/intel/facts"

	"github.com/google/uuid"
)

const dailyPoints = 7

// Input is the fully materialized data set for one snapshot. A collection
// whose fetch failed is passed empty and named in DegradedSources.
type Input struct {
	Leads           []domain.Lead
	Sessions        []domain.ChannelSession
	Messages        []domain.Message
	StageChanges    []domain.StageChangeEvent
	DegradedSources []string
}

// DailyPoint is one calendar day of the trend series.
type DailyPoint struct {
	Date               string  `json:"date"`
	NewLeads           int     `json:"newLeads"`
	Bookings           int     `json:"bookings"`
	Conversations      int     `json:"conversations"`
	HotLeads           int     `json:"hotLeads"`
	AvgResponseSeconds float64 `json:"avgResponseSeconds"`
}

// Snapshot is the dashboard-wide aggregate.
type Snapshot struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Params      Params    `json:"params"`

	TotalLeads         int `json:"totalLeads"`
	TotalConversations int `json:"totalConversations"`
	LeadsWithBooking   int `json:"leadsWithBooking"`

	NewLeads               Window                    `json:"newLeads"`
	Conversations          Window                    `json:"conversations"`
	ConversationsByChannel map[domain.Channel]Window `json:"conversationsByChannel"`

	ResponseRate       int     `json:"responseRate"`
	BookingRate        int     `json:"bookingRate"`
	ConversionRate     int     `json:"conversionRate"`
	AvgResponseSeconds float64 `json:"avgResponseSeconds"`

	HotLeads  int `json:"hotLeads"`
	WarmLeads int `json:"warmLeads"`
	ColdLeads int `json:"coldLeads"`

	Stale          LeadList `json:"stale"`
	NeedsAttention LeadList `json:"needsAttention"`
	RecentlyHot    LeadList `json:"recentlyHot"`

	StageTransitions7D map[string]int `json:"stageTransitions7d"`

	Daily []DailyPoint `json:"daily"`

	DegradedSources []string `json:"degradedSources,omitempty"`
}

// Aggregator computes snapshots. It is stateless apart from its clock.
type Aggregator struct {
	reconciler *facts.Reconciler
	now        func() time.Time
}

// NewAggregator creates an Aggregator. A nil clock uses time.Now.
func NewAggregator(reconciler *facts.Reconciler, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{reconciler: reconciler, now: now}
}

// Aggregate computes the snapshot for in under p.
func (a *Aggregator) Aggregate(in Input, p Params) Snapshot {
	now := a.now()
	snap := Snapshot{
		GeneratedAt:            now,
		Params:                 p,
		TotalLeads:             len(in.Leads),
		ConversationsByChannel: make(map[domain.Channel]Window, len(domain.ChannelOrder)),
		StageTransitions7D:     make(map[string]int),
		Stale:                  LeadList{LeadIDs: []uuid.UUID{}},
		NeedsAttention:         LeadList{LeadIDs: []uuid.UUID{}},
		RecentlyHot:            LeadList{LeadIDs: []uuid.UUID{}},
		DegradedSources:        in.DegradedSources,
	}

	booked := a.bookedLeads(in.Leads, in.Sessions)
	snap.LeadsWithBooking = len(booked)

	a.conversationWindows(&snap, in.Sessions, now)
	a.leadWindows(&snap, in.Leads, p, now)
	a.messageRates(&snap, in.Messages)

	for _, ev := range in.StageChanges {
		if !ev.ChangedAt.After(now) && now.Sub(ev.ChangedAt) <= 7*day {
			snap.StageTransitions7D[ev.NewStage]++
		}
	}

	snap.BookingRate = Percent(snap.LeadsWithBooking, snap.TotalLeads)
	snap.ConversionRate = Percent(snap.LeadsWithBooking, snap.TotalConversations)

	snap.Daily = a.daily(in, booked, p, now)
	return snap
}

// bookedLeads returns the IDs of leads whose booking reconciles, matching
// sessions to leads by their weak lead reference.
func (a *Aggregator) bookedLeads(leads []domain.Lead, sessions []domain.ChannelSession) map[uuid.UUID]bool {
	byLead := make(map[uuid.UUID][]domain.ChannelSession)
	for _, s := range sessions {
		if s.LeadID != nil {
			byLead[*s.LeadID] = append(byLead[*s.LeadID], s)
		}
	}

	booked := make(map[uuid.UUID]bool)
	for _, lead := range leads {
		if a.reconciler.HasBooking(lead, byLead[lead.ID]) {
			booked[lead.ID] = true
		}
	}
	return booked
}

// conversationWindows counts unique conversations per channel, then sums
// the channel windows.
func (a *Aggregator) conversationWindows(snap *Snapshot, sessions []domain.ChannelSession, now time.Time) {
	counters := make(map[domain.Channel]*windowCounter, len(domain.ChannelOrder))
	for _, ch := range domain.ChannelOrder {
		counters[ch] = newWindowCounter(now)
	}

	for _, s := range sessions {
		if !s.IsConversation() {
			continue
		}
		snap.TotalConversations++
		counter, ok := counters[s.Channel]
		if !ok {
			counter = newWindowCounter(now)
			counters[s.Channel] = counter
		}
		counter.add(s.CreatedAt)
	}

	for ch, counter := range counters {
		w := counter.result()
		snap.ConversationsByChannel[ch] = w
		snap.Conversations = snap.Conversations.plus(w)
	}
}

func (a *Aggregator) leadWindows(snap *Snapshot, leads []domain.Lead, p Params, now time.Time) {
	newLeads := newWindowCounter(now)

	ordered := make([]domain.Lead, len(leads))
	copy(ordered, leads)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score() > ordered[j].Score()
	})

	for _, lead := range ordered {
		newLeads.add(lead.CreatedAt)

		switch p.Bucket(lead.Score()) {
		case BucketHot:
			snap.HotLeads++
		case BucketWarm:
			snap.WarmLeads++
		default:
			snap.ColdLeads++
		}

		if IsStale(lead, now) {
			snap.Stale.add(lead.ID)
		}
		if NeedsAttention(lead, now) {
			snap.NeedsAttention.add(lead.ID)
		}
		if IsRecentlyHot(lead, p.HotLeadThreshold, now) {
			snap.RecentlyHot.add(lead.ID)
		}
	}

	snap.NewLeads = newLeads.result()
}

func (a *Aggregator) messageRates(snap *Snapshot, messages []domain.Message) {
	var customer, agent int
	for _, m := range messages {
		switch m.Sender {
		case domain.SenderCustomer:
			customer++
		case domain.SenderAgent:
			agent++
		}
	}
	snap.ResponseRate = Percent(agent, customer)
	snap.AvgResponseSeconds = AvgResponseSeconds(messages)
}

// daily builds the series for i = 6..0 days ago, each scoped to one
// calendar day in the clock's location.
func (a *Aggregator) daily(in Input, booked map[uuid.UUID]bool, p Params, now time.Time) []DailyPoint {
	today := startOfDay(now)
	points := make([]DailyPoint, 0, dailyPoints)

	for i := dailyPoints - 1; i >= 0; i-- {
		start := today.AddDate(0, 0, -i)
		point := DailyPoint{Date: start.Format("2006-01-02")}

		for _, lead := range in.Leads {
			if inDay(lead.CreatedAt, start) {
				point.NewLeads++
				if booked[lead.ID] {
					point.Bookings++
				}
			}
			if lead.Score() >= p.HotLeadThreshold && inDay(lead.LastActivityAt(), start) {
				point.HotLeads++
			}
		}

		for _, s := range in.Sessions {
			if s.IsConversation() && inDay(s.CreatedAt, start) {
				point.Conversations++
			}
		}

		var dayMessages []domain.Message
		for _, m := range in.Messages {
			if inDay(m.CreatedAt, start) {
				dayMessages = append(dayMessages, m)
			}
		}
		point.AvgResponseSeconds = AvgResponseSeconds(dayMessages)

		points = append(points, point)
	}
	return points
}
