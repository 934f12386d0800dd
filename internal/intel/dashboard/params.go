// Package dashboard aggregates windowed business metrics across every lead
// for the dashboard overview.
package dashboard

import (
	"fmt"
	"time"

	"lead_intel_backend/internal/intel/domain"

	"github.com/google/uuid"
)

const (
	DefaultHotLeadThreshold  = 70
	DefaultWarmLeadThreshold = 40

	// maxListedLeads caps the lead IDs returned per classification.
	maxListedLeads = 50

	staleAfter          = 48 * time.Hour
	attentionScoreFloor = 50
	attentionWindowDays = 7.0
	recentlyHotDays     = 7.0
)

// Params are the caller supplied aggregation settings. Thresholds are always
// explicit inputs; nothing downstream buckets on literals.
type Params struct {
	HotLeadThreshold  int `json:"hotLeadThreshold" validate:"min=0,max=100"`
	WarmLeadThreshold int `json:"warmLeadThreshold" validate:"min=0,ltefield=HotLeadThreshold"`
}

func DefaultParams() Params {
	return Params{HotLeadThreshold: DefaultHotLeadThreshold, WarmLeadThreshold: DefaultWarmLeadThreshold}
}

// CacheKey identifies snapshots computed with these params.
func (p Params) CacheKey() string {
	return fmt.Sprintf("dashboard:snapshot:%d:%d", p.HotLeadThreshold, p.WarmLeadThreshold)
}

const (
	BucketHot  = "hot"
	BucketWarm = "warm"
	BucketCold = "cold"
)

// Bucket classifies a score as hot, warm or cold under these params.
func (p Params) Bucket(score int) string {
	switch {
	case score >= p.HotLeadThreshold:
		return BucketHot
	case score >= p.WarmLeadThreshold:
		return BucketWarm
	default:
		return BucketCold
	}
}

// IsStale reports whether the lead has been quiet for more than 48 hours.
func IsStale(lead domain.Lead, now time.Time) bool {
	return lead.LastActivityAt().Before(now.Add(-staleAfter))
}

// NeedsAttention reports a lead scoring above 50 that was active within the
// last seven days.
func NeedsAttention(lead domain.Lead, now time.Time) bool {
	return lead.Score() > attentionScoreFloor && domain.DaysBetween(lead.LastActivityAt(), now) < attentionWindowDays
}

// IsRecentlyHot reports a lead at or above the hot threshold that was active
// within the last seven days.
func IsRecentlyHot(lead domain.Lead, hotLeadThreshold int, now time.Time) bool {
	return lead.Score() >= hotLeadThreshold && domain.DaysBetween(lead.LastActivityAt(), now) <= recentlyHotDays
}

// LeadList is a counted classification with a capped list of lead IDs.
type LeadList struct {
	Count   int         `json:"count"`
	LeadIDs []uuid.UUID `json:"leadIds"`
}

func (l *LeadList) add(id uuid.UUID) {
	l.Count++
	if len(l.LeadIDs) < maxListedLeads {
		l.LeadIDs = append(l.LeadIDs, id)
	}
}
