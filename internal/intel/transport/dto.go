// Package transport holds the request and response shapes of the intel API.
package transport

import (
	"lead_intel_backend/internal/intel/dashboard"
	"lead_intel_backend/internal/intel/summary"

	"github.com/google/uuid"
)

// DashboardMetricsQuery carries optional threshold overrides. Absent values
// fall back to the configured defaults.
type DashboardMetricsQuery struct {
	HotLeadThreshold  *int `form:"hotLeadThreshold"`
	WarmLeadThreshold *int `form:"warmLeadThreshold"`
}

// Params merges the query onto defaults. An absent warm threshold never
// exceeds the hot threshold, so only an explicit warm value can conflict.
func (q DashboardMetricsQuery) Params(defaults dashboard.Params) dashboard.Params {
	p := defaults
	if q.HotLeadThreshold != nil {
		p.HotLeadThreshold = *q.HotLeadThreshold
	}
	if q.WarmLeadThreshold != nil {
		p.WarmLeadThreshold = *q.WarmLeadThreshold
	} else {
		p.WarmLeadThreshold = max(0, min(defaults.WarmLeadThreshold, p.HotLeadThreshold))
	}
	return p
}

type SummaryResponse struct {
	LeadID      uuid.UUID      `json:"leadId"`
	Summary     string         `json:"summary"`
	Attribution string         `json:"attribution"`
	Source      summary.Source `json:"source"`
}

func NewSummaryResponse(leadID uuid.UUID, res summary.Result) SummaryResponse {
	return SummaryResponse{
		LeadID:      leadID,
		Summary:     res.Summary,
		Attribution: res.Attribution,
		Source:      res.Source,
	}
}
