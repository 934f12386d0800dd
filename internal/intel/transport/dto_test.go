package transport

import (
	"testing"

	"lead_intel_backend/internal/intel/dashboard"
)

func intPtr(v int) *int { return &v }

func TestDashboardMetricsQueryParams(t *testing.T) {
	defaults := dashboard.Params{HotLeadThreshold: 70, WarmLeadThreshold: 40}
	cases := []struct {
		name  string
		query DashboardMetricsQuery
		want  dashboard.Params
	}{
		{name: "defaults", want: defaults},
		{name: "hot above default warm", query: DashboardMetricsQuery{HotLeadThreshold: intPtr(85)}, want: dashboard.Params{HotLeadThreshold: 85, WarmLeadThreshold: 40}},
		{name: "hot below default warm", query: DashboardMetricsQuery{HotLeadThreshold: intPtr(30)}, want: dashboard.Params{HotLeadThreshold: 30, WarmLeadThreshold: 30}},
		{name: "explicit warm kept", query: DashboardMetricsQuery{HotLeadThreshold: intPtr(30), WarmLeadThreshold: intPtr(50)}, want: dashboard.Params{HotLeadThreshold: 30, WarmLeadThreshold: 50}},
	}
	for _, tc := range cases {
		if got := tc.query.Params(defaults); got != tc.want {
			t.Errorf("%s: expected %+v, got %+v", tc.name, tc.want, got)
		}
	}
}
