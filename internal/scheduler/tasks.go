package scheduler

import (
	"encoding/json"

	"lead_intel_backend/internal/intel/dashboard"

	"github.com/hibiken/asynq"
)

const TaskDashboardRefresh = "intel.dashboard.refresh"

type DashboardRefreshPayload struct {
	HotLeadThreshold  int `json:"hotLeadThreshold"`
	WarmLeadThreshold int `json:"warmLeadThreshold"`
}

func (p DashboardRefreshPayload) Params() dashboard.Params {
	return dashboard.Params{HotLeadThreshold: p.HotLeadThreshold, WarmLeadThreshold: p.WarmLeadThreshold}
}

func NewDashboardRefreshTask(params dashboard.Params) (*asynq.Task, error) {
	data, err := json.Marshal(DashboardRefreshPayload{
		HotLeadThreshold:  params.HotLeadThreshold,
		WarmLeadThreshold: params.WarmLeadThreshold,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardRefresh, data), nil
}

func ParseDashboardRefreshPayload(task *asynq.Task) (DashboardRefreshPayload, error) {
	var payload DashboardRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return DashboardRefreshPayload{}, err
	}
	return payload, nil
}
