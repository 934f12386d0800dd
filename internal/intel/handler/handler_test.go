package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lead_intel_backend/internal/intel/dashboard"
	"lead_intel_backend/internal/intel/facts"
	"lead_intel_backend/internal/intel/scoring"
	"lead_intel_backend/internal/intel/service"
	"lead_intel_backend/internal/intel/summary"
	"lead_intel_backend/platform/apperr"
	"lead_intel_backend/platform/logger"
	"lead_intel_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubService struct {
	scoreErr   error
	lastParams dashboard.Params
	lastLeadID any
}

func (s *stubService) Score(ctx context.Context, id uuid.UUID) (service.ScoreResult, error) {
	s.lastLeadID = ctx.Value(logger.LeadIDKey)
	if s.scoreErr != nil {
		return service.ScoreResult{}, s.scoreErr
	}
	return service.ScoreResult{LeadID: id, Breakdown: scoring.Breakdown{AI: 50, Activity: 30, Business: 10, Total: 90, Band: scoring.BandHot}}, nil
}

func (s *stubService) Booking(_ context.Context, id uuid.UUID) (service.BookingResult, error) {
	return service.BookingResult{LeadID: id}, nil
}

func (s *stubService) Facts(context.Context, uuid.UUID) (facts.CanonicalContext, error) {
	return facts.CanonicalContext{}, nil
}

func (s *stubService) Summary(context.Context, uuid.UUID) summary.Result {
	return summary.Unavailable()
}

func (s *stubService) Insights(_ context.Context, id uuid.UUID) (service.Insights, error) {
	return service.Insights{LeadID: id}, nil
}

func (s *stubService) DashboardSnapshot(_ context.Context, p dashboard.Params) dashboard.Snapshot {
	s.lastParams = p
	return dashboard.Snapshot{Params: p}
}

func newTestRouter(svc IntelService) *gin.Engine {
	r := gin.New()
	New(svc, validator.New(), dashboard.DefaultParams()).RegisterRoutes(r.Group("/api/v1/intel"))
	return r
}

func do(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestScoreReturnsBreakdown(t *testing.T) {
	r := newTestRouter(&stubService{})
	id := uuid.New()

	w := do(r, "/api/v1/intel/leads/"+id.String()+"/score")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["total"] != 90.0 || body["band"] != "Hot" || body["leadId"] != id.String() {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestScoreMapsNotFound(t *testing.T) {
	r := newTestRouter(&stubService{scoreErr: apperr.NotFound("lead not found")})

	w := do(r, "/api/v1/intel/leads/"+uuid.NewString()+"/score")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestInvalidLeadID(t *testing.T) {
	r := newTestRouter(&stubService{})

	w := do(r, "/api/v1/intel/leads/not-a-uuid/facts")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSummaryAlwaysOK(t *testing.T) {
	r := newTestRouter(&stubService{})

	w := do(r, "/api/v1/intel/leads/"+uuid.NewString()+"/summary")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["summary"] != summary.UnavailableText {
		t.Fatalf("unexpected summary %v", body["summary"])
	}
}

func TestDashboardMetricsThresholds(t *testing.T) {
	svc := &stubService{}
	r := newTestRouter(svc)

	w := do(r, "/api/v1/intel/dashboard/metrics")
	if w.Code != http.StatusOK || svc.lastParams != dashboard.DefaultParams() {
		t.Fatalf("expected defaults, got %d %+v", w.Code, svc.lastParams)
	}

	w = do(r, "/api/v1/intel/dashboard/metrics?hotLeadThreshold=85&warmLeadThreshold=50")
	if w.Code != http.StatusOK || svc.lastParams.HotLeadThreshold != 85 || svc.lastParams.WarmLeadThreshold != 50 {
		t.Fatalf("expected overrides, got %d %+v", w.Code, svc.lastParams)
	}

	w = do(r, "/api/v1/intel/dashboard/metrics?hotLeadThreshold=30")
	if w.Code != http.StatusOK || svc.lastParams.HotLeadThreshold != 30 || svc.lastParams.WarmLeadThreshold != 30 {
		t.Fatalf("expected warm default clamped to hot, got %d %+v", w.Code, svc.lastParams)
	}

	for _, bad := range []string{"?hotLeadThreshold=150", "?hotLeadThreshold=30&warmLeadThreshold=40", "?warmLeadThreshold=-1", "?hotLeadThreshold=abc"} {
		w = do(r, "/api/v1/intel/dashboard/metrics"+bad)
		if w.Code != http.StatusBadRequest {
			t.Errorf("query %s: expected 400, got %d", bad, w.Code)
		}
	}
}

func TestLeadRoutesTagContextWithLeadID(t *testing.T) {
	svc := &stubService{}
	r := newTestRouter(svc)
	id := uuid.New()

	if w := do(r, "/api/v1/intel/leads/"+id.String()+"/score"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if svc.lastLeadID != id.String() {
		t.Fatalf("expected lead id %s on context, got %v", id, svc.lastLeadID)
	}
}

func TestDashboardMetricsValidationDetails(t *testing.T) {
	r := newTestRouter(&stubService{})

	w := do(r, "/api/v1/intel/dashboard/metrics?hotLeadThreshold=30&warmLeadThreshold=40")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var body struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "validation failed" || len(body.Details) != 1 {
		t.Fatalf("unexpected body %+v", body)
	}

	w = do(r, "/api/v1/intel/dashboard/metrics?hotLeadThreshold=abc")
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "invalid request") {
		t.Fatalf("expected invalid request, got %d %s", w.Code, w.Body.String())
	}
}
