package handler

import (
	"context"

	"lead_intel_backend/internal/intel/dashboard"
	"lead_intel_backend/internal/intel/facts"
	"lead_intel_backend/internal/intel/service"
	"lead_intel_backend/internal/intel/summary"
	"lead_intel_backend/internal/intel/transport"
	"lead_intel_backend/platform/apperr"
	"lead_intel_backend/platform/httpkit"
	"lead_intel_backend/platform/logger"
	"lead_intel_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidLeadID    = "invalid lead id"
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// IntelService is the engine surface the handler exposes.
type IntelService interface {
	Score(ctx context.Context, leadID uuid.UUID) (service.ScoreResult, error)
	Booking(ctx context.Context, leadID uuid.UUID) (service.BookingResult, error)
	Facts(ctx context.Context, leadID uuid.UUID) (facts.CanonicalContext, error)
	Summary(ctx context.Context, leadID uuid.UUID) summary.Result
	Insights(ctx context.Context, leadID uuid.UUID) (service.Insights, error)
	DashboardSnapshot(ctx context.Context, p dashboard.Params) dashboard.Snapshot
}

type Handler struct {
	svc      IntelService
	val      *validator.Validator
	defaults dashboard.Params
}

func New(svc IntelService, val *validator.Validator, defaults dashboard.Params) *Handler {
	return &Handler{svc: svc, val: val, defaults: defaults}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/leads/:id/score", h.Score)
	rg.GET("/leads/:id/booking", h.Booking)
	rg.GET("/leads/:id/facts", h.Facts)
	rg.GET("/leads/:id/summary", h.Summary)
	rg.GET("/leads/:id/insights", h.Insights)
	rg.GET("/dashboard/metrics", h.DashboardMetrics)
}

func (h *Handler) Score(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}
	result, err := h.svc.Score(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Booking(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}
	result, err := h.svc.Booking(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Facts(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}
	result, err := h.svc.Facts(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Summary always answers 200; lookup failures surface as placeholder text.
func (h *Handler) Summary(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}
	res := h.svc.Summary(c.Request.Context(), id)
	httpkit.OK(c, transport.NewSummaryResponse(id, res))
}

func (h *Handler) Insights(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}
	result, err := h.svc.Insights(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) DashboardMetrics(c *gin.Context) {
	var q transport.DashboardMetricsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	params := q.Params(h.defaults)
	if err := h.val.Struct(params); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(validator.Describe(err)))
		return
	}
	httpkit.OK(c, h.svc.DashboardSnapshot(c.Request.Context(), params))
}

// parseLeadID also tags the request context so every log line written while
// serving the request carries lead_id.
func parseLeadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidLeadID))
		return uuid.Nil, false
	}
	c.Request = c.Request.WithContext(logger.WithLeadID(c.Request.Context(), id.String()))
	return id, true
}
