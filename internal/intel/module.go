// Package intel wires the lead intelligence engine into the HTTP server.
package intel

import (
	"time"

	apphttp "lead_intel_backend/internal/http"
	"lead_intel_backend/internal/intel/dashboard"
	"lead_intel_backend/internal/intel/facts"
	"lead_intel_backend/internal/intel/handler"
	"lead_intel_backend/internal/intel/repository"
	"lead_intel_backend/internal/intel/scoring"
	"lead_intel_backend/internal/intel/service"
	"lead_intel_backend/internal/intel/summary"
	"lead_intel_backend/platform/cache"
	"lead_intel_backend/platform/config"
	"lead_intel_backend/platform/logger"
	"lead_intel_backend/platform/validator"
)

// Config is the configuration the intel module reads.
type Config interface {
	config.IntelConfig
	GetTextGenTimeout() time.Duration
}

// Deps are the infrastructure pieces built by the composition root.
type Deps struct {
	Repo      repository.Reader
	Cache     cache.Cache
	Generator summary.Generator
	Validator *validator.Validator
	Config    Config
	Log       *logger.Logger
}

type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(deps Deps) (*Module, error) {
	lexicon, err := scoring.LoadLexicon(deps.Config.GetLexiconPath())
	if err != nil {
		return nil, err
	}

	reconciler := facts.New(deps.Config.GetPhoneDefaultRegion())
	svc := service.New(service.Deps{
		Repo:              deps.Repo,
		Reconciler:        reconciler,
		Scorer:            scoring.New(lexicon, time.Now),
		Aggregator:        dashboard.NewAggregator(reconciler, time.Now),
		Summaries:         summary.NewResolver(deps.Generator, deps.Config.GetTextGenTimeout(), time.Now, deps.Log),
		Cache:             deps.Cache,
		Log:               deps.Log,
		SummaryCacheTTL:   deps.Config.GetSummaryCacheTTL(),
		DashboardCacheTTL: deps.Config.GetDashboardCacheTTL(),
	})

	return &Module{
		handler: handler.New(svc, deps.Validator, DefaultParams(deps.Config)),
		service: svc,
	}, nil
}

// DefaultParams returns the configured dashboard thresholds.
func DefaultParams(cfg config.IntelConfig) dashboard.Params {
	return dashboard.Params{
		HotLeadThreshold:  cfg.GetHotLeadThreshold(),
		WarmLeadThreshold: cfg.GetWarmLeadThreshold(),
	}
}

func (m *Module) Name() string {
	return "intel"
}

// Service exposes the engine to background workers.
func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/intel"))
}
