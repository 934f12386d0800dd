package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "lead_intel_backend/internal/http"
	"lead_intel_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubConfig struct {
	allowAll bool
	origins  []string
}

func (c stubConfig) GetHTTPAddr() string            { return ":0" }
func (c stubConfig) GetCORSAllowAll() bool          { return c.allowAll }
func (c stubConfig) GetCORSOrigins() []string       { return c.origins }
func (c stubConfig) GetCORSAllowCreds() bool        { return false }
func (c stubConfig) GetRateLimitPerSecond() float64 { return 100 }
func (c stubConfig) GetRateLimitBurst() int         { return 100 }

type stubHealth struct{ err error }

func (h stubHealth) Ping(context.Context) error { return h.err }

type pingModule struct{}

func (pingModule) Name() string { return "ping" }

func (pingModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

func newApp(health apphttp.HealthChecker, cfg stubConfig) *apphttp.App {
	return &apphttp.App{
		Config:  cfg,
		Logger:  logger.Discard(),
		Health:  health,
		Modules: []apphttp.Module{pingModule{}},
	}
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRouterServesHealthMetricsAndModules(t *testing.T) {
	engine := New(newApp(stubHealth{}, stubConfig{origins: []string{"http://localhost:4200"}}))

	if w := get(engine, "/api/health"); w.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", w.Code)
	}
	if w := get(engine, "/metrics"); w.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", w.Code)
	}
	w := get(engine, "/api/v1/ping")
	if w.Code != http.StatusOK || w.Body.String() != "pong" {
		t.Fatalf("module route: got %d %q", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestRouterHealthReportsUnavailableDatabase(t *testing.T) {
	engine := New(newApp(stubHealth{err: errors.New("down")}, stubConfig{}))

	if w := get(engine, "/api/health"); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
