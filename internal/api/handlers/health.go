package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thaivisachecklist/server/internal/api/render"
	"github.com/thaivisachecklist/server/internal/checklist"
	"github.com/thaivisachecklist/server/internal/config"
	"github.com/thaivisachecklist/server/internal/content"
	"github.com/thaivisachecklist/server/internal/metrics"
)

// HealthCheck represents the health status of the server
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Slot      string                 `json:"slot,omitempty"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// CheckResult represents the result of a single health check
type CheckResult struct {
	Status    string         `json:"status"`
	Message   string         `json:"message,omitempty"`
	LatencyMs int64          `json:"latency_ms,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Check inspects one dependency.
type Check func(ctx context.Context) CheckResult

// HealthChecker runs the registered checks and tracks whether the server is
// draining for shutdown.
type HealthChecker struct {
	version   string
	gitCommit string

	mu       sync.RWMutex
	checks   map[string]Check
	draining atomic.Bool
}

// NewHealthChecker creates a health checker with no checks registered.
func NewHealthChecker(version, gitCommit string) *HealthChecker {
	return &HealthChecker{
		version:   version,
		gitCommit: gitCommit,
		checks:    make(map[string]Check),
	}
}

// AddCheck registers check under name, replacing any earlier one.
func (h *HealthChecker) AddCheck(name string, check Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// SetDraining marks the server as shutting down. Readiness fails from then on.
func (h *HealthChecker) SetDraining() {
	h.draining.Store(true)
	metrics.HealthStatus.Set(0)
}

// run executes every check and folds them into an overall status.
func (h *HealthChecker) run(ctx context.Context) (map[string]CheckResult, string) {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	checks := make(map[string]Check, len(h.checks))
	for name, c := range h.checks {
		names = append(names, name)
		checks[name] = c
	}
	h.mu.RUnlock()
	sort.Strings(names)

	results := make(map[string]CheckResult, len(names))
	overall := "healthy"
	for _, name := range names {
		start := time.Now()
		result := checks[name](ctx)
		if result.LatencyMs == 0 {
			result.LatencyMs = time.Since(start).Milliseconds()
		}
		results[name] = result

		switch result.Status {
		case "fail":
			overall = "unhealthy"
		case "warn":
			if overall == "healthy" {
				overall = "degraded"
			}
		}
	}

	switch overall {
	case "healthy":
		metrics.HealthStatus.Set(1)
	case "degraded":
		metrics.HealthStatus.Set(0.5)
	default:
		metrics.HealthStatus.Set(0)
	}
	return results, overall
}

// Health returns a comprehensive health check handler
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.draining.Load() {
			respondHealth(w, http.StatusServiceUnavailable, "shutting_down")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks, overall := h.run(ctx)
		statusCode := http.StatusOK
		if overall == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}

		// Deployment slot identifier for blue-green deployments
		slot := os.Getenv("DEPLOYMENT_SLOT")
		if slot == "" {
			slot = os.Getenv("SLOT")
		}

		response := HealthCheck{
			Status:    overall,
			Version:   h.version,
			GitCommit: h.gitCommit,
			Slot:      slot,
			Checks:    checks,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Readyz reports whether the server should receive traffic.
func (h *HealthChecker) Readyz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.draining.Load() {
			respondHealth(w, http.StatusServiceUnavailable, "shutting_down")
			return
		}
		if _, overall := h.run(r.Context()); overall == "unhealthy" {
			respondHealth(w, http.StatusServiceUnavailable, "not_ready")
			return
		}
		respondHealth(w, http.StatusOK, "ready")
	})
}

// Healthz returns a lightweight liveness response.
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondHealth(w, http.StatusOK, "ok")
	})
}

type healthResponse struct {
	Status string `json:"status"`
}

func respondHealth(w http.ResponseWriter, status int, value string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: value})
}

// ContentCheck verifies the embedded site content and checklists loaded.
func ContentCheck(site *content.Site, catalog *checklist.Catalog) Check {
	return func(context.Context) CheckResult {
		if site == nil || catalog == nil {
			return CheckResult{Status: "fail", Message: "Site content not loaded"}
		}
		return CheckResult{
			Status:  "pass",
			Message: "Embedded content loaded",
			Details: map[string]any{
				"guides":     len(site.Guides.All()),
				"news_items": len(site.News.All()),
				"checklists": len(catalog.All()),
			},
		}
	}
}

// TemplatesCheck verifies every named page template parsed.
func TemplatesCheck(renderer *render.Renderer, pages ...string) Check {
	return func(context.Context) CheckResult {
		if renderer == nil {
			return CheckResult{Status: "fail", Message: "Templates not loaded"}
		}
		var missing []string
		for _, p := range pages {
			if !renderer.Has(p) {
				missing = append(missing, p)
			}
		}
		if len(missing) > 0 {
			return CheckResult{
				Status:  "fail",
				Message: fmt.Sprintf("%d page templates missing", len(missing)),
				Details: map[string]any{"missing": missing},
			}
		}
		return CheckResult{Status: "pass", Message: "Page templates parsed"}
	}
}

// EmailCheck reports how contact messages are delivered. A disabled
// provider only logs messages, which is worth a warning.
func EmailCheck(cfg config.EmailConfig) Check {
	return func(context.Context) CheckResult {
		if !cfg.Enabled {
			return CheckResult{
				Status:  "warn",
				Message: "Email disabled; contact messages are only logged",
				Details: map[string]any{"remediation": "Set EMAIL_ENABLED=true and configure a provider"},
			}
		}
		return CheckResult{
			Status:  "pass",
			Message: "Email provider configured",
			Details: map[string]any{"provider": cfg.Provider},
		}
	}
}
