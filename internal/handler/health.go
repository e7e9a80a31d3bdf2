package handler

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Check probes one dependency. A nil Probe is reported as disabled.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	checks  []Check
	timeout time.Duration
	now     func() time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 5 * time.Second, now: time.Now}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "SkillBridge API is running",
		"timestamp": h.now().UTC(),
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	results := make([]string, len(h.checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range h.checks {
		if c.Probe == nil {
			results[i] = "disabled"
			continue
		}
		g.Go(func() error {
			if err := c.Probe(gctx); err != nil {
				results[i] = "error: " + err.Error()
				return err
			}
			results[i] = "ok"
			return nil
		})
	}
	err := g.Wait()

	checks := make(map[string]string, len(h.checks))
	for i, c := range h.checks {
		checks[c.Name] = results[i]
	}
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready", "checks": checks})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "checks": checks})
}
