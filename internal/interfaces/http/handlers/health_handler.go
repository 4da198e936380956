package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Check probes one infrastructure dependency.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	version string
	startAt time.Time
	checks  []Check
}

// NewHealthHandler wires the probes.  Liveness never consults the checks;
// readiness fails when any check does.
func NewHealthHandler(version string, checks ...Check) *HealthHandler {
	return &HealthHandler{
		version: version,
		startAt: time.Now(),
		checks:  checks,
	}
}

// ComponentStatus is the probe result for one dependency.
type ComponentStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Liveness handles GET /healthz.
func (h *HealthHandler) Liveness(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{
		"status":  "alive",
		"version": h.version,
		"uptime":  time.Since(h.startAt).Truncate(time.Second).String(),
	})
}

// Readiness handles GET /readyz.  All checks run concurrently under a
// shared timeout; one unhealthy dependency flips the response to 503.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	components := h.runChecks(ctx)
	ready := true
	for _, cs := range components {
		if cs.Status != "healthy" {
			ready = false
			break
		}
	}

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}
	c.JSON(status, gin.H{"status": state, "components": components})
}

func (h *HealthHandler) runChecks(ctx context.Context) map[string]ComponentStatus {
	results := make(map[string]ComponentStatus, len(h.checks))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, check := range h.checks {
		wg.Add(1)
		go func(ck Check) {
			defer wg.Done()

			start := time.Now()
			err := ck.Probe(ctx)
			cs := ComponentStatus{
				Status:  "healthy",
				Latency: time.Since(start).Truncate(time.Microsecond).String(),
			}
			if err != nil {
				cs.Status = "unhealthy"
				cs.Error = err.Error()
			}

			mu.Lock()
			results[ck.Name] = cs
			mu.Unlock()
		}(check)
	}

	wg.Wait()
	return results
}
