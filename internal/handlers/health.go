package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"
)

const healthCheckTimeout = 5 * time.Second

// CheckFunc reports whether a dependency is reachable
type CheckFunc func(ctx context.Context) error

// HealthChecker handles health check requests
type HealthChecker struct {
	checks map[string]CheckFunc
	logger *zap.Logger
}

// NewHealthChecker creates a health checker without dependency checks
func NewHealthChecker(logger *zap.Logger) *HealthChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthChecker{checks: make(map[string]CheckFunc), logger: logger}
}

// AddCheck registers a dependency probed in extended mode. Nil checks are ignored.
func (h *HealthChecker) AddCheck(name string, check CheckFunc) *HealthChecker {
	if check != nil {
		h.checks[name] = check
	}
	return h
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles /healthz. With ?mode=extended every registered dependency is
// probed and any failure turns the response into a 503.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK

	if r.URL.Query().Get("mode") == "extended" {
		response.Checks = make(map[string]string, len(h.checks))
		for _, name := range h.names() {
			if err := h.probe(r.Context(), h.checks[name]); err != nil {
				h.logger.Warn("health_check_failed", zap.String("check", name), zap.Error(err))
				response.Checks[name] = "unhealthy"
				response.Status = "unhealthy"
				status = http.StatusServiceUnavailable
				continue
			}
			response.Checks[name] = "healthy"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed_to_encode_health_response", zap.Error(err))
	}
}

func (h *HealthChecker) probe(ctx context.Context, check CheckFunc) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return check(ctx)
}

func (h *HealthChecker) names() []string {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Version is reported by /version and set by the binaries at link time
var Version = "dev"

// VersionInfo handles /version
func VersionInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"version": Version})
}
