package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// HealthCheck reports the state of storage and Redis
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{} "All dependencies healthy"
// @Failure 503 {object} map[string]interface{} "At least one dependency is unhealthy"
// @Router /health [get]
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   h.version,
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	code := http.StatusOK
	for _, name := range names {
		if err := h.checks[name].Health(ctx); err != nil {
			status[name+"_status"] = "unhealthy"
			status[name+"_error"] = err.Error()
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		status[name+"_status"] = "healthy"
	}

	h.sendJSONResponse(w, code, status)
}
