// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// MetricsHandler handles cross-event aggregation requests.
type MetricsHandler struct {
	deps Dependencies
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(deps Dependencies) *MetricsHandler {
	return &MetricsHandler{deps: deps}
}

// HandleDashboard handles GET /api/metrics/dashboard requests.
func (h *MetricsHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.dashboard"

	kpis, err := h.deps.DashboardMetrics(r.Context(), criteriaFromQuery(r))
	if err != nil {
		respondError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, kpis)
}

// HandleBrandTimeSeries handles GET /api/metrics/brands/timeseries requests.
func (h *MetricsHandler) HandleBrandTimeSeries(w http.ResponseWriter, r *http.Request) {
	const op = "api.brand_timeseries"

	series, err := h.deps.BrandTimeSeries(r.Context(), criteriaFromQuery(r))
	if err != nil {
		respondError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}
