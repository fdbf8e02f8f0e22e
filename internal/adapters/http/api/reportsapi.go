// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/midiaz/brandscope/internal/reports"
)

// ReportsHandler handles narrative report requests.
type ReportsHandler struct {
	deps Dependencies
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(deps Dependencies) *ReportsHandler {
	return &ReportsHandler{deps: deps}
}

// HandleGenerate handles POST /api/reports/generate requests.
func (h *ReportsHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	const op = "api.generate_report"

	var req reports.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	report, err := h.deps.GenerateReport(r.Context(), req)
	if err != nil {
		respondError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleStatus handles GET /api/reports/status requests.
func (h *ReportsHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.ReportsAvailability())
}
