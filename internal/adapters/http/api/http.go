// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/midiaz/brandscope/internal/adapters/store"
	service "github.com/midiaz/brandscope/internal/app"
	"github.com/midiaz/brandscope/internal/domain/aggregate"
	"github.com/midiaz/brandscope/internal/domain/filter"
	"github.com/midiaz/brandscope/internal/domain/model"
	"github.com/midiaz/brandscope/internal/reports"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Event reads.
	ListEvents(ctx context.Context, c filter.Criteria, limit, offset int) (EventPage, error)
	GetEvent(ctx context.Context, id string) (model.Event, error)
	EventBrands(ctx context.Context, id string) ([]aggregate.BrandShare, error)
	EventProducts(ctx context.Context, id string) ([]aggregate.ProductShare, error)

	// Cross-event aggregations.
	DashboardMetrics(ctx context.Context, c filter.Criteria) (aggregate.KPIs, error)
	BrandTimeSeries(ctx context.Context, c filter.Criteria) ([]aggregate.TimeSeriesEntry, error)

	// Narrative reports.
	GenerateReport(ctx context.Context, req reports.Request) (*reports.Report, error)
	ReportsAvailability() ReportsStatus
}

// EventPage mirrors the read shape returned by event listings.
type EventPage = service.EventPage

// ReportsStatus mirrors the report availability shape.
type ReportsStatus = service.ReportsStatus

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	eventsHandler  *EventsHandler
	metricsHandler *MetricsHandler
	reportsHandler *ReportsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		eventsHandler:  NewEventsHandler(deps),
		metricsHandler: NewMetricsHandler(deps),
		reportsHandler: NewReportsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleMetrics, "healthz"))

	mux.HandleFunc("GET /api/events", MetricsMiddleware(s.eventsHandler.HandleListEvents, "events"))
	mux.HandleFunc("GET /api/events/{id}", MetricsMiddleware(s.eventsHandler.HandleGetEvent, "event"))
	mux.HandleFunc("GET /api/events/{id}/brands", MetricsMiddleware(s.eventsHandler.HandleEventBrands, "event_brands"))
	mux.HandleFunc("GET /api/events/{id}/products", MetricsMiddleware(s.eventsHandler.HandleEventProducts, "event_products"))

	mux.HandleFunc("GET /api/metrics/dashboard", MetricsMiddleware(s.metricsHandler.HandleDashboard, "dashboard"))
	mux.HandleFunc("GET /api/metrics/brands/timeseries", MetricsMiddleware(s.metricsHandler.HandleBrandTimeSeries, "brand_timeseries"))

	mux.HandleFunc("POST /api/reports/generate", MetricsMiddleware(s.reportsHandler.HandleGenerate, "report_generate"))
	mux.HandleFunc("GET /api/reports/status", MetricsMiddleware(s.reportsHandler.HandleStatus, "report_status"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// respondError translates domain errors to HTTP responses: unknown entities
// map to 404, rejected input to 400, disabled report generation to 503 and
// everything else to 500.
func respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, reports.ErrInvalidRequest), errors.Is(err, model.ErrInvalidDate), errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
	case errors.Is(err, service.ErrReportsUnavailable):
		writeError(w, http.StatusServiceUnavailable, "reports_unavailable", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// criteriaFromQuery maps the shared filter query parameters.
func criteriaFromQuery(r *http.Request) filter.Criteria {
	q := r.URL.Query()
	return filter.Criteria{
		Sport:     q.Get("sport"),
		EventType: q.Get("event_type"),
		Location:  q.Get("location"),
		DateFrom:  q.Get("date_from"),
		DateTo:    q.Get("date_to"),
	}
}
