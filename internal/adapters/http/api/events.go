// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// EventsHandler handles event listing and single-event requests.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandleListEvents handles GET /api/events requests. Filter parameters accept
// comma-separated multi-values; limit and offset paginate the result.
func (h *EventsHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_events"

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	page, err := h.deps.ListEvents(r.Context(), criteriaFromQuery(r), limit, offset)
	if err != nil {
		respondError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleGetEvent handles GET /api/events/{id} requests.
func (h *EventsHandler) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_event"

	id, ok := eventID(w, r, op)
	if !ok {
		return
	}
	event, err := h.deps.GetEvent(r.Context(), id)
	if err != nil {
		respondError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// HandleEventBrands handles GET /api/events/{id}/brands requests.
func (h *EventsHandler) HandleEventBrands(w http.ResponseWriter, r *http.Request) {
	const op = "api.event_brands"

	id, ok := eventID(w, r, op)
	if !ok {
		return
	}
	ranking, err := h.deps.EventBrands(r.Context(), id)
	if err != nil {
		respondError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

// HandleEventProducts handles GET /api/events/{id}/products requests.
func (h *EventsHandler) HandleEventProducts(w http.ResponseWriter, r *http.Request) {
	const op = "api.event_products"

	id, ok := eventID(w, r, op)
	if !ok {
		return
	}
	products, err := h.deps.EventProducts(r.Context(), id)
	if err != nil {
		respondError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// eventID extracts and validates the {id} path segment. Event ids are UUIDs;
// anything else is rejected before touching the store.
func eventID(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_event_id", NewKind(op, ErrBadRequest))
		return "", false
	}
	return id, true
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
