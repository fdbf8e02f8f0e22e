// Package filter resolves user-supplied event criteria into a canonical
// predicate description consumable by the record fetcher.
//
// Multi-value semantics: sport, event type and location accept comma-separated
// lists. Values within one field combine with OR; distinct fields combine
// with AND. Location values match as case-insensitive substrings.
package filter

import (
	"context"
	"fmt"
	"strings"

	"github.com/midiaz/brandscope/internal/domain/model"
)

// Criteria carries the raw, possibly comma-separated filter input as it
// arrives from a caller. All fields are optional.
type Criteria struct {
	Sport     string
	EventType string
	Location  string
	DateFrom  string
	DateTo    string
}

// IsZero reports whether no filter field is set.
func (c Criteria) IsZero() bool {
	return c.Sport == "" && c.EventType == "" && c.Location == "" &&
		c.DateFrom == "" && c.DateTo == ""
}

// Predicate is the normalized filter description. Empty slices mean "any";
// zero dates leave that bound of the range open. Date bounds are inclusive.
type Predicate struct {
	Sports     []string
	EventTypes []string
	Locations  []string // substring patterns, OR-combined
	DateFrom   model.Date
	DateTo     model.Date
}

// IsZero reports whether the predicate restricts nothing.
func (p Predicate) IsZero() bool {
	return len(p.Sports) == 0 && len(p.EventTypes) == 0 && len(p.Locations) == 0 &&
		p.DateFrom.IsZero() && p.DateTo.IsZero()
}

// Resolve normalizes criteria into a predicate. Malformed dates are rejected
// here, before any fetch is attempted.
func Resolve(c Criteria) (Predicate, error) {
	p := Predicate{
		Sports:     splitList(c.Sport),
		EventTypes: splitList(c.EventType),
		Locations:  splitList(c.Location),
	}

	var err error
	if c.DateFrom != "" {
		if p.DateFrom, err = model.ParseDate(c.DateFrom); err != nil {
			return Predicate{}, fmt.Errorf("date_from: %w", err)
		}
	}
	if c.DateTo != "" {
		if p.DateTo, err = model.ParseDate(c.DateTo); err != nil {
			return Predicate{}, fmt.Errorf("date_to: %w", err)
		}
	}
	return p, nil
}

// splitList splits a comma-separated value into trimmed entries, dropping
// empties so trailing commas are harmless.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// EventLister is the slice of the record fetcher needed to resolve event ids.
type EventLister interface {
	ListEvents(ctx context.Context, pred Predicate, limit, offset int) ([]model.Event, error)
}

// ResolveEventIDs executes criteria against the event collection and returns
// just the matching identifiers. Callers that restrict person/item reads by
// event must treat an empty result as "aggregate over nothing", never as an
// unfiltered query.
func ResolveEventIDs(ctx context.Context, lister EventLister, c Criteria, limit int) ([]string, error) {
	pred, err := Resolve(c)
	if err != nil {
		return nil, err
	}
	events, err := lister.ListEvents(ctx, pred, limit, 0)
	if err != nil {
		return nil, fmt.Errorf("resolve event ids: %w", err)
	}
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids, nil
}
