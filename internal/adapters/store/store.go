// Package store adapts the remote analytics store behind a narrow, read-only
// fetch interface. The store is reachable only through a constrained
// table-query surface (equality, inclusion, pattern and range filters with
// ordering and paginated/counted reads); no SQL joins are available, which is
// why person/item reads are event-scoped.
package store

import (
	"context"
	"errors"

	"github.com/midiaz/brandscope/internal/domain/filter"
	"github.com/midiaz/brandscope/internal/domain/model"
)

// Sentinel errors for store reads.
var (
	// ErrNotFound reports that a requested single entity does not exist.
	// It is distinct from an empty collection result.
	ErrNotFound = errors.New("event not found")

	// ErrUpstream reports a failed request to the remote store. It is
	// propagated to the caller, never retried here.
	ErrUpstream = errors.New("store request failed")
)

// Fetcher provides the read operations the aggregation engine depends on.
// All reads are eventually-consistent snapshots.
type Fetcher interface {
	// ListEvents returns events matching pred, newest date first.
	ListEvents(ctx context.Context, pred filter.Predicate, limit, offset int) ([]model.Event, error)

	// CountEvents returns the number of events matching pred.
	CountEvents(ctx context.Context, pred filter.Predicate) (int, error)

	// GetEvent returns one event by id, or ErrNotFound.
	GetEvent(ctx context.Context, id string) (model.Event, error)

	// ListPersons returns the persons of one event, up to limit.
	ListPersons(ctx context.Context, eventID string, limit int) ([]model.Person, error)

	// CountPersons returns the number of persons recorded for one event.
	CountPersons(ctx context.Context, eventID string) (int, error)

	// ListItems returns the detected items of one event, up to limit.
	ListItems(ctx context.Context, eventID string, limit int) ([]model.Item, error)

	// ListBrandSummary returns the precomputed brand aggregates of one
	// event, ordered by per-event share descending.
	ListBrandSummary(ctx context.Context, eventID string) ([]model.BrandSummaryRow, error)

	// ListProductSummary returns the precomputed product-type aggregates of
	// one event, ordered by per-event share descending.
	ListProductSummary(ctx context.Context, eventID string) ([]model.ProductSummaryRow, error)

	// ListBrandActivity returns dated brand totals ordered by event date
	// ascending. A nil eventIDs slice means all events; an empty non-nil
	// slice returns no rows.
	ListBrandActivity(ctx context.Context, eventIDs []string) ([]model.BrandActivityRow, error)
}
