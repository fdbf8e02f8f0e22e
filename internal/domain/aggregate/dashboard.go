package aggregate

import (
	"context"
	"time"

	"github.com/midiaz/brandscope/internal/domain/filter"
	"github.com/midiaz/brandscope/internal/domain/model"
)

// DashboardFetcher bundles the reads the KPI aggregation needs.
type DashboardFetcher interface {
	ListEvents(ctx context.Context, pred filter.Predicate, limit, offset int) ([]model.Event, error)
	CountEvents(ctx context.Context, pred filter.Predicate) (int, error)
	CountPersons(ctx context.Context, eventID string) (int, error)
	ListItems(ctx context.Context, eventID string, limit int) ([]model.Item, error)
	ListBrandActivity(ctx context.Context, eventIDs []string) ([]model.BrandActivityRow, error)
}

// KPIs are the aggregate dashboard counters. No share math here, only counts.
type KPIs struct {
	TotalEvents             int `json:"total_events"`
	TotalPhotosAnalyzed     int `json:"total_photos_analyzed"`
	TotalAthletesIdentified int `json:"total_athletes_identified"`
	TotalBrandsTracked      int `json:"total_brands_tracked"`
}

// Dashboard computes the KPI tile values for the events matching criteria.
// When filters are supplied but match no event, it short-circuits to all-zero
// KPIs without consulting person or item data. The distinct-brand count uses
// raw items on the filtered path; unfiltered it reads the cheaper brand
// summary projection, with the same semantic result. Distinct brands are
// counted on raw labels, not normalized keys.
func Dashboard(ctx context.Context, f DashboardFetcher, criteria filter.Criteria, eventLimit, itemLimit int) (KPIs, error) {
	defer observe("dashboard", time.Now())

	pred, err := filter.Resolve(criteria)
	if err != nil {
		return KPIs{}, err
	}

	events, err := f.ListEvents(ctx, pred, eventLimit, 0)
	if err != nil {
		return KPIs{}, err
	}
	if !criteria.IsZero() && len(events) == 0 {
		return KPIs{}, nil
	}

	totalEvents, err := f.CountEvents(ctx, pred)
	if err != nil {
		return KPIs{}, err
	}

	totalPhotos := 0
	eventIDs := make([]string, 0, len(events))
	for _, e := range events {
		totalPhotos += e.TotalPhotos
		eventIDs = append(eventIDs, e.ID)
	}

	personCounts, err := mapEvents(ctx, eventIDs, f.CountPersons)
	if err != nil {
		return KPIs{}, err
	}
	totalAthletes := 0
	for _, n := range personCounts {
		totalAthletes += n
	}

	brands := make(map[string]struct{})
	if criteria.IsZero() {
		rows, err := f.ListBrandActivity(ctx, nil)
		if err != nil {
			return KPIs{}, err
		}
		for _, row := range rows {
			if row.Brand != "" {
				brands[row.Brand] = struct{}{}
			}
		}
	} else {
		perEvent, err := mapEvents(ctx, eventIDs, func(ctx context.Context, id string) ([]model.Item, error) {
			return f.ListItems(ctx, id, itemLimit)
		})
		if err != nil {
			return KPIs{}, err
		}
		for _, items := range perEvent {
			for _, item := range items {
				if item.Brand != "" {
					brands[item.Brand] = struct{}{}
				}
			}
		}
	}

	return KPIs{
		TotalEvents:             totalEvents,
		TotalPhotosAnalyzed:     totalPhotos,
		TotalAthletesIdentified: totalAthletes,
		TotalBrandsTracked:      len(brands),
	}, nil
}
