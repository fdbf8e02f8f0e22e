// Package aggregate implements the analytics aggregation engine: cross-event
// brand and product rankings, demographic breakdowns, brand-by-segment
// cross-tabs, monthly brand time series and dashboard KPIs.
//
// Every operation recomputes from freshly fetched records; the package holds
// no state between calls. Raw counts are summed first and percentages rounded
// once at the end, so per-event rounding never compounds.
package aggregate

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/midiaz/brandscope/internal/domain/model"
	"github.com/midiaz/brandscope/pkg/metrics"
)

// SummaryFetcher reads the precomputed per-event summary rows.
type SummaryFetcher interface {
	ListBrandSummary(ctx context.Context, eventID string) ([]model.BrandSummaryRow, error)
	ListProductSummary(ctx context.Context, eventID string) ([]model.ProductSummaryRow, error)
}

// BrandShare is one entry of a cross-event brand ranking.
type BrandShare struct {
	Brand        string  `json:"brand"`
	Items        int     `json:"items"`
	SharePercent float64 `json:"share_percent"`
	PersonsCount int     `json:"persons_count"`
}

// ProductShare is one entry of a cross-event product distribution.
type ProductShare struct {
	ProductType string  `json:"product_type"`
	Items       int     `json:"items"`
	Percent     float64 `json:"percent"`
}

// BrandOptions narrows a brand aggregation. ProductType is accepted for
// interface symmetry with callers; brand summary rows are already brand-level
// so it does not filter this path (product filtering applies where raw items
// are consulted, see BrandBySegment).
type BrandOptions struct {
	ProductType string
	Brands      []string // allowlist of raw brand labels; empty keeps all
}

// Brands merges per-event brand summary rows across the event set into a
// global ranking. Shares are computed against the total items of all kept
// brands and sorted descending; among equal shares the order of first
// appearance is preserved. An empty event set yields an empty ranking.
func Brands(ctx context.Context, f SummaryFetcher, eventIDs []string, opts BrandOptions) ([]BrandShare, error) {
	defer observe("brands", time.Now())

	perEvent, err := mapEvents(ctx, eventIDs, f.ListBrandSummary)
	if err != nil {
		return nil, err
	}

	allowed := make(map[string]bool, len(opts.Brands))
	for _, b := range opts.Brands {
		allowed[b] = true
	}

	type totals struct {
		items   int
		persons int
	}
	acc := make(map[string]*totals)
	var order []string

	for _, rows := range perEvent {
		for _, row := range rows {
			if len(allowed) > 0 && !allowed[row.Brand] {
				continue
			}
			t := acc[row.Brand]
			if t == nil {
				t = &totals{}
				acc[row.Brand] = t
				order = append(order, row.Brand)
			}
			t.items += row.TotalItems
			t.persons += row.PersonsWithBrand
		}
	}

	totalItems := 0
	for _, t := range acc {
		totalItems += t.items
	}

	ranking := make([]BrandShare, 0, len(order))
	for _, brand := range order {
		t := acc[brand]
		ranking = append(ranking, BrandShare{
			Brand:        brand,
			Items:        t.items,
			SharePercent: sharePercent(t.items, totalItems),
			PersonsCount: t.persons,
		})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].SharePercent > ranking[j].SharePercent
	})
	return ranking, nil
}

// Products merges per-event product summary rows into a global distribution,
// with the same share and ordering rules as Brands.
func Products(ctx context.Context, f SummaryFetcher, eventIDs []string) ([]ProductShare, error) {
	defer observe("products", time.Now())

	perEvent, err := mapEvents(ctx, eventIDs, f.ListProductSummary)
	if err != nil {
		return nil, err
	}

	acc := make(map[string]int)
	var order []string
	total := 0

	for _, rows := range perEvent {
		for _, row := range rows {
			if _, seen := acc[row.ProductType]; !seen {
				order = append(order, row.ProductType)
			}
			acc[row.ProductType] += row.TotalItems
			total += row.TotalItems
		}
	}

	dist := make([]ProductShare, 0, len(order))
	for _, product := range order {
		dist = append(dist, ProductShare{
			ProductType: product,
			Items:       acc[product],
			Percent:     sharePercent(acc[product], total),
		})
	}
	sort.SliceStable(dist, func(i, j int) bool {
		return dist[i].Percent > dist[j].Percent
	})
	return dist, nil
}

// TotalItems sums the item counts of a brand ranking. It is the denominator
// already used for each entry's share.
func TotalItems(ranking []BrandShare) int {
	total := 0
	for _, b := range ranking {
		total += b.Items
	}
	return total
}

// sharePercent returns part/total as a percentage rounded to one decimal.
// A zero total yields 0 rather than a division failure.
func sharePercent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(part) / float64(total) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func observe(kind string, start time.Time) {
	metrics.ObserveAggregation(kind, float64(time.Since(start).Milliseconds()))
}
