package aggregate

import (
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/midiaz/brandscope/internal/domain/model"
)

// TimeSeriesEntry is one month of brand activity. Brand keys are flattened
// into the JSON object next to the date fields, matching the chart contract:
//
//	{"date":"Jan","year":2025,"month":1,"nike":100,"adidas":50}
//
// Brands with no activity in a month are simply absent, not zero-valued.
type TimeSeriesEntry struct {
	Date   string
	Year   int
	Month  int
	Brands map[string]int
}

// MarshalJSON flattens the brand map into top-level fields.
func (e TimeSeriesEntry) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(e.Brands)+3)
	obj["date"] = e.Date
	obj["year"] = e.Year
	obj["month"] = e.Month
	for brand, items := range e.Brands {
		obj[brand] = items
	}
	return json.Marshal(obj)
}

// NormalizeBrandKey lowercases a brand label and strips ampersands, so
// spelling variants like "Track&Field" and "track&field" share one series
// key ("trackfield"). Rankings and segment cross-tabs intentionally keep raw
// labels; only the time series collapses variants.
func NormalizeBrandKey(brand string) string {
	return strings.ReplaceAll(strings.ToLower(brand), "&", "")
}

// BrandTimeSeries buckets dated brand activity rows by calendar month and
// sums item counts per normalized brand key within each bucket. Entries come
// back ascending by (year, month); rows missing a date or brand are skipped
// silently. Callers restricting by a filtered event-id set must short-circuit
// to an empty series when the set is empty, before fetching rows.
func BrandTimeSeries(rows []model.BrandActivityRow) []TimeSeriesEntry {
	defer observe("brand_time_series", time.Now())

	type monthKey struct {
		year  int
		month time.Month
	}
	buckets := make(map[monthKey]map[string]int)

	for _, row := range rows {
		if row.Brand == "" || row.EventDate.IsZero() {
			continue
		}
		key := monthKey{year: row.EventDate.Year(), month: row.EventDate.Month()}
		bucket := buckets[key]
		if bucket == nil {
			bucket = make(map[string]int)
			buckets[key] = bucket
		}
		bucket[NormalizeBrandKey(row.Brand)] += row.TotalItems
	}

	keys := make([]monthKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	series := make([]TimeSeriesEntry, 0, len(keys))
	for _, key := range keys {
		series = append(series, TimeSeriesEntry{
			Date:   key.month.String()[:3],
			Year:   key.year,
			Month:  int(key.month),
			Brands: buckets[key],
		})
	}
	return series
}
