package store

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/midiaz/brandscope/internal/domain/filter"
)

// encodePredicate translates a resolved predicate into the store's query
// operators: eq/in for exact fields, ilike (or an or= group) for location
// substring matches, gte/lte for the inclusive date range.
func encodePredicate(pred filter.Predicate) url.Values {
	q := url.Values{}

	addExact(q, "sport", pred.Sports)
	addExact(q, "event_type", pred.EventTypes)

	switch len(pred.Locations) {
	case 0:
	case 1:
		q.Set("event_location", "ilike."+pattern(pred.Locations[0]))
	default:
		// OR of per-value substring matches, not one joined pattern.
		parts := make([]string, 0, len(pred.Locations))
		for _, loc := range pred.Locations {
			parts = append(parts, "event_location.ilike."+pattern(loc))
		}
		q.Set("or", "("+strings.Join(parts, ",")+")")
	}

	if !pred.DateFrom.IsZero() {
		q.Add("event_date", "gte."+pred.DateFrom.String())
	}
	if !pred.DateTo.IsZero() {
		q.Add("event_date", "lte."+pred.DateTo.String())
	}
	return q
}

func addExact(q url.Values, column string, values []string) {
	switch len(values) {
	case 0:
	case 1:
		q.Set(column, "eq."+values[0])
	default:
		q.Set(column, "in.("+joinQuoted(values)+")")
	}
}

func joinQuoted(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, `"`+v+`"`)
	}
	return strings.Join(quoted, ",")
}

func pattern(value string) string {
	return "*" + value + "*"
}

func addPage(q url.Values, limit, offset int) {
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
}
