package aggregate

import (
	"context"
	"sort"
	"time"

	"github.com/midiaz/brandscope/internal/domain/model"
)

// PeopleFetcher reads raw person and item records, event-scoped.
type PeopleFetcher interface {
	ListPersons(ctx context.Context, eventID string, limit int) ([]model.Person, error)
	ListItems(ctx context.Context, eventID string, limit int) ([]model.Item, error)
}

// GenderDistribution carries gender counts and percentages. Only persons
// whose gender is exactly "M" or "F" enter the counts and the denominator.
type GenderDistribution struct {
	Male          int     `json:"male"`
	Female        int     `json:"female"`
	MalePercent   float64 `json:"male_percent"`
	FemalePercent float64 `json:"female_percent"`
}

// AgeBucket is one fixed age range with its count and percentage.
type AgeBucket struct {
	AgeRange string  `json:"age_range"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

// Demography is the demographic breakdown of an event set.
//
// The gender and age denominators are independent: gender percentages divide
// by the M/F population, age percentages by the known-age population. A
// person with only one of the two attributes known still counts toward that
// attribute's percentages.
type Demography struct {
	GenderDistribution GenderDistribution `json:"gender_distribution"`
	AgeDistribution    []AgeBucket        `json:"age_distribution"`
	AvgAge             float64            `json:"avg_age"`
}

// ageRanges are the fixed buckets, in emission order. The first bucket keeps
// its historical "18-25" label although it collects every known age up to 25.
var ageRanges = [4]string{"18-25", "26-35", "36-45", "46+"}

func ageBucketIndex(age int) int {
	switch {
	case age <= 25:
		return 0
	case age <= 35:
		return 1
	case age <= 45:
		return 2
	default:
		return 3
	}
}

// Demographics classifies every person of the event set into gender and age
// buckets and returns counts, percentages and the mean known age. All four
// age buckets are always emitted, zero-valued when empty.
func Demographics(ctx context.Context, f PeopleFetcher, eventIDs []string, personLimit int) (Demography, error) {
	defer observe("demographics", time.Now())

	perEvent, err := mapEvents(ctx, eventIDs, func(ctx context.Context, id string) ([]model.Person, error) {
		return f.ListPersons(ctx, id, personLimit)
	})
	if err != nil {
		return Demography{}, err
	}

	var male, female int
	var ageSum, ageCount int
	var buckets [len(ageRanges)]int

	for _, persons := range perEvent {
		for _, p := range persons {
			switch p.Gender {
			case "M":
				male++
			case "F":
				female++
			}
			if p.Age != 0 {
				ageSum += p.Age
				ageCount++
				buckets[ageBucketIndex(p.Age)]++
			}
		}
	}

	genderTotal := male + female
	dist := make([]AgeBucket, 0, len(ageRanges))
	for i, name := range ageRanges {
		dist = append(dist, AgeBucket{
			AgeRange: name,
			Count:    buckets[i],
			Percent:  sharePercent(buckets[i], ageCount),
		})
	}

	avgAge := 0.0
	if ageCount > 0 {
		avgAge = round1(float64(ageSum) / float64(ageCount))
	}

	return Demography{
		GenderDistribution: GenderDistribution{
			Male:          male,
			Female:        female,
			MalePercent:   sharePercent(male, genderTotal),
			FemalePercent: sharePercent(female, genderTotal),
		},
		AgeDistribution: dist,
		AvgAge:          avgAge,
	}, nil
}

// SegmentShare is the brand preference of one demographic segment.
type SegmentShare struct {
	Segment string       `json:"segment"`
	Brands  []BrandShare `json:"brands"`
}

// The four fixed segments, in emission order.
var segmentNames = [4]string{"Men 18-35", "Men 36+", "Women 18-35", "Women 36+"}

const topBrandsPerSegment = 5

// segmentIndex classifies a person. Persons with unknown gender belong to no
// segment; an unknown age falls into the younger range of its gender.
func segmentIndex(gender string, age int) (int, bool) {
	switch gender {
	case "M":
		if age <= 35 {
			return 0, true
		}
		return 1, true
	case "F":
		if age <= 35 {
			return 2, true
		}
		return 3, true
	default:
		return 0, false
	}
}

// BrandBySegment joins each event's items to their owning person's
// demographics and counts items per brand within the four fixed segments.
// Items without a person id or brand are skipped, as are items not matching
// the optional productType filter. Each non-empty segment keeps its top five
// brands with shares relative to that segment's own total; segments with no
// items are omitted entirely.
func BrandBySegment(ctx context.Context, f PeopleFetcher, eventIDs []string, productType string, personLimit, itemLimit int) ([]SegmentShare, error) {
	defer observe("brand_by_segment", time.Now())

	type eventRecords struct {
		persons []model.Person
		items   []model.Item
	}
	perEvent, err := mapEvents(ctx, eventIDs, func(ctx context.Context, id string) (eventRecords, error) {
		persons, err := f.ListPersons(ctx, id, personLimit)
		if err != nil {
			return eventRecords{}, err
		}
		items, err := f.ListItems(ctx, id, itemLimit)
		if err != nil {
			return eventRecords{}, err
		}
		return eventRecords{persons: persons, items: items}, nil
	})
	if err != nil {
		return nil, err
	}

	var counts [len(segmentNames)]map[string]int
	var orders [len(segmentNames)][]string
	for i := range counts {
		counts[i] = make(map[string]int)
	}

	for _, records := range perEvent {
		personByID := make(map[string]model.Person, len(records.persons))
		for _, p := range records.persons {
			personByID[p.ID] = p
		}

		for _, item := range records.items {
			if item.PersonID == "" || item.Brand == "" {
				continue
			}
			if productType != "" && item.ProductType != productType {
				continue
			}
			person := personByID[item.PersonID]
			seg, ok := segmentIndex(person.Gender, person.Age)
			if !ok {
				continue
			}
			if _, seen := counts[seg][item.Brand]; !seen {
				orders[seg] = append(orders[seg], item.Brand)
			}
			counts[seg][item.Brand]++
		}
	}

	result := make([]SegmentShare, 0, len(segmentNames))
	for seg, name := range segmentNames {
		total := 0
		for _, n := range counts[seg] {
			total += n
		}
		if total == 0 {
			continue
		}

		brands := orders[seg]
		sort.SliceStable(brands, func(i, j int) bool {
			return counts[seg][brands[i]] > counts[seg][brands[j]]
		})
		if len(brands) > topBrandsPerSegment {
			brands = brands[:topBrandsPerSegment]
		}

		shares := make([]BrandShare, 0, len(brands))
		for _, brand := range brands {
			shares = append(shares, BrandShare{
				Brand:        brand,
				Items:        counts[seg][brand],
				SharePercent: sharePercent(counts[seg][brand], total),
			})
		}
		result = append(result, SegmentShare{Segment: name, Brands: shares})
	}
	return result, nil
}
