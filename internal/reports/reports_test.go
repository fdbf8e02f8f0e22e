package reports_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/midiaz/brandscope/internal/adapters/llm"
	"github.com/midiaz/brandscope/internal/adapters/store"
	"github.com/midiaz/brandscope/internal/domain/filter"
	"github.com/midiaz/brandscope/internal/domain/model"
	"github.com/midiaz/brandscope/internal/reports"
	"github.com/smartystreets/goconvey/convey"
)

// stubFetcher serves canned records for report assembly.
type stubFetcher struct {
	events      []model.Event
	eventByID   map[string]model.Event
	brandRows   map[string][]model.BrandSummaryRow
	productRows map[string][]model.ProductSummaryRow
	personsByID map[string][]model.Person
	itemsByID   map[string][]model.Item
}

func (s *stubFetcher) ListEvents(ctx context.Context, pred filter.Predicate, limit, offset int) ([]model.Event, error) {
	return s.events, nil
}

func (s *stubFetcher) GetEvent(ctx context.Context, id string) (model.Event, error) {
	e, ok := s.eventByID[id]
	if !ok {
		return model.Event{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return e, nil
}

func (s *stubFetcher) ListBrandSummary(ctx context.Context, eventID string) ([]model.BrandSummaryRow, error) {
	return s.brandRows[eventID], nil
}

func (s *stubFetcher) ListProductSummary(ctx context.Context, eventID string) ([]model.ProductSummaryRow, error) {
	return s.productRows[eventID], nil
}

func (s *stubFetcher) ListPersons(ctx context.Context, eventID string, limit int) ([]model.Person, error) {
	return s.personsByID[eventID], nil
}

func (s *stubFetcher) ListItems(ctx context.Context, eventID string, limit int) ([]model.Item, error) {
	return s.itemsByID[eventID], nil
}

// stubGenerator records the prompts it was handed.
type stubGenerator struct {
	system string
	user   string
	fail   error
}

func (g *stubGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (llm.Completion, error) {
	if g.fail != nil {
		return llm.Completion{}, g.fail
	}
	g.system = systemPrompt
	g.user = userPrompt
	return llm.Completion{
		Content:          "Narrative analysis.",
		TokensUsed:       321,
		Model:            "gpt-4o-mini",
		GenerationTimeMS: 7,
	}, nil
}

func rawFilters(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func newFixture() (*stubFetcher, *stubGenerator, *reports.Service, error) {
	fetcher := &stubFetcher{
		events: []model.Event{
			{ID: "e1", Name: "City Marathon", TotalPhotos: 120, TotalAthletesEst: 800},
			{ID: "e2", Name: "Trail Cup", TotalPhotos: 60, TotalAthletesEst: 300},
		},
		eventByID: map[string]model.Event{
			"e1": {
				ID: "e1", Name: "City Marathon", EventType: "marathon", Sport: "running",
				Date: model.NewDate(2025, 3, 15), Location: "Lisboa",
				TotalPhotos: 120, TotalAthletesEst: 800,
			},
		},
		brandRows: map[string][]model.BrandSummaryRow{
			"e1": {
				{EventID: "e1", Brand: "Nike", TotalItems: 100, PersonsWithBrand: 80},
				{EventID: "e1", Brand: "Adidas", TotalItems: 20, PersonsWithBrand: 15},
			},
			"e2": {
				{EventID: "e2", Brand: "Nike", TotalItems: 30, PersonsWithBrand: 25},
				{EventID: "e2", Brand: "Adidas", TotalItems: 30, PersonsWithBrand: 20},
			},
		},
		productRows: map[string][]model.ProductSummaryRow{
			"e1": {{EventID: "e1", ProductType: "shoe", TotalItems: 90}},
			"e2": {{EventID: "e2", ProductType: "shirt", TotalItems: 90}},
		},
		personsByID: map[string][]model.Person{
			"e1": {
				{ID: "p1", EventID: "e1", Gender: "M", Age: 30},
				{ID: "p2", EventID: "e1", Gender: "F", Age: 42},
			},
		},
		itemsByID: map[string][]model.Item{
			"e1": {
				{ID: "i1", EventID: "e1", PersonID: "p1", Brand: "Nike", ProductType: "shoe"},
				{ID: "i2", EventID: "e1", PersonID: "p2", Brand: "Adidas", ProductType: "shoe"},
			},
		},
	}
	generator := &stubGenerator{}
	prompts, err := reports.LoadPrompts(promptsPath)
	if err != nil {
		return nil, nil, nil, err
	}
	return fetcher, generator, reports.New(fetcher, generator, prompts), nil
}

func TestGenerateMarketShare(t *testing.T) {
	convey.Convey("Given a report service", t, func() {
		_, generator, svc, err := newFixture()
		convey.So(err, convey.ShouldBeNil)
		ctx := context.Background()

		convey.Convey("When generating a market share report", func() {
			report, err := svc.Generate(ctx, reports.Request{
				Type: reports.TypeMarketShare,
				Filters: rawFilters(reports.MarketShareFilters{
					DateFrom: "2025-01-01",
					DateTo:   "2025-06-30",
					Sport:    "running",
				}),
			})

			convey.Convey("Then the report carries the narrative and its metadata", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(report.Type, convey.ShouldEqual, reports.TypeMarketShare)
				convey.So(report.Content, convey.ShouldEqual, "Narrative analysis.")
				convey.So(report.Title, convey.ShouldContainSubstring, "Market Share Report")
				convey.So(report.Title, convey.ShouldContainSubstring, "Jan/2025 to Jun/2025")
				convey.So(report.Metadata.TotalEvents, convey.ShouldEqual, 2)
				convey.So(report.Metadata.TotalAthletes, convey.ShouldEqual, 1100)
				convey.So(report.Metadata.TotalItems, convey.ShouldEqual, 180)
				convey.So(report.Metadata.TokensUsed, convey.ShouldEqual, 321)
				convey.So(report.FiltersApplied["sport"], convey.ShouldEqual, "running")
			})

			convey.Convey("And the user prompt embeds the merged aggregates", func() {
				convey.So(generator.user, convey.ShouldContainSubstring, "01/01/2025 to 30/06/2025")
				convey.So(generator.user, convey.ShouldContainSubstring, "1. Nike: 72.2% (130 items, 105 persons)")
				convey.So(generator.user, convey.ShouldContainSubstring, "2. Adidas: 27.8%")
				convey.So(generator.user, convey.ShouldContainSubstring, "Sport: running")
				convey.So(generator.system, convey.ShouldContainSubstring, "analyst")
			})
		})

		convey.Convey("When the period is missing", func() {
			_, err := svc.Generate(ctx, reports.Request{
				Type:    reports.TypeMarketShare,
				Filters: rawFilters(reports.MarketShareFilters{DateFrom: "2025-01-01"}),
			})

			convey.Convey("Then the request is rejected before any generation", func() {
				convey.So(errors.Is(err, reports.ErrInvalidRequest), convey.ShouldBeTrue)
				convey.So(generator.user, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the generator fails", func() {
			generator.fail = errors.New("completion api down")
			_, err := svc.Generate(ctx, reports.Request{
				Type: reports.TypeMarketShare,
				Filters: rawFilters(reports.MarketShareFilters{
					DateFrom: "2025-01-01", DateTo: "2025-06-30",
				}),
			})

			convey.Convey("Then the failure propagates without a partial report", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "completion api down")
			})
		})
	})
}

func TestGenerateAudienceSegmentation(t *testing.T) {
	convey.Convey("Given a report service", t, func() {
		_, generator, svc, err := newFixture()
		convey.So(err, convey.ShouldBeNil)
		ctx := context.Background()

		convey.Convey("When generating an audience segmentation report", func() {
			report, err := svc.Generate(ctx, reports.Request{
				Type: reports.TypeAudienceSegmentation,
				Filters: rawFilters(reports.AudienceFilters{
					DateFrom: "2025-01-01",
					DateTo:   "2025-06-30",
				}),
			})

			convey.Convey("Then demographics and segment preferences enter the prompt", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(report.Title, convey.ShouldContainSubstring, "Audience Segmentation")
				convey.So(generator.user, convey.ShouldContainSubstring, "Male: 50%")
				convey.So(generator.user, convey.ShouldContainSubstring, "Average age: 36 years")
				convey.So(generator.user, convey.ShouldContainSubstring, "**Men 18-35**: Nike (100%)")
				convey.So(generator.user, convey.ShouldContainSubstring, "**Women 36+**: Adidas (100%)")
			})
		})
	})
}

func TestGenerateEventMetrics(t *testing.T) {
	convey.Convey("Given a report service", t, func() {
		_, generator, svc, err := newFixture()
		convey.So(err, convey.ShouldBeNil)
		ctx := context.Background()

		convey.Convey("When generating an event report with a focus", func() {
			report, err := svc.Generate(ctx, reports.Request{
				Type:    reports.TypeEventMetrics,
				Filters: rawFilters(reports.EventMetricsFilters{EventID: "e1", Focus: "brands"}),
			})

			convey.Convey("Then the report is scoped to that single event", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(report.Title, convey.ShouldEqual, "Event Metrics - City Marathon")
				convey.So(report.Metadata.TotalEvents, convey.ShouldEqual, 1)
				convey.So(report.Metadata.TotalAthletes, convey.ShouldEqual, 800)
				convey.So(report.FiltersApplied["focus"], convey.ShouldEqual, "brands")
				convey.So(generator.user, convey.ShouldContainSubstring, "City Marathon")
				convey.So(generator.user, convey.ShouldContainSubstring, "brand ranking")
			})
		})

		convey.Convey("When the focus is omitted", func() {
			report, err := svc.Generate(ctx, reports.Request{
				Type:    reports.TypeEventMetrics,
				Filters: rawFilters(reports.EventMetricsFilters{EventID: "e1"}),
			})

			convey.Convey("Then it defaults to the general focus", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(report.FiltersApplied["focus"], convey.ShouldEqual, "general")
			})
		})

		convey.Convey("When the event does not exist", func() {
			_, err := svc.Generate(ctx, reports.Request{
				Type:    reports.TypeEventMetrics,
				Filters: rawFilters(reports.EventMetricsFilters{EventID: "ghost"}),
			})

			convey.Convey("Then the not-found condition propagates", func() {
				convey.So(errors.Is(err, store.ErrNotFound), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the event id is missing", func() {
			_, err := svc.Generate(ctx, reports.Request{
				Type:    reports.TypeEventMetrics,
				Filters: rawFilters(reports.EventMetricsFilters{}),
			})

			convey.Convey("Then the request is rejected", func() {
				convey.So(errors.Is(err, reports.ErrInvalidRequest), convey.ShouldBeTrue)
			})
		})
	})
}

func TestGenerateUnknownType(t *testing.T) {
	convey.Convey("Given a report service", t, func() {
		_, _, svc, err := newFixture()
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When requesting an unknown report type", func() {
			_, err := svc.Generate(context.Background(), reports.Request{
				Type:    "quarterly_synergy",
				Filters: rawFilters(map[string]string{}),
			})

			convey.Convey("Then the request is rejected", func() {
				convey.So(errors.Is(err, reports.ErrInvalidRequest), convey.ShouldBeTrue)
			})
		})
	})
}
