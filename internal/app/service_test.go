package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/midiaz/brandscope/internal/adapters/store"
	service "github.com/midiaz/brandscope/internal/app"
	"github.com/midiaz/brandscope/internal/domain/filter"
	"github.com/midiaz/brandscope/internal/domain/model"
	"github.com/midiaz/brandscope/internal/reports"
	"github.com/midiaz/brandscope/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// fakeStore implements store.Fetcher over fixed records.
type fakeStore struct {
	mu sync.Mutex

	events       []model.Event
	total        int
	personsByID  map[string][]model.Person
	itemsByID    map[string][]model.Item
	brandRows    map[string][]model.BrandSummaryRow
	productRows  map[string][]model.ProductSummaryRow
	activityRows []model.BrandActivityRow

	lastLimit     int
	lastOffset    int
	activityCalls [][]string
}

func (f *fakeStore) ListEvents(ctx context.Context, pred filter.Predicate, limit, offset int) ([]model.Event, error) {
	f.mu.Lock()
	f.lastLimit, f.lastOffset = limit, offset
	f.mu.Unlock()
	if pred.IsZero() {
		return f.events, nil
	}
	// Only sport filtering is exercised here.
	var out []model.Event
	for _, e := range f.events {
		for _, s := range pred.Sports {
			if e.Sport == s {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) CountEvents(ctx context.Context, pred filter.Predicate) (int, error) {
	return f.total, nil
}

func (f *fakeStore) GetEvent(ctx context.Context, id string) (model.Event, error) {
	for _, e := range f.events {
		if e.ID == id {
			return e, nil
		}
	}
	return model.Event{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
}

func (f *fakeStore) ListPersons(ctx context.Context, eventID string, limit int) ([]model.Person, error) {
	return f.personsByID[eventID], nil
}

func (f *fakeStore) CountPersons(ctx context.Context, eventID string) (int, error) {
	return len(f.personsByID[eventID]), nil
}

func (f *fakeStore) ListItems(ctx context.Context, eventID string, limit int) ([]model.Item, error) {
	return f.itemsByID[eventID], nil
}

func (f *fakeStore) ListBrandSummary(ctx context.Context, eventID string) ([]model.BrandSummaryRow, error) {
	return f.brandRows[eventID], nil
}

func (f *fakeStore) ListProductSummary(ctx context.Context, eventID string) ([]model.ProductSummaryRow, error) {
	return f.productRows[eventID], nil
}

func (f *fakeStore) ListBrandActivity(ctx context.Context, eventIDs []string) ([]model.BrandActivityRow, error) {
	f.mu.Lock()
	f.activityCalls = append(f.activityCalls, eventIDs)
	f.mu.Unlock()
	return f.activityRows, nil
}

func newTestService(f *fakeStore, opts ...service.Option) *service.Service {
	_ = logger.Init()
	return service.New(append([]service.Option{service.WithFetcher(f)}, opts...)...)
}

func TestListEvents(t *testing.T) {
	convey.Convey("Given a service over three events", t, func() {
		ctx := context.Background()
		f := &fakeStore{
			events: []model.Event{
				{ID: "e1", Sport: "running"},
				{ID: "e2", Sport: "running"},
				{ID: "e3", Sport: "trail"},
			},
			total: 3,
		}
		svc := newTestService(f, service.WithMaxListLimit(100))

		convey.Convey("When listing with an explicit page", func() {
			page, err := svc.ListEvents(ctx, filter.Criteria{}, 2, 1)

			convey.Convey("Then pagination fields are filled in", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(page.Total, convey.ShouldEqual, 3)
				convey.So(page.Limit, convey.ShouldEqual, 2)
				convey.So(page.Offset, convey.ShouldEqual, 1)
				convey.So(f.lastLimit, convey.ShouldEqual, 2)
				convey.So(f.lastOffset, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the limit is out of range", func() {
			_, err := svc.ListEvents(ctx, filter.Criteria{}, 10_000, 0)

			convey.Convey("Then it clamps to the configured maximum", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(f.lastLimit, convey.ShouldEqual, 100)
			})

			_, err = svc.ListEvents(ctx, filter.Criteria{}, 0, -5)
			convey.So(err, convey.ShouldBeNil)
			convey.So(f.lastLimit, convey.ShouldEqual, 100)
			convey.So(f.lastOffset, convey.ShouldEqual, 0)
		})

		convey.Convey("When the date filter is malformed", func() {
			_, err := svc.ListEvents(ctx, filter.Criteria{DateFrom: "garbage"}, 10, 0)

			convey.Convey("Then resolution fails up front", func() {
				convey.So(errors.Is(err, model.ErrInvalidDate), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the page covers the full set", func() {
			page, err := svc.ListEvents(ctx, filter.Criteria{}, 10, 0)

			convey.Convey("Then HasMore is false", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(page.HasMore, convey.ShouldBeFalse)
			})
		})
	})
}

func TestEventAggregations(t *testing.T) {
	convey.Convey("Given a service with per-event summaries", t, func() {
		ctx := context.Background()
		f := &fakeStore{
			events: []model.Event{{ID: "e1", Sport: "running"}},
			brandRows: map[string][]model.BrandSummaryRow{
				"e1": {
					{EventID: "e1", Brand: "Nike", TotalItems: 75, PersonsWithBrand: 60},
					{EventID: "e1", Brand: "Adidas", TotalItems: 25, PersonsWithBrand: 20},
				},
			},
			productRows: map[string][]model.ProductSummaryRow{
				"e1": {{EventID: "e1", ProductType: "shoe", TotalItems: 100}},
			},
		}
		svc := newTestService(f)

		convey.Convey("When fetching an event's brand ranking", func() {
			ranking, err := svc.EventBrands(ctx, "e1")

			convey.Convey("Then shares come from the summary rows", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(ranking, convey.ShouldHaveLength, 2)
				convey.So(ranking[0].Brand, convey.ShouldEqual, "Nike")
				convey.So(ranking[0].SharePercent, convey.ShouldEqual, 75)
			})
		})

		convey.Convey("When fetching an event's product distribution", func() {
			products, err := svc.EventProducts(ctx, "e1")

			convey.Convey("Then the distribution covers the whole event", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(products, convey.ShouldHaveLength, 1)
				convey.So(products[0].Percent, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When the event does not exist", func() {
			_, err := svc.EventBrands(ctx, "ghost")
			convey.So(errors.Is(err, store.ErrNotFound), convey.ShouldBeTrue)

			_, err = svc.EventProducts(ctx, "ghost")
			convey.So(errors.Is(err, store.ErrNotFound), convey.ShouldBeTrue)
		})
	})
}

func TestBrandTimeSeries(t *testing.T) {
	convey.Convey("Given a service with dated brand activity", t, func() {
		ctx := context.Background()
		f := &fakeStore{
			events: []model.Event{
				{ID: "e1", Sport: "running"},
				{ID: "e2", Sport: "trail"},
			},
			activityRows: []model.BrandActivityRow{
				{EventID: "e1", EventDate: model.NewDate(2025, 1, 10), Brand: "Nike", TotalItems: 10},
				{EventID: "e2", EventDate: model.NewDate(2025, 2, 5), Brand: "Adidas", TotalItems: 5},
			},
		}
		svc := newTestService(f)

		convey.Convey("When no filter is supplied", func() {
			series, err := svc.BrandTimeSeries(ctx, filter.Criteria{})

			convey.Convey("Then the whole projection is bucketed in one read", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(series, convey.ShouldHaveLength, 2)
				convey.So(f.activityCalls, convey.ShouldHaveLength, 1)
				convey.So(f.activityCalls[0], convey.ShouldBeNil)
			})
		})

		convey.Convey("When a filter matches events", func() {
			_, err := svc.BrandTimeSeries(ctx, filter.Criteria{Sport: "running"})

			convey.Convey("Then the activity read is scoped to the matching ids", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(f.activityCalls, convey.ShouldHaveLength, 1)
				convey.So(f.activityCalls[0], convey.ShouldResemble, []string{"e1"})
			})
		})

		convey.Convey("When a filter matches no event", func() {
			series, err := svc.BrandTimeSeries(ctx, filter.Criteria{Sport: "curling"})

			convey.Convey("Then an empty series comes back without an activity read", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(series, convey.ShouldNotBeNil)
				convey.So(series, convey.ShouldBeEmpty)
				convey.So(f.activityCalls, convey.ShouldBeEmpty)
			})
		})
	})
}

func TestDashboardMetrics(t *testing.T) {
	convey.Convey("Given a service over two events", t, func() {
		ctx := context.Background()
		f := &fakeStore{
			events: []model.Event{
				{ID: "e1", Sport: "running", TotalPhotos: 100},
				{ID: "e2", Sport: "trail", TotalPhotos: 50},
			},
			total: 2,
			personsByID: map[string][]model.Person{
				"e1": {{ID: "p1"}, {ID: "p2"}},
				"e2": {{ID: "p3"}},
			},
			activityRows: []model.BrandActivityRow{
				{EventID: "e1", Brand: "Nike", TotalItems: 3},
				{EventID: "e2", Brand: "Adidas", TotalItems: 2},
			},
		}
		svc := newTestService(f)

		convey.Convey("When computing unfiltered KPIs", func() {
			kpis, err := svc.DashboardMetrics(ctx, filter.Criteria{})

			convey.Convey("Then all four counters are filled", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(kpis.TotalEvents, convey.ShouldEqual, 2)
				convey.So(kpis.TotalPhotosAnalyzed, convey.ShouldEqual, 150)
				convey.So(kpis.TotalAthletesIdentified, convey.ShouldEqual, 3)
				convey.So(kpis.TotalBrandsTracked, convey.ShouldEqual, 2)
			})
		})
	})
}

func TestReportsAvailability(t *testing.T) {
	convey.Convey("Given a service without report generation", t, func() {
		ctx := context.Background()
		svc := newTestService(&fakeStore{})

		convey.Convey("When asking for status", func() {
			status := svc.ReportsAvailability()

			convey.Convey("Then it reports unavailable with an explanation", func() {
				convey.So(status.Available, convey.ShouldBeFalse)
				convey.So(status.Model, convey.ShouldBeEmpty)
				convey.So(status.Message, convey.ShouldContainSubstring, "disabled")
			})
		})

		convey.Convey("When generating a report", func() {
			_, err := svc.GenerateReport(ctx, reports.Request{Type: reports.TypeMarketShare})

			convey.Convey("Then it fails with ErrReportsUnavailable", func() {
				convey.So(errors.Is(err, service.ErrReportsUnavailable), convey.ShouldBeTrue)
			})
		})
	})
}
