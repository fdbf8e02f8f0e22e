// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/midiaz/brandscope/internal/adapters/store"
	"github.com/midiaz/brandscope/internal/domain/aggregate"
	"github.com/midiaz/brandscope/internal/domain/filter"
	"github.com/midiaz/brandscope/internal/domain/model"
	"github.com/midiaz/brandscope/internal/reports"
	"github.com/midiaz/brandscope/pkg/logger"
)

// ErrReportsUnavailable reports that narrative generation is not configured,
// typically because no completion API key was provided at startup.
var ErrReportsUnavailable = errors.New("report generation unavailable")

// Service implements the API dependencies for the analytics system. It owns
// no data: every read goes through the record fetcher, every aggregation is
// recomputed on demand.
type Service struct {
	fetcher store.Fetcher
	reports *reports.Service

	// Configuration
	eventPageSize  int
	personPageSize int
	itemPageSize   int
	maxListLimit   int
	reportModel    string

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithFetcher sets the record fetcher backing all reads.
func WithFetcher(f store.Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithReports enables narrative report generation. The model name is surfaced
// through ReportsStatus.
func WithReports(r *reports.Service, model string) Option {
	return func(s *Service) {
		s.reports = r
		s.reportModel = model
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEventPageSize caps how many events one aggregation may cover.
func WithEventPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.eventPageSize = n
		}
	}
}

// WithPersonPageSize caps per-event person reads.
func WithPersonPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.personPageSize = n
		}
	}
}

// WithItemPageSize caps per-event item reads.
func WithItemPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.itemPageSize = n
		}
	}
}

// WithMaxListLimit caps the limit accepted by ListEvents.
func WithMaxListLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxListLimit = n
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		eventPageSize:  1_000,
		personPageSize: 10_000,
		itemPageSize:   50_000,
		maxListLimit:   1_000,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	return s
}

// EventPage is one page of an event listing.
type EventPage struct {
	Events  []model.Event `json:"events"`
	Total   int           `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
	HasMore bool          `json:"has_more"`
}

// ListEvents returns a filtered, paginated event listing, newest date first.
// A non-positive limit falls back to the configured maximum; larger limits
// are clamped to it.
func (s *Service) ListEvents(ctx context.Context, c filter.Criteria, limit, offset int) (EventPage, error) {
	pred, err := filter.Resolve(c)
	if err != nil {
		return EventPage{}, err
	}

	if limit <= 0 || limit > s.maxListLimit {
		limit = s.maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	events, err := s.fetcher.ListEvents(ctx, pred, limit, offset)
	if err != nil {
		return EventPage{}, fmt.Errorf("list events: %w", err)
	}
	total, err := s.fetcher.CountEvents(ctx, pred)
	if err != nil {
		return EventPage{}, fmt.Errorf("count events: %w", err)
	}

	return EventPage{
		Events:  events,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+len(events) < total,
	}, nil
}

// GetEvent returns one event by id, or store.ErrNotFound.
func (s *Service) GetEvent(ctx context.Context, id string) (model.Event, error) {
	return s.fetcher.GetEvent(ctx, id)
}

// EventBrands returns the brand share ranking of a single event. The event
// must exist; an unknown id yields store.ErrNotFound.
func (s *Service) EventBrands(ctx context.Context, id string) ([]aggregate.BrandShare, error) {
	event, err := s.fetcher.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	return aggregate.Brands(ctx, s.fetcher, []string{event.ID}, aggregate.BrandOptions{})
}

// EventProducts returns the product-type distribution of a single event. The
// event must exist; an unknown id yields store.ErrNotFound.
func (s *Service) EventProducts(ctx context.Context, id string) ([]aggregate.ProductShare, error) {
	event, err := s.fetcher.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	return aggregate.Products(ctx, s.fetcher, []string{event.ID})
}

// DashboardMetrics computes the KPI tile values for events matching criteria.
func (s *Service) DashboardMetrics(ctx context.Context, c filter.Criteria) (aggregate.KPIs, error) {
	return aggregate.Dashboard(ctx, s.fetcher, c, s.eventPageSize, s.itemPageSize)
}

// BrandTimeSeries returns monthly brand activity buckets for events matching
// criteria. Filters that match no event yield an empty series, never the
// unfiltered one.
func (s *Service) BrandTimeSeries(ctx context.Context, c filter.Criteria) ([]aggregate.TimeSeriesEntry, error) {
	var rows []model.BrandActivityRow
	if c.IsZero() {
		var err error
		rows, err = s.fetcher.ListBrandActivity(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("brand time series: %w", err)
		}
	} else {
		ids, err := filter.ResolveEventIDs(ctx, s.fetcher, c, s.eventPageSize)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []aggregate.TimeSeriesEntry{}, nil
		}
		rows, err = s.fetcher.ListBrandActivity(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("brand time series: %w", err)
		}
	}
	return aggregate.BrandTimeSeries(rows), nil
}

// GenerateReport produces one narrative report, or ErrReportsUnavailable when
// generation is not configured.
func (s *Service) GenerateReport(ctx context.Context, req reports.Request) (*reports.Report, error) {
	if s.reports == nil {
		return nil, ErrReportsUnavailable
	}

	report, err := s.reports.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "report generated",
		logger.String("type", report.Type),
		logger.Int("tokens", report.Metadata.TokensUsed),
		logger.Int("events", report.Metadata.TotalEvents),
	)
	return report, nil
}

// ReportsStatus describes whether narrative generation is available.
type ReportsStatus struct {
	Available bool   `json:"available"`
	Model     string `json:"model,omitempty"`
	Message   string `json:"message"`
}

// ReportsAvailability reports the current report generation capability.
func (s *Service) ReportsAvailability() ReportsStatus {
	if s.reports == nil {
		return ReportsStatus{
			Available: false,
			Message:   "report generation disabled: no completion API key configured",
		}
	}
	return ReportsStatus{
		Available: true,
		Model:     s.reportModel,
		Message:   "report generation ready",
	}
}
