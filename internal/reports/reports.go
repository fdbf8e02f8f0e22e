// Package reports assembles aggregated analytics into narrative reports: it
// collects data through the aggregation engine, renders it into prompt text
// and hands off to the text-generation collaborator.
package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/midiaz/brandscope/internal/adapters/llm"
	"github.com/midiaz/brandscope/internal/domain/aggregate"
	"github.com/midiaz/brandscope/internal/domain/filter"
	"github.com/midiaz/brandscope/internal/domain/model"
	"github.com/midiaz/brandscope/pkg/metrics"
)

// Report types accepted by Generate.
const (
	TypeMarketShare          = "market_share"
	TypeAudienceSegmentation = "audience_segmentation"
	TypeEventMetrics         = "event_metrics"
)

const reportTemperature = 0.7

// ErrInvalidRequest reports a malformed report request (unknown type, bad
// filters, unparsable dates). It is rejected before any fetch is attempted.
var ErrInvalidRequest = errors.New("invalid report request")

// Fetcher bundles the reads report assembly needs.
type Fetcher interface {
	filter.EventLister
	GetEvent(ctx context.Context, id string) (model.Event, error)
	aggregate.SummaryFetcher
	aggregate.PeopleFetcher
}

// Request is a report generation request. Filters are decoded per type.
type Request struct {
	Type    string          `json:"type"`
	Filters json.RawMessage `json:"filters"`
}

// MarketShareFilters scope a market share report. The date range is required.
type MarketShareFilters struct {
	DateFrom    string   `json:"date_from"`
	DateTo      string   `json:"date_to"`
	Sport       string   `json:"sport,omitempty"`
	Location    string   `json:"location,omitempty"`
	ProductType string   `json:"product_type,omitempty"`
	Brands      []string `json:"brands,omitempty"`
}

// AudienceFilters scope an audience segmentation report.
type AudienceFilters struct {
	DateFrom    string `json:"date_from"`
	DateTo      string `json:"date_to"`
	Sport       string `json:"sport,omitempty"`
	Location    string `json:"location,omitempty"`
	ProductType string `json:"product_type,omitempty"`
}

// EventMetricsFilters scope a single-event report.
type EventMetricsFilters struct {
	EventID string `json:"event_id"`
	Focus   string `json:"focus,omitempty"`
}

// Metadata describes the data and generation cost behind a report.
type Metadata struct {
	TotalEvents      int    `json:"total_events"`
	TotalAthletes    int    `json:"total_athletes"`
	TotalItems       int    `json:"total_items"`
	TokensUsed       int    `json:"tokens_used"`
	Model            string `json:"model"`
	GenerationTimeMS int64  `json:"generation_time_ms"`
}

// Report is a generated narrative report.
type Report struct {
	Type           string         `json:"type"`
	GeneratedAt    time.Time      `json:"generated_at"`
	FiltersApplied map[string]any `json:"filters_applied"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	Metadata       Metadata       `json:"metadata"`
}

// Service generates narrative reports. Construct with New; the prompt set is
// immutable after load.
type Service struct {
	fetcher   Fetcher
	generator llm.Generator
	prompts   *Prompts

	eventLimit  int
	personLimit int
	itemLimit   int
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEventLimit caps how many events one report may cover.
func WithEventLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.eventLimit = n
		}
	}
}

// WithPersonLimit caps per-event person reads.
func WithPersonLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.personLimit = n
		}
	}
}

// WithItemLimit caps per-event item reads.
func WithItemLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.itemLimit = n
		}
	}
}

// New constructs a report service.
func New(fetcher Fetcher, generator llm.Generator, prompts *Prompts, opts ...Option) *Service {
	s := &Service{
		fetcher:     fetcher,
		generator:   generator,
		prompts:     prompts,
		eventLimit:  1000,
		personLimit: 10000,
		itemLimit:   50000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate dispatches on the request type.
func (s *Service) Generate(ctx context.Context, req Request) (*Report, error) {
	switch req.Type {
	case TypeMarketShare:
		var f MarketShareFilters
		if err := json.Unmarshal(req.Filters, &f); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return s.marketShare(ctx, f)
	case TypeAudienceSegmentation:
		var f AudienceFilters
		if err := json.Unmarshal(req.Filters, &f); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return s.audienceSegmentation(ctx, f)
	case TypeEventMetrics:
		var f EventMetricsFilters
		if err := json.Unmarshal(req.Filters, &f); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return s.eventMetrics(ctx, f)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidRequest, req.Type)
	}
}

func (s *Service) marketShare(ctx context.Context, f MarketShareFilters) (*Report, error) {
	from, to, err := requiredPeriod(f.DateFrom, f.DateTo)
	if err != nil {
		return nil, err
	}

	events, err := s.listEvents(ctx, filter.Criteria{
		Sport: f.Sport, Location: f.Location, DateFrom: f.DateFrom, DateTo: f.DateTo,
	})
	if err != nil {
		return nil, err
	}
	ids := eventIDs(events)

	ranking, err := aggregate.Brands(ctx, s.fetcher, ids, aggregate.BrandOptions{
		ProductType: f.ProductType,
		Brands:      f.Brands,
	})
	if err != nil {
		return nil, err
	}
	products, err := aggregate.Products(ctx, s.fetcher, ids)
	if err != nil {
		return nil, err
	}

	totalItems := aggregate.TotalItems(ranking)
	data := marketSharePromptData{
		PeriodStart:         from.Format("02/01/2006"),
		PeriodEnd:           to.Format("02/01/2006"),
		FiltersText:         marketShareFiltersText(f),
		TotalEvents:         len(events),
		TotalAthletes:       humanInt(sumAthletes(events)),
		TotalItems:          humanInt(totalItems),
		BrandRanking:        formatBrandRanking(ranking, 10, true),
		ProductDistribution: formatProductDistribution(products, true),
	}
	userPrompt, err := renderTemplate("market_share", s.prompts.MarketShare.User, data)
	if err != nil {
		return nil, err
	}

	completion, err := s.generator.Generate(ctx, s.prompts.MarketShare.System, userPrompt, reportTemperature)
	if err != nil {
		return nil, err
	}
	metrics.RecordReport(TypeMarketShare, completion.TokensUsed)

	return &Report{
		Type:           TypeMarketShare,
		GeneratedAt:    time.Now().UTC(),
		FiltersApplied: marketShareFiltersApplied(f),
		Title:          periodTitle("Market Share Report", f.Sport, f.Location, from, to),
		Content:        completion.Content,
		Metadata: Metadata{
			TotalEvents:      len(events),
			TotalAthletes:    sumAthletes(events),
			TotalItems:       totalItems,
			TokensUsed:       completion.TokensUsed,
			Model:            completion.Model,
			GenerationTimeMS: completion.GenerationTimeMS,
		},
	}, nil
}

func (s *Service) audienceSegmentation(ctx context.Context, f AudienceFilters) (*Report, error) {
	from, to, err := requiredPeriod(f.DateFrom, f.DateTo)
	if err != nil {
		return nil, err
	}

	events, err := s.listEvents(ctx, filter.Criteria{
		Sport: f.Sport, Location: f.Location, DateFrom: f.DateFrom, DateTo: f.DateTo,
	})
	if err != nil {
		return nil, err
	}
	ids := eventIDs(events)

	demography, err := aggregate.Demographics(ctx, s.fetcher, ids, s.personLimit)
	if err != nil {
		return nil, err
	}
	segments, err := aggregate.BrandBySegment(ctx, s.fetcher, ids, f.ProductType, s.personLimit, s.itemLimit)
	if err != nil {
		return nil, err
	}
	ranking, err := aggregate.Brands(ctx, s.fetcher, ids, aggregate.BrandOptions{ProductType: f.ProductType})
	if err != nil {
		return nil, err
	}

	totalItems := aggregate.TotalItems(ranking)
	data := audiencePromptData{
		PeriodStart:        from.Format("02/01/2006"),
		PeriodEnd:          to.Format("02/01/2006"),
		FiltersText:        audienceFiltersText(f),
		TotalEvents:        len(events),
		TotalAthletes:      humanInt(sumAthletes(events)),
		TotalItems:         humanInt(totalItems),
		GenderDistribution: formatGenderDistribution(demography.GenderDistribution),
		AgeDistribution:    formatAgeDistribution(demography.AgeDistribution),
		AvgAge:             formatFloat(demography.AvgAge),
		BrandBySegment:     formatBrandBySegment(segments),
	}
	userPrompt, err := renderTemplate("audience_segmentation", s.prompts.AudienceSegmentation.User, data)
	if err != nil {
		return nil, err
	}

	completion, err := s.generator.Generate(ctx, s.prompts.AudienceSegmentation.System, userPrompt, reportTemperature)
	if err != nil {
		return nil, err
	}
	metrics.RecordReport(TypeAudienceSegmentation, completion.TokensUsed)

	return &Report{
		Type:           TypeAudienceSegmentation,
		GeneratedAt:    time.Now().UTC(),
		FiltersApplied: audienceFiltersApplied(f),
		Title:          periodTitle("Audience Segmentation", f.Sport, f.Location, from, to),
		Content:        completion.Content,
		Metadata: Metadata{
			TotalEvents:      len(events),
			TotalAthletes:    sumAthletes(events),
			TotalItems:       totalItems,
			TokensUsed:       completion.TokensUsed,
			Model:            completion.Model,
			GenerationTimeMS: completion.GenerationTimeMS,
		},
	}, nil
}

func (s *Service) eventMetrics(ctx context.Context, f EventMetricsFilters) (*Report, error) {
	if f.EventID == "" {
		return nil, fmt.Errorf("%w: missing event_id", ErrInvalidRequest)
	}

	event, err := s.fetcher.GetEvent(ctx, f.EventID)
	if err != nil {
		return nil, err
	}
	ids := []string{event.ID}

	ranking, err := aggregate.Brands(ctx, s.fetcher, ids, aggregate.BrandOptions{})
	if err != nil {
		return nil, err
	}
	products, err := aggregate.Products(ctx, s.fetcher, ids)
	if err != nil {
		return nil, err
	}
	demography, err := aggregate.Demographics(ctx, s.fetcher, ids, s.personLimit)
	if err != nil {
		return nil, err
	}

	focus := f.Focus
	if focus == "" {
		focus = "general"
	}

	totalItems := aggregate.TotalItems(ranking)
	data := eventPromptData{
		EventName:           event.Name,
		EventType:           titleCase(event.EventType),
		Sport:               titleCase(orUnknown(event.Sport)),
		EventDate:           event.Date.String(),
		EventLocation:       event.Location,
		TotalAthletes:       humanInt(event.TotalAthletesEst),
		TotalPhotos:         humanInt(event.TotalPhotos),
		TotalItems:          humanInt(totalItems),
		BrandRanking:        formatBrandRanking(ranking, 6, false),
		ProductDistribution: formatProductDistribution(products, false),
		GenderInfo:          formatGenderInfo(demography.GenderDistribution),
		AvgAge:              formatFloat(demography.AvgAge),
		FocusText:           focusLabel(focus),
		FocusInstruction:    s.prompts.FocusInstruction(focus),
	}
	userPrompt, err := renderTemplate("event_metrics", s.prompts.EventMetrics.User, data)
	if err != nil {
		return nil, err
	}

	completion, err := s.generator.Generate(ctx, s.prompts.EventMetrics.System, userPrompt, reportTemperature)
	if err != nil {
		return nil, err
	}
	metrics.RecordReport(TypeEventMetrics, completion.TokensUsed)

	filtersApplied := map[string]any{"event_id": f.EventID, "focus": focus}
	return &Report{
		Type:           TypeEventMetrics,
		GeneratedAt:    time.Now().UTC(),
		FiltersApplied: filtersApplied,
		Title:          "Event Metrics - " + event.Name,
		Content:        completion.Content,
		Metadata: Metadata{
			TotalEvents:      1,
			TotalAthletes:    event.TotalAthletesEst,
			TotalItems:       totalItems,
			TokensUsed:       completion.TokensUsed,
			Model:            completion.Model,
			GenerationTimeMS: completion.GenerationTimeMS,
		},
	}, nil
}

func (s *Service) listEvents(ctx context.Context, c filter.Criteria) ([]model.Event, error) {
	pred, err := filter.Resolve(c)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return s.fetcher.ListEvents(ctx, pred, s.eventLimit, 0)
}

func requiredPeriod(dateFrom, dateTo string) (model.Date, model.Date, error) {
	if dateFrom == "" || dateTo == "" {
		return model.Date{}, model.Date{}, fmt.Errorf("%w: date_from and date_to are required", ErrInvalidRequest)
	}
	from, err := model.ParseDate(dateFrom)
	if err != nil {
		return model.Date{}, model.Date{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	to, err := model.ParseDate(dateTo)
	if err != nil {
		return model.Date{}, model.Date{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return from, to, nil
}

func eventIDs(events []model.Event) []string {
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids
}

func sumAthletes(events []model.Event) int {
	total := 0
	for _, e := range events {
		total += e.TotalAthletesEst
	}
	return total
}
