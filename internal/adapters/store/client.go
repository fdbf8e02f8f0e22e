package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/midiaz/brandscope/internal/domain/filter"
	"github.com/midiaz/brandscope/internal/domain/model"
	"github.com/midiaz/brandscope/pkg/metrics"
)

// Table names on the remote store.
const (
	tableEvents         = "events"
	tablePersons        = "event_persons"
	tableItems          = "person_items"
	tableBrandSummary   = "brand_event_summary"
	tableProductSummary = "product_event_summary"
)

const defaultTimeout = 15 * time.Second

// Client implements Fetcher against a PostgREST-compatible endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient overrides the internal HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout on the internal HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient builds a store client for the given endpoint. The key is sent as
// both the apikey header and a bearer token, as the store expects.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListEvents returns events matching pred, newest date first.
func (c *Client) ListEvents(ctx context.Context, pred filter.Predicate, limit, offset int) ([]model.Event, error) {
	q := encodePredicate(pred)
	q.Set("select", "*")
	q.Set("order", "event_date.desc")
	addPage(q, limit, offset)

	var events []model.Event
	if err := c.getJSON(ctx, tableEvents, q, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CountEvents returns the number of events matching pred.
func (c *Client) CountEvents(ctx context.Context, pred filter.Predicate) (int, error) {
	q := encodePredicate(pred)
	q.Set("select", "id")
	return c.count(ctx, tableEvents, q)
}

// GetEvent returns one event by id, or ErrNotFound.
func (c *Client) GetEvent(ctx context.Context, id string) (model.Event, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", "eq."+id)
	q.Set("limit", "1")

	var events []model.Event
	if err := c.getJSON(ctx, tableEvents, q, &events); err != nil {
		return model.Event{}, err
	}
	if len(events) == 0 {
		return model.Event{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return events[0], nil
}

// ListPersons returns the persons of one event, up to limit.
func (c *Client) ListPersons(ctx context.Context, eventID string, limit int) ([]model.Person, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("event_id", "eq."+eventID)
	addPage(q, limit, 0)

	var persons []model.Person
	if err := c.getJSON(ctx, tablePersons, q, &persons); err != nil {
		return nil, err
	}
	return persons, nil
}

// CountPersons returns the number of persons recorded for one event.
func (c *Client) CountPersons(ctx context.Context, eventID string) (int, error) {
	q := url.Values{}
	q.Set("select", "person_id")
	q.Set("event_id", "eq."+eventID)
	return c.count(ctx, tablePersons, q)
}

// ListItems returns the detected items of one event, up to limit.
func (c *Client) ListItems(ctx context.Context, eventID string, limit int) ([]model.Item, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("event_id", "eq."+eventID)
	addPage(q, limit, 0)

	var items []model.Item
	if err := c.getJSON(ctx, tableItems, q, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListBrandSummary returns the per-event brand aggregates, ordered by the
// store's precomputed share descending.
func (c *Client) ListBrandSummary(ctx context.Context, eventID string) ([]model.BrandSummaryRow, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("event_id", "eq."+eventID)
	q.Set("order", "brand_share_percent.desc")

	var rows []model.BrandSummaryRow
	if err := c.getJSON(ctx, tableBrandSummary, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListProductSummary returns the per-event product aggregates, ordered by the
// store's precomputed share descending.
func (c *Client) ListProductSummary(ctx context.Context, eventID string) ([]model.ProductSummaryRow, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("event_id", "eq."+eventID)
	q.Set("order", "product_share_percent.desc")

	var rows []model.ProductSummaryRow
	if err := c.getJSON(ctx, tableProductSummary, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListBrandActivity returns dated brand totals from the brand summary
// projection, ordered by event date ascending. A nil eventIDs slice means all
// events.
func (c *Client) ListBrandActivity(ctx context.Context, eventIDs []string) ([]model.BrandActivityRow, error) {
	if eventIDs != nil && len(eventIDs) == 0 {
		return nil, nil
	}
	q := url.Values{}
	q.Set("select", "event_id,event_date,brand,total_items")
	q.Set("order", "event_date.asc")
	if eventIDs != nil {
		q.Set("event_id", "in.("+joinQuoted(eventIDs)+")")
	}

	var rows []model.BrandActivityRow
	if err := c.getJSON(ctx, tableBrandSummary, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// getJSON performs one table read and decodes the JSON array response.
func (c *Client) getJSON(ctx context.Context, table string, q url.Values, out any) error {
	start := time.Now()
	req, err := c.newRequest(ctx, http.MethodGet, table, q)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordStoreError(table)
		return fmt.Errorf("%w: %s: %w", ErrUpstream, table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		metrics.RecordStoreError(table)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s: status %d: %s", ErrUpstream, table, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.RecordStoreError(table)
		return fmt.Errorf("%w: %s: decode: %w", ErrUpstream, table, err)
	}
	metrics.ObserveStoreFetch(table, float64(time.Since(start).Milliseconds()))
	return nil
}

// count performs a HEAD read with an exact-count preference and parses the
// total from the Content-Range header ("0-24/3573" or "*/0").
func (c *Client) count(ctx context.Context, table string, q url.Values) (int, error) {
	start := time.Now()
	req, err := c.newRequest(ctx, http.MethodHead, table, q)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "count=exact")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordStoreError(table)
		return 0, fmt.Errorf("%w: count %s: %w", ErrUpstream, table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		metrics.RecordStoreError(table)
		return 0, fmt.Errorf("%w: count %s: status %d", ErrUpstream, table, resp.StatusCode)
	}

	total, err := parseContentRange(resp.Header.Get("Content-Range"))
	if err != nil {
		metrics.RecordStoreError(table)
		return 0, fmt.Errorf("%w: count %s: %w", ErrUpstream, table, err)
	}
	metrics.ObserveStoreFetch(table, float64(time.Since(start).Milliseconds()))
	return total, nil
}

func (c *Client) newRequest(ctx context.Context, method, table string, q url.Values) (*http.Request, error) {
	u := c.baseURL + "/rest/v1/" + table + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrUpstream, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func parseContentRange(header string) (int, error) {
	_, totalPart, ok := strings.Cut(header, "/")
	if !ok {
		return 0, fmt.Errorf("missing content-range header %q", header)
	}
	if totalPart == "*" {
		return 0, nil
	}
	total, err := strconv.Atoi(totalPart)
	if err != nil {
		return 0, fmt.Errorf("bad content-range total %q", header)
	}
	return total, nil
}
