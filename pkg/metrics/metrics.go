// Package metrics exposes the Prometheus collectors for the brandscope
// service: HTTP traffic, store fetches, aggregation runs and LLM report
// generation. All collectors live on a private registry served by /healthz.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "brandscope"

var registry = prometheus.NewRegistry()

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code.",
	}, []string{"endpoint", "method", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"endpoint"})

	storeFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_fetch_duration_ms",
		Help:      "Remote store read latency in milliseconds, per table.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"table"})

	storeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_fetch_errors_total",
		Help:      "Failed remote store reads, per table.",
	}, []string{"table"})

	aggregationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "aggregation_duration_ms",
		Help:      "Aggregation run time in milliseconds, per kind.",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"kind"})

	reportsGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_generated_total",
		Help:      "Narrative reports generated, per report type.",
	}, []string{"type"})

	llmTokens = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "llm_tokens_used_total",
		Help:      "Tokens consumed by the text-generation collaborator.",
	})

	llmDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "llm_generation_duration_ms",
		Help:      "Text generation latency in milliseconds.",
		Buckets:   []float64{250, 500, 1000, 2500, 5000, 10000, 30000},
	})
)

func init() {
	registry.MustRegister(
		httpRequests,
		httpDuration,
		storeFetchDuration,
		storeErrors,
		aggregationDuration,
		reportsGenerated,
		llmTokens,
		llmDuration,
	)
}

// Registry returns the registry holding all service collectors.
func Registry() *prometheus.Registry {
	return registry
}

// RecordHTTPRequest counts one handled HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// ObserveHTTPDuration records one request's latency.
func ObserveHTTPDuration(endpoint string, ms float64) {
	httpDuration.WithLabelValues(endpoint).Observe(ms)
}

// ObserveStoreFetch records one successful store read.
func ObserveStoreFetch(table string, ms float64) {
	storeFetchDuration.WithLabelValues(table).Observe(ms)
}

// RecordStoreError counts one failed store read.
func RecordStoreError(table string) {
	storeErrors.WithLabelValues(table).Inc()
}

// ObserveAggregation records one aggregation run.
func ObserveAggregation(kind string, ms float64) {
	aggregationDuration.WithLabelValues(kind).Observe(ms)
}

// RecordReport counts one generated report and its token usage.
func RecordReport(reportType string, tokensUsed int) {
	reportsGenerated.WithLabelValues(reportType).Inc()
	llmTokens.Add(float64(tokensUsed))
}

// ObserveLLMGeneration records one text-generation round trip.
func ObserveLLMGeneration(ms float64) {
	llmDuration.Observe(ms)
}
