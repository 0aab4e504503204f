// Package metrics holds the proxy's Prometheus collectors and the helpers
// that keep their label sets bounded.
package metrics

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "backend_proxy"

// Label names.
const (
	LabelMethod     = "method"
	LabelStatusCode = "status_code"
	LabelPathPrefix = "path_prefix"
	LabelKind       = "kind"
)

// Latency buckets in seconds, shared by inbound and upstream histograms.
var latencyBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// Metrics holds every collector exposed by the proxy, registered on its own
// registry.
type Metrics struct {
	Registry *prometheus.Registry

	// Inbound requests, labeled by method, status code and path prefix.
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Upstream calls. A call either produces a response (counted by status)
	// or an error (counted by kind); both observe UpstreamDuration.
	UpstreamDuration  *prometheus.HistogramVec
	UpstreamResponses *prometheus.CounterVec
	UpstreamErrors    *prometheus.CounterVec
}

// New creates a Metrics instance with Go runtime and process collectors
// already registered.
func New() *Metrics {
	inbound := []string{LabelMethod, LabelStatusCode, LabelPathPrefix}

	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Inbound HTTP requests.",
		}, inbound),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Inbound HTTP request latency, including the upstream call.",
			Buckets:   latencyBuckets,
		}, inbound),
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Inbound HTTP requests currently being served.",
		}),

		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Time until upstream response headers or failure.",
			Buckets:   latencyBuckets,
		}, []string{LabelMethod}),
		UpstreamResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "responses_total",
			Help:      "Upstream responses by method and status code.",
		}, []string{LabelMethod, LabelStatusCode}),
		UpstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "errors_total",
			Help:      "Upstream calls that failed before a response arrived, by error kind.",
		}, []string{LabelKind}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestsTotal,
		m.RequestDuration,
		m.RequestsInFlight,
		m.UpstreamDuration,
		m.UpstreamResponses,
		m.UpstreamErrors,
	)

	return m
}

// ObserveUpstreamResponse records an upstream call that returned a response.
// It is a no-op on a nil receiver.
func (m *Metrics) ObserveUpstreamResponse(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	method = NormalizeMethod(method)
	m.UpstreamDuration.WithLabelValues(method).Observe(elapsed.Seconds())
	m.UpstreamResponses.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// ObserveUpstreamError records an upstream call that failed with the given
// error kind. It is a no-op on a nil receiver.
func (m *Metrics) ObserveUpstreamError(method, kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamDuration.WithLabelValues(NormalizeMethod(method)).Observe(elapsed.Seconds())
	m.UpstreamErrors.WithLabelValues(kind).Inc()
}

var knownMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"}

// NormalizeMethod returns method if it is a standard HTTP method and "other"
// otherwise.
func NormalizeMethod(method string) string {
	if slices.Contains(knownMethods, method) {
		return method
	}
	return "other"
}

// knownPrefixes are the path label values besides "other". Bare resource
// paths normally arrive rewritten to their /api form.
var knownPrefixes = []string{"/api/orders", "/api/users", "/api/meta", "/orders", "/users", "/status", "/healthz", "/metrics"}

// NormalizePath maps a request path to the route prefix it falls under.
func NormalizePath(path string) string {
	for _, prefix := range knownPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") || strings.HasPrefix(path, prefix+"?") {
			return prefix
		}
	}
	return "other"
}
