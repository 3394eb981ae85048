// Package metrics exports Prometheus collectors fed by the observability
// hooks of the API clients and by the HTTP server.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/apisbr/apisbr/pkg/observability"
)

const namespace = "apisbr"

// Metrics implements the source, cache and HTTP hooks of package
// observability on top of Prometheus collectors.
type Metrics struct {
	Lookups        *prometheus.CounterVec
	Fetches        *prometheus.CounterVec
	FetchDuration  *prometheus.HistogramVec
	FetchRows      *prometheus.HistogramVec
	CacheEvents    *prometheus.CounterVec
	CacheBytes     *prometheus.CounterVec
	Upstream       *prometheus.CounterVec
	UpstreamErrors *prometheus.CounterVec
	UpstreamTime   *prometheus.HistogramVec
	Requests       *prometheus.CounterVec
	RequestTime    *prometheus.HistogramVec
}

var (
	_ observability.SourceHooks = (*Metrics)(nil)
	_ observability.CacheHooks  = (*Metrics)(nil)
	_ observability.HTTPHooks   = (*Metrics)(nil)
)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Lookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Title lookups by source and whether they matched exactly.",
		}, []string{"source", "matched"}),
		Fetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Data fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		FetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of data fetches, from request to flattened table.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"source"}),
		FetchRows: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_rows",
			Help:      "Rows returned by successful data fetches.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"source"}),
		CacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Response cache hits, misses and writes by namespace.",
		}, []string{"namespace", "event"}),
		CacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the response cache by namespace.",
		}, []string{"namespace"}),
		Upstream: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_responses_total",
			Help:      "Responses received from upstream APIs by host and status code.",
		}, []string{"host", "code"}),
		UpstreamErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Failed upstream requests by host.",
		}, []string{"host"}),
		UpstreamTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Upstream request latency by host.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host"}),
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Requests served by route and status code.",
		}, []string{"method", "route", "code"}),
		RequestTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of served requests by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Register installs m as the process-wide observability hooks.
func (m *Metrics) Register() {
	observability.SetSourceHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func (m *Metrics) OnLookup(_ context.Context, source, _ string, matched bool) {
	m.Lookups.WithLabelValues(source, strconv.FormatBool(matched)).Inc()
}

func (m *Metrics) OnFetchStart(context.Context, string, string) {}

func (m *Metrics) OnFetchComplete(_ context.Context, source, _ string, rows int, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Fetches.WithLabelValues(source, outcome).Inc()
	m.FetchDuration.WithLabelValues(source).Observe(d.Seconds())
	if err == nil {
		m.FetchRows.WithLabelValues(source).Observe(float64(rows))
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, ns string) {
	m.CacheEvents.WithLabelValues(ns, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, ns string) {
	m.CacheEvents.WithLabelValues(ns, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, ns string, size int) {
	m.CacheEvents.WithLabelValues(ns, "set").Inc()
	m.CacheBytes.WithLabelValues(ns).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, code int, d time.Duration) {
	m.Upstream.WithLabelValues(host, strconv.Itoa(code)).Inc()
	m.UpstreamTime.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.UpstreamErrors.WithLabelValues(host).Inc()
}

// ObserveRequest records one request served by the HTTP facade. Route is
// the route pattern, not the raw path.
func (m *Metrics) ObserveRequest(method, route string, code int, d time.Duration) {
	m.Requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.RequestTime.WithLabelValues(method, route).Observe(d.Seconds())
}
