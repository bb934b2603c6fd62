// Package metrics exposes the site's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors and the registry they are registered on.
type Metrics struct {
	registry     *prometheus.Registry
	loads        *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	submissions  *prometheus.CounterVec
	requests     *prometheus.HistogramVec
	activeViews  prometheus.GaugeFunc
}

// New registers every collector on a fresh registry. activeViews reports the
// number of live view activations and may be nil.
func New(activeViews func() float64) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "archstudio",
			Name:      "listing_loads_total",
			Help:      "Listing collection loads by collection and outcome.",
		}, []string{"collection", "outcome"}),
		loadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "archstudio",
			Name:      "listing_load_duration_seconds",
			Help:      "Time taken to load a listing collection.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collection"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "archstudio",
			Name:      "contact_submissions_total",
			Help:      "Contact form submissions by outcome.",
		}, []string{"outcome"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "archstudio",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.loads, m.loadDuration, m.submissions, m.requests,
	)
	if activeViews != nil {
		m.activeViews = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "archstudio",
			Name:      "active_views",
			Help:      "Listing view activations currently held in memory.",
		}, activeViews)
		m.registry.MustRegister(m.activeViews)
	}
	return m
}

// ObserveLoad records one listing load. Its signature matches
// listing.Observer.
func (m *Metrics) ObserveLoad(collection, outcome string, took time.Duration) {
	m.loads.WithLabelValues(collection, outcome).Inc()
	m.loadDuration.WithLabelValues(collection).Observe(took.Seconds())
}

// ObserveSubmission records one contact form outcome.
func (m *Metrics) ObserveSubmission(outcome string) {
	m.submissions.WithLabelValues(outcome).Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, took time.Duration) {
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Observe(took.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
