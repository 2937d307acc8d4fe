// Package metrics records crawl counters in a Prometheus registry.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hackscout"

// Metrics holds the crawl collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	pages         *prometheus.CounterVec
	delivered     *prometheus.CounterVec
	rejected      *prometheus.CounterVec
	retries       *prometheus.CounterVec
	detailErrors  *prometheus.CounterVec
	stops         *prometheus.CounterVec
	crawlDuration *prometheus.HistogramVec
}

// New creates the collectors on a private registry
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.pages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listing_pages_total",
		Help:      "Listing pages fetched",
	}, []string{"provider"})
	m.delivered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_delivered_total",
		Help:      "Events handed to the delivery layer",
	}, []string{"provider"})
	m.rejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_rejected_total",
		Help:      "Listing items dropped by filter or dedup",
	}, []string{"provider", "reason"})
	m.retries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_retries_total",
		Help:      "Backoff retries issued by the resilient fetcher",
	}, []string{"host"})
	m.detailErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "detail_failures_total",
		Help:      "Detail navigations that failed and kept listing data",
	}, []string{"provider"})
	m.stops = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "crawls_total",
		Help:      "Finished crawls by stop reason",
	}, []string{"provider", "stop"})
	m.crawlDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "crawl_duration_seconds",
		Help:      "Wall time of a crawl",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"provider"})

	m.registry.MustRegister(
		m.pages, m.delivered, m.rejected, m.retries,
		m.detailErrors, m.stops, m.crawlDuration,
	)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) PageFetched(provider string) {
	if m == nil {
		return
	}
	m.pages.WithLabelValues(provider).Inc()
}

func (m *Metrics) EventDelivered(provider string) {
	if m == nil {
		return
	}
	m.delivered.WithLabelValues(provider).Inc()
}

func (m *Metrics) EventRejected(provider, reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(provider, reason).Inc()
}

func (m *Metrics) Retry(host string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(host).Inc()
}

func (m *Metrics) DetailFailed(provider string) {
	if m == nil {
		return
	}
	m.detailErrors.WithLabelValues(provider).Inc()
}

// CrawlFinished records the stop reason and duration of one crawl
func (m *Metrics) CrawlFinished(provider, stop string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.stops.WithLabelValues(provider, stop).Inc()
	m.crawlDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// WriteFile writes all metrics in the text exposition format, for node_exporter's
// textfile collector
func (m *Metrics) WriteFile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
