// internal/monitoring/metrics.go

// Package monitoring exposes operational metrics for MediaScrapexter via
// Prometheus, along with a small HTTP server publishing the metrics and a
// health probe.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics aggregates the Prometheus instruments updated by the worker and
// the scraping engine.
type Metrics struct {
	CyclesTotal        prometheus.Counter
	CandidatesResolved prometheus.Counter
	ExtractionsTotal   *prometheus.CounterVec
	DownloadsTotal     *prometheus.CounterVec
	SessionsActive     prometheus.Gauge
	ExtractionSeconds  prometheus.Histogram
}

// NewMetrics registers the instrument set on reg. A nil registerer uses
// the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		CyclesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "mediascrapexter_cycles_total",
			Help: "Number of completed scraping cycles.",
		}),
		CandidatesResolved: factory.NewCounter(prometheus.CounterOpts{
			Name: "mediascrapexter_candidates_resolved_total",
			Help: "Number of candidate page URLs produced by discovery.",
		}),
		ExtractionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mediascrapexter_extractions_total",
			Help: "Number of page extractions by outcome.",
		}, []string{"outcome"}),
		DownloadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mediascrapexter_downloads_total",
			Help: "Number of media downloads by outcome.",
		}, []string{"outcome"}),
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mediascrapexter_browser_sessions_active",
			Help: "Browser sessions currently running.",
		}),
		ExtractionSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mediascrapexter_extraction_duration_seconds",
			Help:    "Wall time spent extracting one candidate page.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}

// ObserveExtraction records one extraction outcome.
func (m *Metrics) ObserveExtraction(accepted bool) {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	m.ExtractionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveDownload records one download outcome.
func (m *Metrics) ObserveDownload(err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.DownloadsTotal.WithLabelValues(outcome).Inc()
}
