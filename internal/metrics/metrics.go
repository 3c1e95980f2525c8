// Package metrics exposes Prometheus collectors for the enrichment pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	recordsTotal        *prometheus.CounterVec
	sourceFallbackTotal prometheus.Counter
	kuChecksTotal       *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		recordsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookdex_records_total",
				Help: "Total records processed, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		sourceFallbackTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "bookdex_source_fallback_total",
				Help: "Total identity lookups that fell back to page extraction.",
			},
		)

		kuChecksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookdex_ku_checks_total",
				Help: "Total Kindle Unlimited shelf checks, labeled by result.",
			},
			[]string{"result"},
		)
	})
}

// ObserveRecord increments the record counter for an outcome.
func ObserveRecord(outcome string) {
	if recordsTotal == nil {
		return
	}
	recordsTotal.WithLabelValues(outcome).Inc()
}

// ObserveSourceFallback increments the structured-source fallback counter.
func ObserveSourceFallback() {
	if sourceFallbackTotal == nil {
		return
	}
	sourceFallbackTotal.Inc()
}

// ObserveKUCheck increments the shelf check counter for a result.
func ObserveKUCheck(available bool) {
	if kuChecksTotal == nil {
		return
	}
	result := "unavailable"
	if available {
		result = "available"
	}
	kuChecksTotal.WithLabelValues(result).Inc()
}

// Router returns an HTTP handler exposing the collectors at /metrics.
func Router() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	return r
}
