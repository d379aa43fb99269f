// internal/monitoring/metrics.go
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors for the crawl pipeline, registered on the default
// registry. The CLI has no exposition endpoint; an embedding service can
// mount promhttp against the same registry.
var (
	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leadgrep",
		Subsystem: "scraper",
		Name:      "fetches_total",
		Help:      "Page fetch attempts by mode and outcome.",
	}, []string{"mode", "status"})

	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "leadgrep",
		Subsystem: "scraper",
		Name:      "fetch_duration_seconds",
		Help:      "Wall time of completed page fetches.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"mode"})

	FetchRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "leadgrep",
		Subsystem: "scraper",
		Name:      "fetch_retries_total",
		Help:      "Static fetch retries after transient failures.",
	})

	EmailsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "leadgrep",
		Subsystem: "extractor",
		Name:      "emails_extracted_total",
		Help:      "Email addresses accepted by the validation pipeline.",
	})

	ProxyProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leadgrep",
		Subsystem: "proxy",
		Name:      "probes_total",
		Help:      "Proxy canary probes by outcome.",
	}, []string{"outcome"})
)
