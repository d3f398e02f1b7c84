package ingest

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "availability"

var (
	ingestRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "runs_total",
			Help:      "Total ingestion runs by outcome",
		},
		[]string{"outcome"},
	)

	incidentsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "incidents_total",
			Help:      "Total incidents processed by result",
		},
		[]string{"result"},
	)

	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "run_duration_seconds",
			Help:      "Time to complete one ingestion run",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)
)

func recordRun(outcome string, duration time.Duration) {
	ingestRuns.WithLabelValues(outcome).Inc()
	runDuration.Observe(duration.Seconds())
}

func recordIncident(result string) {
	incidentsProcessed.WithLabelValues(result).Inc()
}
