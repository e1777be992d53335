// Package scheduler — Prometheus instrumentation for the poll cycle.
//
// Label cardinality is bounded: watch checks are labeled only by their
// terminal status, never by watch ID or query.
package scheduler

import "github.com/prometheus/client_golang/prometheus"

var (
	// cyclesTotal counts started poll cycles.
	cyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "poll_cycles_total",
		Help: "Total number of poll cycles started.",
	})

	// cycleDuration records full-cycle wall time in seconds.
	cycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "poll_cycle_duration_seconds",
		Help:    "Duration of complete poll cycles in seconds.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	// watchChecks counts per-watch outcomes by status.
	watchChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watch_checks_total",
			Help: "Total watch checks by terminal status.",
		},
		[]string{"status"},
	)

	// alertsSent counts successfully delivered watch alert emails.
	alertsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "watch_alerts_sent_total",
		Help: "Total watch alert emails successfully handed to the mailer.",
	})
)

func init() {
	prometheus.MustRegister(cyclesTotal, cycleDuration, watchChecks, alertsSent)
}
