package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the run counters of one Controller.
type Metrics struct {
	RunsStarted  *prometheus.CounterVec
	RunsFinished *prometheus.CounterVec
	VisitedCells prometheus.Histogram
	ActiveRuns   prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// yields working but unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// runs_started_total counts launched runs per algorithm
		RunsStarted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gridpath",
			Subsystem: "session",
			Name:      "runs_started_total",
			Help:      "Search runs started, by algorithm.",
		}, []string{"algorithm"}),

		// runs_finished_total counts terminal outcomes
		RunsFinished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gridpath",
			Subsystem: "session",
			Name:      "runs_finished_total",
			Help:      "Search runs finished, by algorithm and outcome.",
		}, []string{"algorithm", "outcome"}),

		VisitedCells: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gridpath",
			Subsystem: "session",
			Name:      "run_visited_cells",
			Help:      "Cells expanded per finished run.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8), // 1 to 16384
		}),

		ActiveRuns: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "gridpath",
			Subsystem: "session",
			Name:      "active_runs",
			Help:      "Runs currently executing (0 or 1).",
		}),
	}
}
