package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "volcano_alert"

// Cycle outcome label values.
const (
	OutcomeChanged   = "changed"
	OutcomeUnchanged = "unchanged"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)

// Notification outcome label values.
const (
	NotifySent   = "sent"
	NotifyFailed = "failed"
)

// Fetch stage label values.
const (
	StageLocate = "locate"
	StageParse  = "parse"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the update checker.
type Metrics struct {
	Cycles           *prometheus.CounterVec // labels: outcome={changed,unchanged,failed,skipped}
	CyclesCoalesced  prometheus.Counter
	CycleDuration    prometheus.Histogram
	FetchDuration    *prometheus.HistogramVec // labels: stage={locate,parse}
	Notifications    *prometheus.CounterVec   // labels: outcome={sent,failed}
	SchedulerRunning prometheus.Gauge
	LastLevel        *prometheus.GaugeVec // labels: level
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Cycles,
		m.CyclesCoalesced,
		m.CycleDuration,
		m.FetchDuration,
		m.Notifications,
		m.SchedulerRunning,
		m.LastLevel,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Update-check cycles by outcome.",
		}, []string{"outcome"}),
		CyclesCoalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_coalesced_total",
			Help:      "Scheduled triggers dropped because a cycle was still running.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete update-check cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 40},
		}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Source page fetch and extraction duration by stage.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"stage"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Push notifications by outcome.",
		}, []string{"outcome"}),
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduler_running",
			Help:      "1 when the scheduler is active, 0 when shut down.",
		}),
		LastLevel: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_level_info",
			Help:      "1 for the most recently persisted hazard level.",
		}, []string{"level"}),
	}
}

// SetLastLevel marks level as the only current hazard level.
func (m *Metrics) SetLastLevel(level string) {
	if level == "" {
		return
	}
	m.LastLevel.Reset()
	m.LastLevel.WithLabelValues(level).Set(1)
}
