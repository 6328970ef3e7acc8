package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Pipeline metrics
	NotificationsTotal  *prometheus.CounterVec
	DispatchLatency     prometheus.Histogram
	DedupSuppressions   prometheus.Counter
	EventsClassified    *prometheus.CounterVec

	// Scheduler metrics
	SchedulerJobRuns     *prometheus.CounterVec
	SchedulerJobsActive  prometheus.Gauge
	SchedulerJobDuration prometheus.Histogram
}

// NewMetrics creates all application metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		NotificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notifications by terminal status",
		}, []string{"channel", "status"}),
		DispatchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent dispatching notifications to channels",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		DedupSuppressions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dedup_suppressions_total",
			Help:      "Total number of notifications suppressed as duplicates",
		}),
		EventsClassified: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_classified_total",
			Help:      "Events classified by source and outcome",
		}, []string{"source", "outcome"}),

		SchedulerJobRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_job_runs_total",
			Help:      "Scheduled job executions by outcome",
		}, []string{"outcome"}),
		SchedulerJobsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduler_jobs_active",
			Help:      "Number of jobs currently registered with the scheduler",
		}),
		SchedulerJobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scheduler_job_duration_seconds",
			Help:      "Duration of scheduled job executions",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
	}
}
