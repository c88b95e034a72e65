package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	AssessmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readiness_assessments_total",
			Help: "Assessments run, by outcome (complete, partial, rejected, cached)",
		},
		[]string{"outcome"},
	)

	CategoryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readiness_category_failures_total",
			Help: "Categories that could not be scored, by failure kind",
		},
		[]string{"category", "kind"},
	)

	CategoryScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "readiness_category_score",
			Help:    "Distribution of normalized category scores",
			Buckets: []float64{0, 0.1, 0.25, 0.5, 0.75, 1, 2, 5, 10},
		},
		[]string{"category"},
	)
)

// ObserveJob records the outcome and duration of one worker job. An empty
// errorCode counts as success.
func ObserveJob(taskType, errorCode string, started time.Time) {
	WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(started).Seconds())
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}
