package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TaskMetrics records execution data for background tasks pulled off the queue.
type TaskMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	enqueued *prometheus.CounterVec
}

// NewTaskMetrics registers the task metrics on the provided registerer.
func NewTaskMetrics(reg prometheus.Registerer) *TaskMetrics {
	if reg == nil {
		return &TaskMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "task_duration_seconds",
		Help:    "Duration of background tasks in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "task_success_total",
		Help: "Successful background task executions.",
	}, []string{"task"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "task_failure_total",
		Help: "Failed background task executions.",
	}, []string{"task"})
	enqueued := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "task_enqueued_total",
		Help: "Background tasks pushed to the queue.",
	}, []string{"task"})
	reg.MustRegister(duration, success, failure, enqueued)
	return &TaskMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		enqueued: enqueued,
	}
}

// ObserveDuration records the duration for the named task.
func (c *TaskMetrics) ObserveDuration(task string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(task)).Observe(duration.Seconds())
}

func (c *TaskMetrics) IncSuccess(task string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(task)).Inc()
}

func (c *TaskMetrics) IncFailure(task string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(task)).Inc()
}

func (c *TaskMetrics) IncEnqueued(task string) {
	if c == nil || c.enqueued == nil {
		return
	}
	c.enqueued.WithLabelValues(normalizeLabel(task)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
