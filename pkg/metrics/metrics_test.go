package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestTaskMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewTaskMetrics(reg)
	task := "send_email"
	metrics.ObserveDuration(task, 250*time.Millisecond)
	metrics.IncSuccess(task)
	metrics.IncFailure(task)
	metrics.IncEnqueued(task)
	metrics.IncEnqueued(task)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "task_success_total", "task", task); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "task_enqueued_total", "task", task); err != nil {
		t.Fatalf("fetch enqueued: %v", err)
	} else if got != 2 {
		t.Fatalf("expected enqueued=2, got %f", got)
	}
	if got, err := fetchHistogramSum(mfs, "task_duration_seconds", "task", task); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestHTTPMetricsUsesUnknownRouteLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics(reg)
	metrics.Observe("", "GET", 404, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "http_requests_total", "route", "unknown"); err != nil {
		t.Fatalf("fetch requests: %v", err)
	} else if got != 1 {
		t.Fatalf("expected requests=1, got %f", got)
	}
}

func TestDomainMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewDomainMetrics(reg)
	metrics.ExecutionLogged(true)
	metrics.ExecutionLogged(false)
	metrics.ImageFetch("too_large")
	metrics.CacheLookup(true)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, _ := fetchCounterValue(mfs, "agent_executions_logged_total", "success", "false"); got != 1 {
		t.Fatalf("expected one failed execution, got %f", got)
	}
	if got, _ := fetchCounterValue(mfs, "remote_image_fetch_total", "outcome", "too_large"); got != 1 {
		t.Fatalf("expected one too_large fetch, got %f", got)
	}
	if got, _ := fetchCounterValue(mfs, "dashboard_cache_lookups_total", "result", "hit"); got != 1 {
		t.Fatalf("expected one cache hit, got %f", got)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var tasks *TaskMetrics
	tasks.IncSuccess("x")
	var httpm *HTTPMetrics
	httpm.Observe("/", "GET", 200, 0)
	NewDomainMetrics(nil).ImageFetch("ok")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
