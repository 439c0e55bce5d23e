package metrics

import "github.com/prometheus/client_golang/prometheus"

// DomainMetrics counts business events that have no natural HTTP signal.
type DomainMetrics struct {
	executions  *prometheus.CounterVec
	imageFetch  *prometheus.CounterVec
	cacheLookup *prometheus.CounterVec
}

func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	executions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agent_executions_logged_total",
		Help: "Agent executions reported by the automation engine.",
	}, []string{"success"})
	imageFetch := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "remote_image_fetch_total",
		Help: "Remote image downloads by outcome.",
	}, []string{"outcome"})
	cacheLookup := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_cache_lookups_total",
		Help: "Dashboard cache lookups by result.",
	}, []string{"result"})
	reg.MustRegister(executions, imageFetch, cacheLookup)
	return &DomainMetrics{executions: executions, imageFetch: imageFetch, cacheLookup: cacheLookup}
}

func (m *DomainMetrics) ExecutionLogged(success bool) {
	if m == nil || m.executions == nil {
		return
	}
	m.executions.WithLabelValues(boolLabel(success)).Inc()
}

// ImageFetch records a remote download outcome such as "stored" or "too_large".
func (m *DomainMetrics) ImageFetch(outcome string) {
	if m == nil || m.imageFetch == nil {
		return
	}
	m.imageFetch.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *DomainMetrics) CacheLookup(hit bool) {
	if m == nil || m.cacheLookup == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookup.WithLabelValues(result).Inc()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
