package qgate

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

/*
Metrics tracks executions and pool jobs. Counters are exported to
Prometheus through the registerer given to NewMetrics, and a snapshot is
available from ExportMetrics for callers that do not scrape.
*/
type Metrics struct {
	mu sync.RWMutex

	executions     *prometheus.CounterVec
	shots          *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	jobs           *prometheus.CounterVec
	breakerRejects prometheus.Counter

	ExecutionCount    int64
	FailureCount      int64
	ShotCount         int64
	JobCount          int64
	JobFailures       int64
	AverageLatency    time.Duration
	LastExpectation   float64
	SchedulingFailure int64
}

// NewMetrics registers the collectors on reg. A nil reg keeps them private.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qgate",
			Name:      "executions_total",
			Help:      "Execute calls by executor mode and result.",
		}, []string{"mode", "result"}),
		shots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qgate",
			Name:      "shots_total",
			Help:      "Shots collected by executor mode.",
		}, []string{"mode"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "qgate",
			Name:      "execution_duration_seconds",
			Help:      "Wall time of execute calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qgate",
			Name:      "pool_jobs_total",
			Help:      "Pool jobs by result.",
		}, []string{"result"}),
		breakerRejects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qgate",
			Name:      "circuit_breaker_rejections_total",
			Help:      "Jobs refused because their circuit breaker was open.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.executions, m.shots, m.latency, m.jobs, m.breakerRejects)
	}

	return m
}

func (m *Metrics) recordExecution(mode string, start time.Time, shots int, expectation float64, err error) {
	if m == nil {
		return
	}

	duration := time.Since(start)
	result := "ok"
	if err != nil {
		result = "error"
	}

	m.executions.WithLabelValues(mode, result).Inc()
	m.latency.WithLabelValues(mode).Observe(duration.Seconds())
	if err == nil {
		m.shots.WithLabelValues(mode).Add(float64(shots))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.ExecutionCount++
	m.AverageLatency = (m.AverageLatency*time.Duration(m.ExecutionCount-1) + duration) / time.Duration(m.ExecutionCount)

	if err != nil {
		m.FailureCount++
		return
	}

	m.ShotCount += int64(shots)
	m.LastExpectation = expectation
}

func (m *Metrics) recordJob(err error) {
	if m == nil {
		return
	}

	result := "ok"
	if err != nil {
		result = "error"
	}
	m.jobs.WithLabelValues(result).Inc()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.JobCount++
	if err != nil {
		m.JobFailures++
	}
}

func (m *Metrics) recordBreakerReject() {
	if m == nil {
		return
	}

	m.breakerRejects.Inc()
}

func (m *Metrics) recordSchedulingFailure() {
	if m == nil {
		return
	}

	m.mu.Lock()
	m.SchedulingFailure++
	m.mu.Unlock()
}

// ExportMetrics returns a point-in-time snapshot.
func (m *Metrics) ExportMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"executions":         m.ExecutionCount,
		"failures":           m.FailureCount,
		"shots":              m.ShotCount,
		"jobs":               m.JobCount,
		"job_failures":       m.JobFailures,
		"avg_latency_ms":     m.AverageLatency.Milliseconds(),
		"last_expectation":   m.LastExpectation,
		"scheduling_failure": m.SchedulingFailure,
	}
}
