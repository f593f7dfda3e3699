package gateway

import "github.com/prometheus/client_golang/prometheus"

type serverMetrics struct {
	requests *prometheus.CounterVec
	cache    *prometheus.CounterVec
	outcomes prometheus.Counter
}

func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	m := &serverMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qgate",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "RunQuil requests by gRPC status code.",
		}, []string{"code"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qgate",
			Subsystem: "gateway",
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by result.",
		}, []string{"result"}),
		outcomes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qgate",
			Subsystem: "gateway",
			Name:      "outcomes_streamed_total",
			Help:      "Readout bits sent to clients.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.requests, m.cache, m.outcomes)
	}

	return m
}
