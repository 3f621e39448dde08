package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics tracks request-level failures.
type HTTPMetrics struct {
	ErrorsTotal *prometheus.CounterVec
}

// NewHTTPMetrics registers HTTP error counters on the given registry.
func NewHTTPMetrics(reg *prometheus.Registry) *HTTPMetrics {
	m := &HTTPMetrics{
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_errors_total",
				Help:      "Total HTTP errors by error kind",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.ErrorsTotal)
	return m
}
