package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AuthMetrics tracks account lifecycle operations by outcome.
type AuthMetrics struct {
	Operations *prometheus.CounterVec
}

// NewAuthMetrics registers auth operation counters on the given registry.
func NewAuthMetrics(reg *prometheus.Registry) *AuthMetrics {
	m := &AuthMetrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_operations_total",
				Help:      "Account lifecycle operations by operation and result",
			},
			[]string{"operation", "result"},
		),
	}
	reg.MustRegister(m.Operations)
	return m
}

// Observe records one operation outcome.
func (m *AuthMetrics) Observe(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.Operations.WithLabelValues(operation, result).Inc()
}
