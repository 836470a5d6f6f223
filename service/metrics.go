package service

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.lumeweb.com/accountd/core"
)

var _ core.MetricsService = (*MetricsServiceDefault)(nil)

func init() {
	core.RegisterService(core.ServiceInfo{
		ID: core.METRICS_SERVICE,
		Factory: func() (core.Service, []core.ContextBuilderOption, error) {
			return NewMetricsService(prometheus.NewRegistry()), nil, nil
		},
	})
}

type MetricsServiceDefault struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
}

// NewMetricsService registers the account counters plus the Go and process
// collectors on registry.
func NewMetricsService(registry *prometheus.Registry) *MetricsServiceDefault {
	m := &MetricsServiceDefault{
		registry: registry,
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accountd_account_operations_total",
				Help: "Total number of account operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
	}

	registry.MustRegister(
		m.operations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *MetricsServiceDefault) ID() string {
	return core.METRICS_SERVICE
}

func (m *MetricsServiceDefault) RecordAccountOperation(operation string, outcome string) {
	m.operations.WithLabelValues(operation, outcome).Inc()
}

func (m *MetricsServiceDefault) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Operations exposes the counter for tests.
func (m *MetricsServiceDefault) Operations() *prometheus.CounterVec {
	return m.operations
}
