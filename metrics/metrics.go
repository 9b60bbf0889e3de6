package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

type Metrics struct {
	Registry       *prometheus.Registry
	Requests       *prometheus.CounterVec
	Operations     *prometheus.CounterVec
	ChunksIngested prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		Registry: registry,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "namespace_operations_total",
			Help: "Namespace operations by name and result.",
		}, []string{"operation", "result"}),
		ChunksIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chunks_ingested_total",
			Help: "Chunk records written to the vector store.",
		}),
	}
	registry.MustRegister(m.Requests, m.Operations, m.ChunksIngested)
	return m
}

// ObserveOperation counts one namespace operation; a nil receiver is a no-op.
func (m *Metrics) ObserveOperation(operation string, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.Operations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) AddChunks(n int) {
	if m == nil {
		return
	}
	m.ChunksIngested.Add(float64(n))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
