package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of one server.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ScoredEntities  prometheus.Counter
	Panics          prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pmpo_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pmpo_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"route"},
		),
		ScoredEntities: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pmpo_scored_entities_total",
				Help: "Total number of entities scored",
			},
		),
		Panics: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pmpo_http_panics_total",
				Help: "Total number of handler panics recovered",
			},
		),
	}
	reg.MustRegister(m.Requests, m.RequestDuration, m.ScoredEntities, m.Panics)
	return m
}
