package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the gateway's Prometheus collectors.
type Metrics struct {
	registry         *prometheus.Registry
	requests         *prometheus.CounterVec
	latency          *prometheus.HistogramVec
	emissionsLogged  *prometheus.CounterVec
	emissionsKg      prometheus.Counter
	emissionsDeleted prometheus.Counter
}

// NewMetrics registers collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carbontrack_http_requests_total",
			Help: "HTTP requests handled by the gateway",
		}, []string{"method", "route", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carbontrack_http_request_duration_seconds",
			Help:    "Latency of gateway HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		emissionsLogged: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carbontrack_emissions_logged_total",
			Help: "Emission records created, by activity type",
		}, []string{"type"}),
		emissionsKg: factory.NewCounter(prometheus.CounterOpts{
			Name: "carbontrack_emissions_logged_kg_total",
			Help: "Kilograms of CO2 logged",
		}),
		emissionsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "carbontrack_emissions_deleted_total",
			Help: "Emission records deleted",
		}),
	}
}

// Handler exposes the registry in the text exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observe(method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) recordLogged(activity string, kg float64) {
	m.emissionsLogged.WithLabelValues(activity).Inc()
	m.emissionsKg.Add(kg)
}

func (m *Metrics) recordDeleted() {
	m.emissionsDeleted.Inc()
}
