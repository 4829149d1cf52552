// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the service counters on a private registry so tests can
// build independent instances.
type Metrics struct {
	registry *prometheus.Registry

	ArtifactsCreated prometheus.Counter
	ArtifactsDeleted prometheus.Counter
	AuthFailures     prometheus.Counter
	Requests         *prometheus.CounterVec
}

// New builds and registers the full counter set.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ArtifactsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qrmanager_artifacts_created_total",
			Help: "QR code artifacts created.",
		}),
		ArtifactsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qrmanager_artifacts_deleted_total",
			Help: "QR code artifacts deleted.",
		}),
		AuthFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qrmanager_auth_failures_total",
			Help: "Rejected logins and bearer tokens.",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qrmanager_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "code"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.ArtifactsCreated,
		m.ArtifactsDeleted,
		m.AuthFailures,
		m.Requests,
	)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
