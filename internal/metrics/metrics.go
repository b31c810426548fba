// Package metrics exposes routing and graph-build metrics to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all navigation metrics on a private Prometheus registry
type Registry struct {
	registry *prometheus.Registry

	RoutesTotal      *prometheus.CounterVec
	RouteDuration    prometheus.Histogram
	RouteIterations  prometheus.Histogram
	GraphNodes       prometheus.Gauge
	GraphEdges       prometheus.Gauge
	RebuildsTotal    *prometheus.CounterVec
	DiagnosticsTotal *prometheus.CounterVec
}

// NewRegistry creates a registry with every metric registered
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initRouteMetrics()
	r.initGraphMetrics()
	return r
}

func (r *Registry) initRouteMetrics() {
	r.RoutesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "indoornav_routes_total",
			Help: "Total number of route searches by outcome",
		},
		[]string{"status"},
	)

	r.RouteDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "indoornav_route_duration_seconds",
			Help:    "Route search duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	r.RouteIterations = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "indoornav_route_iterations",
			Help:    "Nodes selected from the open set per route search",
			Buckets: prometheus.ExponentialBuckets(4, 4, 8),
		},
	)
}

func (r *Registry) initGraphMetrics() {
	r.GraphNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "indoornav_graph_nodes",
			Help: "Number of nodes in the active graph",
		},
	)

	r.GraphEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "indoornav_graph_edges",
			Help: "Number of undirected edges in the active graph",
		},
	)

	r.RebuildsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "indoornav_rebuilds_total",
			Help: "Total number of graph rebuilds by result",
		},
		[]string{"result"},
	)

	r.DiagnosticsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "indoornav_diagnostics_total",
			Help: "Diagnostics reported while building graphs and searching routes",
		},
		[]string{"code"},
	)
}

// RecordRoute records one route search
func (r *Registry) RecordRoute(status string, duration time.Duration, iterations int) {
	r.RoutesTotal.WithLabelValues(status).Inc()
	r.RouteDuration.Observe(duration.Seconds())
	r.RouteIterations.Observe(float64(iterations))
}

// RecordRebuild records a rebuild attempt. Graph gauges only move on success.
func (r *Registry) RecordRebuild(ok bool, nodes, edges int) {
	if !ok {
		r.RebuildsTotal.WithLabelValues("failure").Inc()
		return
	}
	r.RebuildsTotal.WithLabelValues("success").Inc()
	r.GraphNodes.Set(float64(nodes))
	r.GraphEdges.Set(float64(edges))
}

// RecordDiagnostic counts one diagnostic by code
func (r *Registry) RecordDiagnostic(code string) {
	r.DiagnosticsTotal.WithLabelValues(code).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
