// Package metrics exposes Prometheus instrumentation for collection passes
// and the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HerbHall/podscope/internal/downward"
)

const namespace = "podscope"

// Recorder owns a private registry so tests and multiple servers in one
// process never collide on the default registerer.
type Recorder struct {
	registry *prometheus.Registry

	collections            prometheus.Counter
	factsMissing           prometheus.Gauge
	labels                 prometheus.Gauge
	labelSourceUnavailable prometheus.Counter
	httpRequests           *prometheus.CounterVec
	httpDuration           *prometheus.HistogramVec
}

// New creates a Recorder with Go runtime and process collectors attached.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		collections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collections_total",
			Help:      "Total number of metadata collection passes",
		}),
		factsMissing: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "facts_missing",
			Help:      "Runtime facts not supplied by the environment in the latest pass",
		}),
		labels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "labels",
			Help:      "Labels parsed from the labels file in the latest pass",
		}),
		labelSourceUnavailable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "label_source_unavailable_total",
			Help:      "Collection passes in which the labels file could not be read",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status code",
		}, []string{"route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"route"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.collections,
		r.factsMissing,
		r.labels,
		r.labelSourceUnavailable,
		r.httpRequests,
		r.httpDuration,
	)
	return r
}

// ObserveSnapshot records the outcome of one collection pass.
func (r *Recorder) ObserveSnapshot(s downward.Snapshot) {
	r.collections.Inc()
	r.factsMissing.Set(float64(s.Runtime.Missing()))
	if s.Labels.OK() {
		r.labels.Set(float64(len(s.Labels.Labels)))
		return
	}
	r.labels.Set(0)
	r.labelSourceUnavailable.Inc()
}

// ObserveRequest records one served HTTP request.
func (r *Recorder) ObserveRequest(route string, code int, d time.Duration) {
	r.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	r.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
