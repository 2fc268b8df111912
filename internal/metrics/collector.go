// Package metrics exposes Prometheus metrics for the studio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"imagestudio/internal/domain"
)

// Collector owns a private registry so several collectors can coexist in
// one process.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	generationsTotal     *prometheus.CounterVec
	generationDuration   *prometheus.HistogramVec
	generationsRejected  prometheus.Counter
	generationsDiscarded prometheus.Counter
	generationsInFlight  prometheus.Gauge
}

// NewCollector registers every metric under namespace. provider labels the
// generation metrics.
func NewCollector(namespace, provider string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	constLabels := prometheus.Labels{"provider": provider}

	return &Collector{
		registry: reg,
		httpRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		generationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "generations_total",
			Help:        "Generations settled into the visible state, by phase",
			ConstLabels: constLabels,
		}, []string{"phase"}),
		generationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "generation_duration_seconds",
			Help:        "Remote image call duration in seconds",
			Buckets:     []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			ConstLabels: constLabels,
		}, []string{"phase"}),
		generationsRejected: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_rejected_total",
			Help:      "Submissions rejected by validation without a remote call",
		}),
		generationsDiscarded: f.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "generations_discarded_total",
			Help:        "Results dropped because a newer submission was issued",
			ConstLabels: constLabels,
		}),
		generationsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "generations_in_flight",
			Help:        "Remote image calls currently running",
			ConstLabels: constLabels,
		}),
	}
}

// Registry returns the registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// TrackGauge exposes fn as a gauge, sampled at scrape time.
func (c *Collector) TrackGauge(namespace, name, help string, fn func() float64) {
	promauto.With(c.registry).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn)
}

// RecordHTTPRequest counts one served request.
func (c *Collector) RecordHTTPRequest(method, route string, status int, took time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

func (c *Collector) Rejected() { c.generationsRejected.Inc() }

func (c *Collector) Submitted() { c.generationsInFlight.Inc() }

func (c *Collector) Settled(phase domain.Phase, took time.Duration) {
	c.generationsInFlight.Dec()
	c.generationsTotal.WithLabelValues(phase.String()).Inc()
	c.generationDuration.WithLabelValues(phase.String()).Observe(took.Seconds())
}

func (c *Collector) Discarded() {
	c.generationsInFlight.Dec()
	c.generationsDiscarded.Inc()
}
