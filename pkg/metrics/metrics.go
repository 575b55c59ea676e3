// Package metrics exposes Prometheus collectors for generation and rendering.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-genui/pkg/render"
)

const namespace = "genui"

// Generation outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

type Metrics struct {
	registry     *prometheus.Registry
	generations  *prometheus.CounterVec
	generateTime prometheus.Histogram
	extracted    prometheus.Counter
	rejected     prometheus.Counter
	renders      *prometheus.CounterVec
	renderTime   *prometheus.HistogramVec
	rendered     prometheus.Counter
	placeholders *prometheus.CounterVec
	droppedProps prometheus.Counter
}

// New registers every collector on a fresh registry, plus the Go and process
// collectors when runtime is true.
func New(runtime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Generation requests by outcome.",
		}, []string{"outcome"}),
		generateTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generator_duration_seconds",
			Help:      "Time spent waiting on the text generator.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		extracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extracted_nodes_total",
			Help:      "Top-level component nodes recovered from model output.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_candidates_total",
			Help:      "JSON values found in model output that were not component nodes.",
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Render passes by renderer.",
		}, []string{"renderer"}),
		renderTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Render pass latency by renderer.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"renderer"}),
		rendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rendered_nodes_total",
			Help:      "Component nodes visited while rendering.",
		}),
		placeholders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placeholders_total",
			Help:      "Placeholders rendered in place of components, by reason.",
		}, []string{"kind"}),
		droppedProps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_props_total",
			Help:      "Props discarded at the schema boundary.",
		}),
	}
	m.registry.MustRegister(
		m.generations, m.generateTime, m.extracted, m.rejected,
		m.renders, m.renderTime, m.rendered, m.placeholders, m.droppedProps,
	)
	if runtime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry exposes the underlying registry for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveGeneration(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(outcome).Inc()
	if elapsed > 0 {
		m.generateTime.Observe(elapsed.Seconds())
	}
}

// ObserveExtraction records accepted nodes and rejected candidates.
func (m *Metrics) ObserveExtraction(accepted, rejected int) {
	if m == nil {
		return
	}
	m.extracted.Add(float64(accepted))
	m.rejected.Add(float64(rejected))
}

func (m *Metrics) ObserveRender(renderer string, stats render.Stats, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(renderer).Inc()
	m.renderTime.WithLabelValues(renderer).Observe(elapsed.Seconds())
	m.rendered.Add(float64(stats.Nodes))
	m.droppedProps.Add(float64(stats.DroppedProps))
	for kind, count := range map[string]int{
		"unknown":    stats.Unknown,
		"truncated":  stats.Truncated,
		"disallowed": stats.Disallowed,
		"malformed":  stats.Malformed,
		"failed":     stats.Failed,
	} {
		if count > 0 {
			m.placeholders.WithLabelValues(kind).Add(float64(count))
		}
	}
}
