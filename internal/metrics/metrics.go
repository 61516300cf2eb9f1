// Package metrics exposes prometheus instrumentation for the pipeline stages.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the collectors of one process.
type Recorder struct {
	registry     *prometheus.Registry
	completions  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	throttleWait prometheus.Histogram
	parseFailure prometheus.Counter
	synthesis    *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
}

// NewRecorder creates a Recorder registered on its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lughat",
			Name:      "completions_total",
			Help:      "Completion calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lughat",
			Name:      "completion_seconds",
			Help:      "Completion call latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"provider"}),
		throttleWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lughat",
			Name:      "throttle_wait_seconds",
			Help:      "Time callers spent waiting for the throttle.",
			Buckets:   []float64{0, 0.1, 0.5, 1, 1.5, 2, 5},
		}),
		parseFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lughat",
			Name:      "parse_failures_total",
			Help:      "Structured replies that could not be decoded.",
		}),
		synthesis: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lughat",
			Name:      "synthesis_total",
			Help:      "Speech synthesis calls by outcome.",
		}, []string{"outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lughat",
			Name:      "cache_lookups_total",
			Help:      "Session cache lookups by result.",
		}, []string{"result"}),
	}

	r.registry.MustRegister(r.completions, r.latency, r.throttleWait,
		r.parseFailure, r.synthesis, r.cacheLookups)
	return r
}

// ObserveCompletion records one completion call.
func (r *Recorder) ObserveCompletion(provider string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.completions.WithLabelValues(provider, outcome(err)).Inc()
	r.latency.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveThrottleWait records how long a caller was held back.
func (r *Recorder) ObserveThrottleWait(d time.Duration) {
	if r == nil {
		return
	}
	r.throttleWait.Observe(d.Seconds())
}

// IncParseFailure counts an undecodable structured reply.
func (r *Recorder) IncParseFailure() {
	if r == nil {
		return
	}
	r.parseFailure.Inc()
}

// ObserveSynthesis records one speech synthesis call.
func (r *Recorder) ObserveSynthesis(err error) {
	if r == nil {
		return
	}
	r.synthesis.WithLabelValues(outcome(err)).Inc()
}

// ObserveCacheLookup records a session cache hit or miss.
func (r *Recorder) ObserveCacheLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the collected metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
