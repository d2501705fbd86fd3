// Package metrics holds the Prometheus collectors shared by the LLM layer,
// quiz sessions and the HTTP API. Every method is safe on a nil *Metrics so
// callers can run without instrumentation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors registered on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	LLMRequests     *prometheus.CounterVec
	LLMDuration     *prometheus.HistogramVec
	QuizFallbacks   *prometheus.CounterVec
	QuizzesFinished *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		LLMRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edugenie_llm_requests_total",
				Help: "LLM requests by provider model and outcome",
			},
			[]string{"provider", "outcome"},
		),
		LLMDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edugenie_llm_request_duration_seconds",
				Help:    "Latency of LLM requests",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"provider"},
		),
		QuizFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edugenie_quiz_fallbacks_total",
				Help: "Quizzes served from placeholder questions",
			},
			[]string{"reason"},
		),
		QuizzesFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edugenie_quizzes_finished_total",
				Help: "Finished quiz sessions by effective difficulty",
			},
			[]string{"difficulty"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edugenie_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edugenie_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.LLMRequests,
		m.LLMDuration,
		m.QuizFallbacks,
		m.QuizzesFinished,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveLLM records one provider call.
func (m *Metrics) ObserveLLM(provider string, err error, cached bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case cached:
		outcome = "cached"
	}
	m.LLMRequests.WithLabelValues(provider, outcome).Inc()
	if !cached {
		m.LLMDuration.WithLabelValues(provider).Observe(d.Seconds())
	}
}

// QuizFallback counts a quiz that fell back to placeholders.
func (m *Metrics) QuizFallback(reason string) {
	if m == nil {
		return
	}
	m.QuizFallbacks.WithLabelValues(reason).Inc()
}

// QuizFinished counts a finished quiz session.
func (m *Metrics) QuizFinished(difficulty string) {
	if m == nil {
		return
	}
	m.QuizzesFinished.WithLabelValues(difficulty).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
