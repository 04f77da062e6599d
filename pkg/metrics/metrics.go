package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "expense_tracker"

	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"

	StatusSuccess = "success"
	StatusFailure = "failure"
)

// OCRMetrics groups the receipt pipeline collectors. A nil *OCRMetrics is valid and records nothing.
type OCRMetrics struct {
	registry *prometheus.Registry

	attempts           *prometheus.CounterVec
	extractions        *prometheus.CounterVec
	extractionDuration *prometheus.HistogramVec
}

func NewOCRMetrics() *OCRMetrics {
	m := &OCRMetrics{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ocr",
			Name:      "attempts_total",
			Help:      "Recognition attempts by preprocessing variant and outcome.",
		}, []string{"variant", "outcome"}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "receipt",
			Name:      "extractions_total",
			Help:      "Receipt extractions by method and status.",
		}, []string{"method", "status"}),
		extractionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "receipt",
			Name:      "extraction_duration_seconds",
			Help:      "Wall time of a receipt extraction.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 45, 90, 180},
		}, []string{"method"}),
	}

	m.registry.MustRegister(
		m.attempts,
		m.extractions,
		m.extractionDuration,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

func (m *OCRMetrics) ObserveAttempt(variant, outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(variant, outcome).Inc()
}

func (m *OCRMetrics) ObserveExtraction(method, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(method, status).Inc()
	m.extractionDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Registry exposes the registry so HTTP-level collectors share one endpoint.
func (m *OCRMetrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *OCRMetrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
