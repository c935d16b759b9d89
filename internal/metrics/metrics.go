// Package metrics provides Prometheus metrics collection for the win predictor.
// It defines the outcome, rejection and classifier metrics exposed via the
// Prometheus metrics endpoint for monitoring and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the predictor.
type Metrics struct {
	// Resolution metrics
	Outcomes   *prometheus.CounterVec // Resolved outcomes by tag
	Rejections *prometheus.CounterVec // Rejected requests by reason

	// Classifier metrics
	ClassifierCalls    prometheus.Counter   // Total number of classifier calls
	ClassifierFailures prometheus.Counter   // Total number of failed classifier calls
	ClassifierLatency  prometheus.Histogram // Classifier call latency in seconds
	ModelAge           prometheus.Gauge     // Age of the loaded model in seconds
	WinProbability     prometheus.Histogram // Distribution of estimated win probabilities
}

// New creates and registers all Prometheus metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "outcomes_total",
			Help: "Total number of resolved outcomes by tag",
		}, []string{"tag"}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rejections_total",
			Help: "Total number of rejected prediction requests by reason",
		}, []string{"reason"}),
		ClassifierCalls: factory.NewCounter(prometheus.CounterOpts{
			Name: "classifier_calls_total",
			Help: "Total number of classifier calls",
		}),
		ClassifierFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "classifier_failures_total",
			Help: "Total number of failed classifier calls",
		}),
		ClassifierLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "classifier_latency_seconds",
			Help:    "Classifier call latency in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}),
		ModelAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "model_age_seconds",
			Help: "Age of the loaded model in seconds",
		}),
		WinProbability: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "win_probability",
			Help:    "Distribution of win probabilities returned",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}
}
