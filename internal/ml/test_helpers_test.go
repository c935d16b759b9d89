package ml

import (
	"context"
	"sync"

	"ipl-win-predictor/internal/features"
)

// MockMetrics implements MetricsInterface for testing
type MockMetrics struct {
	mu         sync.Mutex
	calls      int
	failures   int
	latencySum float64
	modelAge   float64
}

func (m *MockMetrics) ClassifierCallsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
}

func (m *MockMetrics) ClassifierFailuresInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func (m *MockMetrics) ClassifierLatencyObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencySum += v
}

func (m *MockMetrics) ModelAgeSet(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelAge = v
}

// stubClassifier returns a fixed answer.
type stubClassifier struct {
	p   Probabilities
	err error
}

func (s stubClassifier) Estimate(context.Context, features.Vector) (Probabilities, error) {
	return s.p, s.err
}

const testModel = `
version: "test-1"
intercept: 0.5
numeric:
  runs_left: -0.03
  balls_left: 0.01
  wickets: 0.35
  total_runs_x: -0.002
  crr: 0.05
  rrr: -0.35
categorical:
  batting_team:
    Mumbai Indians: 0.2
  city:
    Mumbai: 0.1
`
