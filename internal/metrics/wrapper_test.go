package metrics

import (
	"testing"

	"ipl-win-predictor/internal/ml"
	"ipl-win-predictor/internal/resolver"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ml.MetricsInterface       = (*Wrapper)(nil)
	_ resolver.MetricsInterface = (*Wrapper)(nil)
)

func TestNewWithRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)
	require.NotNil(t, m)

	// Registering the same names twice on one registry must panic.
	assert.Panics(t, func() { NewWithRegistry(registry) })
}

func TestWrapper_Counters(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())
	w := NewWrapper(m)

	w.ClassifierCallsInc()
	w.ClassifierCallsInc()
	w.ClassifierFailuresInc()
	w.OutcomeInc("all_out")
	w.OutcomeInc("model_estimate")
	w.OutcomeInc("model_estimate")
	w.RejectionInc("invalid_overs")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ClassifierCalls))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClassifierFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("all_out")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("model_estimate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("invalid_overs")))
}

func TestWrapper_GaugeAndHistograms(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)
	w := NewWrapper(m)

	w.ModelAgeSet(3600)
	assert.Equal(t, 3600.0, testutil.ToFloat64(m.ModelAge))

	w.ClassifierLatencyObserve(0.002)
	w.WinProbabilityObserve(0.42)
	assert.Equal(t, 1, testutil.CollectAndCount(m.ClassifierLatency))
	assert.Equal(t, 1, testutil.CollectAndCount(m.WinProbability))

	families, err := registry.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	for _, want := range []string{"classifier_latency_seconds", "win_probability", "model_age_seconds"} {
		assert.True(t, names[want], "missing metric %s", want)
	}
}
