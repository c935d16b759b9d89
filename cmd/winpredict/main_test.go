package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"ipl-win-predictor/internal/match"
	"ipl-win-predictor/internal/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useSampleModel(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CONFIG_FILE", "MODEL_SOURCE", "CLASSIFIER_URL", "LISTEN_PORT", "PROB_TOLERANCE", "CLASSIFIER_TIMEOUT", "CLASSIFIER_RETRIES"} {
		t.Setenv(key, "")
	}
	t.Setenv("MODEL_PATH", "../../models/model.yaml")
	t.Setenv("LOG_LEVEL", "error")
}

var chase = []string{
	"-batting", "Mumbai Indians",
	"-bowling", "Chennai Super Kings",
	"-city", "Mumbai",
	"-target", "180",
}

func TestRun_TargetAchieved(t *testing.T) {
	useSampleModel(t)

	var out bytes.Buffer
	args := append(append([]string{}, chase...), "-score", "181", "-overs", "19.2", "-wickets", "4")
	require.NoError(t, run(args, &out))

	assert.Contains(t, out.String(), "Mumbai Indians - 100%")
	assert.Contains(t, out.String(), "Chennai Super Kings - 0%")
	assert.Contains(t, out.String(), "Target achieved! Batting team wins.")
}

func TestRun_ModelEstimateJSON(t *testing.T) {
	useSampleModel(t)

	var out bytes.Buffer
	args := append(append([]string{}, chase...), "-score", "90", "-overs", "10.2", "-wickets", "3", "-json")
	require.NoError(t, run(args, &out))

	var outcome resolver.Outcome
	require.NoError(t, json.Unmarshal(out.Bytes(), &outcome))
	assert.Equal(t, resolver.TagModelEstimate, outcome.Tag)
	assert.InDelta(t, 1.0, outcome.Win+outcome.Loss, 1e-9)
	assert.Equal(t, 58, outcome.BallsLeft)
}

func TestRun_Rejections(t *testing.T) {
	useSampleModel(t)

	tests := []struct {
		name string
		args []string
	}{
		{"invalid overs", append(append([]string{}, chase...), "-overs", "18.7")},
		{"unknown city", []string{"-batting", "Mumbai Indians", "-bowling", "Chennai Super Kings", "-city", "Lahore", "-target", "150"}},
		{"same teams", []string{"-batting", "Mumbai Indians", "-bowling", "Mumbai Indians", "-city", "Mumbai", "-target", "150"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Error(t, run(tt.args, &out))
			assert.Empty(t, out.String())
		})
	}
}

func TestRun_InvalidOversIsFormatError(t *testing.T) {
	useSampleModel(t)

	err := run(append(append([]string{}, chase...), "-overs", "3.6"), &bytes.Buffer{})
	assert.ErrorIs(t, err, match.ErrInvalidOversFormat)
}

func TestRun_List(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-list"}, &out))

	assert.Contains(t, out.String(), "Royal Challengers Bangalore")
	assert.Contains(t, out.String(), "Bengaluru")
	assert.Contains(t, out.String(), "19.5 20.0")
}
