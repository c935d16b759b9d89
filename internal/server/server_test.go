package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ipl-win-predictor/internal/features"
	"ipl-win-predictor/internal/metrics"
	"ipl-win-predictor/internal/ml"
	"ipl-win-predictor/internal/resolver"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClassifier struct {
	p   ml.Probabilities
	err error
}

func (f fixedClassifier) Estimate(context.Context, features.Vector) (ml.Probabilities, error) {
	return f.p, f.err
}

func newTestServer(t *testing.T, c ml.Classifier) (*httptest.Server, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	w := metrics.NewWrapper(metrics.NewWithRegistry(registry))
	r := resolver.New(ml.Instrumented(c, w), resolver.WithMetrics(w))

	srv := httptest.NewServer(New(r, registry, 8080, map[string]string{"model_source": "test"}).Handler())
	t.Cleanup(srv.Close)
	return srv, registry
}

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url+"/predict", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

const midChase = `{
	"batting_team": "Mumbai Indians",
	"bowling_team": "Chennai Super Kings",
	"city": "Mumbai",
	"target": 180,
	"score": 90,
	"overs": 10.2,
	"wickets_out": 3
}`

func TestPredict_ModelEstimate(t *testing.T) {
	srv, _ := newTestServer(t, fixedClassifier{p: ml.Probabilities{Loss: 0.574, Win: 0.426}})

	resp, body := post(t, srv.URL, midChase)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 43.0, body["win_percent"])
	assert.Equal(t, 57.0, body["loss_percent"])
	assert.NotEmpty(t, body["request_id"])

	outcome := body["outcome"].(map[string]any)
	assert.Equal(t, "model_estimate", outcome["tag"])
	assert.Equal(t, 58.0, outcome["balls_left"])
	assert.Equal(t, "90 runs needed in 58 balls with 7 wickets in hand.", outcome["summary"])
}

func TestPredict_Override(t *testing.T) {
	srv, _ := newTestServer(t, fixedClassifier{err: ml.ErrClassifierUnavailable})

	body := strings.Replace(midChase, `"score": 90`, `"score": 180`, 1)
	resp, out := post(t, srv.URL, body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 100.0, out["win_percent"])
	assert.Equal(t, "target_achieved", out["outcome"].(map[string]any)["tag"])
}

func TestPredict_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{
			name:   "invalid overs",
			body:   strings.Replace(midChase, `"overs": 10.2`, `"overs": 18.7`, 1),
			status: http.StatusBadRequest,
			field:  "overs",
		},
		{
			name:   "overs with two decimals",
			body:   strings.Replace(midChase, `"overs": 10.2`, `"overs": 18.25`, 1),
			status: http.StatusBadRequest,
			field:  "overs",
		},
		{
			name:   "same teams",
			body:   strings.Replace(midChase, "Chennai Super Kings", "Mumbai Indians", 1),
			status: http.StatusBadRequest,
			field:  "bowling_team",
		},
		{
			name:   "unknown city",
			body:   strings.Replace(midChase, `"city": "Mumbai"`, `"city": "Lahore"`, 1),
			status: http.StatusBadRequest,
			field:  "city",
		},
		{
			name:   "unknown field",
			body:   strings.Replace(midChase, `"target"`, `"innings": 2, "target"`, 1),
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, fixedClassifier{p: ml.Probabilities{Loss: 0.5, Win: 0.5}})
			resp, body := post(t, srv.URL, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
			if tt.field != "" {
				assert.Equal(t, tt.field, body["field"])
			}
		})
	}
}

func TestPredict_ClassifierErrors(t *testing.T) {
	tests := []struct {
		name   string
		c      ml.Classifier
		status int
	}{
		{"unavailable", fixedClassifier{err: ml.ErrClassifierUnavailable}, http.StatusServiceUnavailable},
		{"inference failed", fixedClassifier{err: ml.ErrInferenceFailed}, http.StatusBadGateway},
		{"bad distribution", fixedClassifier{p: ml.Probabilities{Loss: 0.9, Win: 0.9}}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.c)
			resp, body := post(t, srv.URL, midChase)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Nil(t, body["win_percent"])
		})
	}
}

func TestPredict_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, fixedClassifier{})

	resp, err := http.Get(srv.URL + "/predict")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestPredict_RequestIDEchoed(t *testing.T) {
	srv, _ := newTestServer(t, fixedClassifier{p: ml.Probabilities{Loss: 0.5, Win: 0.5}})

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/predict", strings.NewReader(midChase))
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body PredictionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "abc-123", body.RequestID)
}

func TestDomain(t *testing.T) {
	srv, _ := newTestServer(t, fixedClassifier{})

	resp, err := http.Get(srv.URL + "/domain?batting=Mumbai%20Indians")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body DomainResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Teams, 7)
	assert.Len(t, body.Cities, 29)
	assert.Len(t, body.Overs, 121)
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, fixedClassifier{p: ml.Probabilities{Loss: 0.5, Win: 0.5}})
	post(t, srv.URL, midChase)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, true, health["healthy"])
	assert.Equal(t, "test", health["model_source"])

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `outcomes_total{tag="model_estimate"} 1`)
	assert.Contains(t, string(raw), "classifier_calls_total 1")
}
