package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ipl-win-predictor/internal/features"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// PredictionRequest is the body sent to a remote inference service.
type PredictionRequest struct {
	Features features.Vector `json:"features"`
}

// PredictionResponse is the body a remote inference service answers with.
// Probabilities are in class order: loss, win.
type PredictionResponse struct {
	Probabilities []float64 `json:"probabilities"`
	Prediction    int       `json:"prediction"`
	Error         string    `json:"error,omitempty"`
}

// RemoteClassifier calls an HTTP inference service, typically a small
// process serving the trained pipeline.
type RemoteClassifier struct {
	url  string
	rest *resty.Client
}

// NewRemote creates a client for the service at url. Transport errors and
// 5xx answers are retried up to retries times.
func NewRemote(url string, timeout time.Duration, retries int) *RemoteClassifier {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(2 * time.Second)
	}
	if retries > 0 {
		r.SetRetryCount(retries).
			SetRetryWaitTime(50 * time.Millisecond).
			SetRetryMaxWaitTime(500 * time.Millisecond).
			AddRetryCondition(func(resp *resty.Response, err error) bool {
				return err != nil || resp.StatusCode() >= http.StatusInternalServerError
			})
	}
	return &RemoteClassifier{url: url, rest: r}
}

// Estimate implements Classifier.
func (c *RemoteClassifier) Estimate(ctx context.Context, v features.Vector) (Probabilities, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(PredictionRequest{Features: v}).
		Post(c.url)
	if err != nil {
		log.Error().Err(err).Str("url", c.url).Msg("inference service unreachable")
		return Probabilities{}, fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
	}

	var body PredictionResponse
	if jerr := json.Unmarshal(resp.Body(), &body); jerr != nil && !resp.IsError() {
		return Probabilities{}, fmt.Errorf("%w: decode response: %v, body: %s", ErrInferenceFailed, jerr, resp.String())
	}

	if resp.StatusCode() >= http.StatusInternalServerError && body.Error == "" {
		return Probabilities{}, fmt.Errorf("%w: inference service returned %d", ErrClassifierUnavailable, resp.StatusCode())
	}
	if resp.IsError() || body.Error != "" {
		msg := body.Error
		if msg == "" {
			msg = resp.String()
		}
		return Probabilities{}, fmt.Errorf("%w: status %d: %s", ErrInferenceFailed, resp.StatusCode(), msg)
	}

	if len(body.Probabilities) != 2 {
		return Probabilities{}, fmt.Errorf("%w: expected 2 probabilities, got %d", ErrInferenceFailed, len(body.Probabilities))
	}
	return Probabilities{Loss: body.Probabilities[0], Win: body.Probabilities[1]}, nil
}
