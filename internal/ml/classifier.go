// Package ml provides the win probability classifier used when no match rule
// settles the outcome. It includes the Classifier capability, a logistic
// regression model loaded from a persisted artifact, an HTTP client for a
// remote inference service, and metrics instrumentation.
//
// Classifiers are loaded once at startup and are read-only afterwards, so a
// single instance is safe to share between requests.
package ml

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"ipl-win-predictor/internal/features"

	"github.com/rs/zerolog/log"
)

var (
	// ErrClassifierUnavailable means the classifier could not be reached or
	// was never loaded.
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	// ErrInferenceFailed means the classifier answered but the answer is
	// unusable.
	ErrInferenceFailed = errors.New("classifier inference failed")
)

// DefaultTolerance bounds how far loss+win may drift from 1.
const DefaultTolerance = 1e-6

// Probabilities is the classifier output in class order: loss first, win
// second.
type Probabilities struct {
	Loss float64 `json:"loss"`
	Win  float64 `json:"win"`
}

// Classifier estimates the outcome probabilities of a chase.
type Classifier interface {
	Estimate(ctx context.Context, v features.Vector) (Probabilities, error)
}

// MetricsInterface defines metrics methods needed by the classifier
type MetricsInterface interface {
	ClassifierCallsInc()
	ClassifierFailuresInc()
	ClassifierLatencyObserve(float64)
	ModelAgeSet(float64)
}

// CheckProbabilities verifies p is a proper two-class distribution.
func CheckProbabilities(p Probabilities, tolerance float64) error {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	for name, v := range map[string]float64{"loss": p.Loss, "win": p.Win} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: %s probability %v out of range", ErrInferenceFailed, name, v)
		}
	}
	if sum := p.Loss + p.Win; math.Abs(sum-1) > tolerance {
		return fmt.Errorf("%w: probabilities sum to %v", ErrInferenceFailed, sum)
	}
	return nil
}

type instrumented struct {
	next    Classifier
	metrics MetricsInterface
}

// Instrumented wraps c so every call is counted and timed.
func Instrumented(c Classifier, m MetricsInterface) Classifier {
	if m == nil {
		return c
	}
	return &instrumented{next: c, metrics: m}
}

func (i *instrumented) Estimate(ctx context.Context, v features.Vector) (Probabilities, error) {
	start := time.Now()
	i.metrics.ClassifierCallsInc()

	p, err := i.next.Estimate(ctx, v)
	i.metrics.ClassifierLatencyObserve(time.Since(start).Seconds())
	if err != nil {
		i.metrics.ClassifierFailuresInc()
		log.Error().Err(err).Interface("features", v).Msg("classifier estimate failed")
		return Probabilities{}, err
	}

	log.Debug().
		Interface("features", v).
		Float64("loss", p.Loss).
		Float64("win", p.Win).
		Msg("classifier estimate")
	return p, nil
}
