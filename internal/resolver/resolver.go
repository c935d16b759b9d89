// Package resolver turns a match state into win and loss probabilities.
//
// Settled or trivially decided chases are resolved by an ordered list of
// rules; the first rule that applies decides the outcome. Everything else
// is handed to the injected classifier.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"ipl-win-predictor/internal/features"
	"ipl-win-predictor/internal/match"
	"ipl-win-predictor/internal/ml"

	"github.com/rs/zerolog/log"
)

// Tag identifies what produced an Outcome.
type Tag string

const (
	TagAllOut         Tag = "all_out"
	TagTargetAchieved Tag = "target_achieved"
	TagTrivialChase   Tag = "trivial_chase"
	TagOversExhausted Tag = "overs_exhausted"
	TagModelEstimate  Tag = "model_estimate"
)

// Rejection reasons reported to metrics.
const (
	ReasonInvalidOvers = "invalid_overs"
	ReasonUnavailable  = "classifier_unavailable"
	ReasonInference    = "inference_failed"
)

// MetricsInterface defines metrics methods needed by the resolver
type MetricsInterface interface {
	OutcomeInc(tag string)
	RejectionInc(reason string)
	WinProbabilityObserve(float64)
}

// Rule settles the outcome of a chase without consulting the classifier.
type Rule struct {
	Tag     Tag
	Applies func(s match.State, v features.Vector) bool
	Win     float64
}

// DefaultRules returns the match rules in priority order. All out is checked
// before target reached, so an innings that is all out is a loss even when
// the score nominally meets the target.
func DefaultRules() []Rule {
	return []Rule{
		{
			Tag:     TagAllOut,
			Applies: func(s match.State, _ features.Vector) bool { return s.WicketsOut >= match.MaxWickets },
			Win:     0,
		},
		{
			Tag:     TagTargetAchieved,
			Applies: func(s match.State, _ features.Vector) bool { return s.Score >= s.Target },
			Win:     1,
		},
		{
			Tag:     TagTrivialChase,
			Applies: func(_ match.State, v features.Vector) bool { return v.RunsLeft <= 1 && v.BallsLeft > 0 },
			Win:     1,
		},
		{
			Tag:     TagOversExhausted,
			Applies: func(s match.State, v features.Vector) bool { return v.BallsLeft <= 0 && s.Score < s.Target },
			Win:     0,
		},
	}
}

// Outcome is the resolved result for one match state.
type Outcome struct {
	Win       float64 `json:"win"`
	Loss      float64 `json:"loss"`
	Tag       Tag     `json:"tag"`
	Message   string  `json:"message,omitempty"`
	Summary   string  `json:"summary,omitempty"`
	RunsLeft  int     `json:"runs_left"`
	BallsLeft int     `json:"balls_left"`
	Wickets   int     `json:"wickets"`
}

// Percentages returns win and loss rounded to whole percent.
func (o Outcome) Percentages() (win, loss int) {
	return int(math.Round(o.Win * 100)), int(math.Round(o.Loss * 100))
}

// Resolver applies the match rules and falls back to a classifier.
type Resolver struct {
	rules      []Rule
	classifier ml.Classifier
	tolerance  float64
	metrics    MetricsInterface
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRules replaces the default rule list.
func WithRules(rules []Rule) Option {
	return func(r *Resolver) { r.rules = rules }
}

// WithTolerance sets how far classifier output may drift from summing to 1.
func WithTolerance(tol float64) Option {
	return func(r *Resolver) { r.tolerance = tol }
}

// WithMetrics records outcomes and rejections.
func WithMetrics(m MetricsInterface) Option {
	return func(r *Resolver) { r.metrics = m }
}

// New creates a resolver that consults c when no rule applies.
func New(c ml.Classifier, opts ...Option) *Resolver {
	r := &Resolver{
		rules:      DefaultRules(),
		classifier: c,
		tolerance:  ml.DefaultTolerance,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve computes the outcome for s. The overs value is checked before any
// rule runs, so a malformed overs value rejects the request even when the
// wicket or score rules alone would settle it.
func (r *Resolver) Resolve(ctx context.Context, s match.State) (Outcome, error) {
	v, err := features.Derive(s)
	if err != nil {
		r.reject(ReasonInvalidOvers)
		return Outcome{}, err
	}

	for _, rule := range r.rules {
		if rule.Applies(s, v) {
			out := newOutcome(rule.Tag, rule.Win, v)
			r.record(out)
			return out, nil
		}
	}

	if r.classifier == nil {
		r.reject(ReasonUnavailable)
		return Outcome{}, fmt.Errorf("model estimate: %w", ml.ErrClassifierUnavailable)
	}

	p, err := r.classifier.Estimate(ctx, v)
	if err == nil {
		err = ml.CheckProbabilities(p, r.tolerance)
	}
	if err != nil {
		if errors.Is(err, ml.ErrInferenceFailed) {
			r.reject(ReasonInference)
		} else {
			r.reject(ReasonUnavailable)
		}
		return Outcome{}, fmt.Errorf("model estimate: %w", err)
	}

	out := newOutcome(TagModelEstimate, p.Win, v)
	out.Loss = p.Loss
	r.record(out)
	return out, nil
}

func newOutcome(tag Tag, win float64, v features.Vector) Outcome {
	out := Outcome{
		Win:       win,
		Loss:      1 - win,
		Tag:       tag,
		Message:   message(tag),
		RunsLeft:  v.RunsLeft,
		BallsLeft: v.BallsLeft,
		Wickets:   v.Wickets,
	}
	if v.BallsLeft > 0 {
		out.Summary = fmt.Sprintf("%d runs needed in %d balls with %d wickets in hand.", v.RunsLeft, v.BallsLeft, v.Wickets)
	}
	return out
}

func message(tag Tag) string {
	switch tag {
	case TagAllOut:
		return "All wickets are down. Match is over."
	case TagTargetAchieved:
		return "Target achieved! Batting team wins."
	case TagTrivialChase:
		return "Just 1 run needed with balls left, almost certain win."
	case TagOversExhausted:
		return "No balls left and target not reached. Bowling team wins."
	}
	return ""
}

func (r *Resolver) record(out Outcome) {
	if r.metrics != nil {
		r.metrics.OutcomeInc(string(out.Tag))
		r.metrics.WinProbabilityObserve(out.Win)
	}
	log.Debug().
		Str("tag", string(out.Tag)).
		Float64("win", out.Win).
		Int("runs_left", out.RunsLeft).
		Int("balls_left", out.BallsLeft).
		Int("wickets", out.Wickets).
		Msg("outcome resolved")
}

func (r *Resolver) reject(reason string) {
	if r.metrics != nil {
		r.metrics.RejectionInc(reason)
	}
}
