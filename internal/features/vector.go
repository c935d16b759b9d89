// Package features turns a match state into the feature vector the win
// probability classifier was trained on.
package features

import (
	"fmt"

	"ipl-win-predictor/internal/match"
)

// Column names of the trained pipeline.
const (
	ColBattingTeam = "batting_team"
	ColBowlingTeam = "bowling_team"
	ColCity        = "city"
	ColRunsLeft    = "runs_left"
	ColBallsLeft   = "balls_left"
	ColWickets     = "wickets"
	ColTarget      = "total_runs_x"
	ColCRR         = "crr"
	ColRRR         = "rrr"
)

// NumericColumns lists the numeric columns in pipeline order.
var NumericColumns = []string{ColRunsLeft, ColBallsLeft, ColWickets, ColTarget, ColCRR, ColRRR}

// CategoricalColumns lists the categorical columns in pipeline order.
var CategoricalColumns = []string{ColBattingTeam, ColBowlingTeam, ColCity}

// Vector is one row of classifier input.
type Vector struct {
	BattingTeam match.Team `json:"batting_team"`
	BowlingTeam match.Team `json:"bowling_team"`
	City        match.City `json:"city"`
	RunsLeft    int        `json:"runs_left"`
	BallsLeft   int        `json:"balls_left"`
	Wickets     int        `json:"wickets"`
	Target      int        `json:"total_runs_x"`
	CRR         float64    `json:"crr"`
	RRR         float64    `json:"rrr"`
}

// Derive builds the feature vector for s. The only check performed is the
// overs ball digit; team and city values are passed through as given.
func Derive(s match.State) (Vector, error) {
	if !s.Overs.Valid() {
		return Vector{}, fmt.Errorf("overs %s: %w", s.Overs, match.ErrInvalidOversFormat)
	}

	runsLeft := s.Target - s.Score
	ballsLeft := match.InningsBalls - s.Overs.Balls()
	if ballsLeft < 0 {
		ballsLeft = 0
	}

	// Run rate divides by the literal decimal overs value, so 10.2 overs
	// counts as 10.2 rather than 10⅓.
	var crr float64
	if s.Overs > 0 {
		crr = float64(s.Score) / s.Overs.Decimal()
	}

	var rrr float64
	if ballsLeft > 0 {
		rrr = float64(runsLeft*match.BallsPerOver) / float64(ballsLeft)
	}

	return Vector{
		BattingTeam: s.BattingTeam,
		BowlingTeam: s.BowlingTeam,
		City:        s.City,
		RunsLeft:    runsLeft,
		BallsLeft:   ballsLeft,
		Wickets:     match.MaxWickets - s.WicketsOut,
		Target:      s.Target,
		CRR:         crr,
		RRR:         rrr,
	}, nil
}

// Numeric returns the numeric columns keyed by column name.
func (v Vector) Numeric() map[string]float64 {
	return map[string]float64{
		ColRunsLeft:  float64(v.RunsLeft),
		ColBallsLeft: float64(v.BallsLeft),
		ColWickets:   float64(v.Wickets),
		ColTarget:    float64(v.Target),
		ColCRR:       v.CRR,
		ColRRR:       v.RRR,
	}
}

// Categorical returns the categorical columns keyed by column name.
func (v Vector) Categorical() map[string]string {
	return map[string]string{
		ColBattingTeam: string(v.BattingTeam),
		ColBowlingTeam: string(v.BowlingTeam),
		ColCity:        string(v.City),
	}
}
