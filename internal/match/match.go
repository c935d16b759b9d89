// Package match defines the input domain of a chase in progress: the
// franchises, host cities, the overs notation and the match state itself.
//
// Team and city values are restricted to the enumerated sets the model was
// trained on. Overs use cricket notation where the digit after the point is
// a ball count, not a decimal fraction.
package match

import (
	"errors"
	"fmt"
)

const (
	BallsPerOver = 6
	InningsOvers = 20
	InningsBalls = InningsOvers * BallsPerOver
	MaxWickets   = 10
)

// ErrInvalidOversFormat is returned when the ball digit of an overs value is
// not one of .0 to .5.
var ErrInvalidOversFormat = errors.New("invalid overs format")

// FieldError names the input field that failed validation.
type FieldError struct {
	Field  string
	Reason string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// State is a chase in progress as entered by the user.
type State struct {
	BattingTeam Team  `json:"batting_team"`
	BowlingTeam Team  `json:"bowling_team"`
	City        City  `json:"city"`
	Target      int   `json:"target"`
	Score       int   `json:"score"`
	Overs       Overs `json:"overs"`
	WicketsOut  int   `json:"wickets_out"`
}

// Validate performs the checks a selection form would enforce before the
// state reaches the resolver.
func (s State) Validate() error {
	if !s.BattingTeam.Known() {
		return &FieldError{Field: "batting_team", Reason: fmt.Sprintf("unknown team %q", s.BattingTeam)}
	}
	if !s.BowlingTeam.Known() {
		return &FieldError{Field: "bowling_team", Reason: fmt.Sprintf("unknown team %q", s.BowlingTeam)}
	}
	if s.BattingTeam == s.BowlingTeam {
		return &FieldError{Field: "bowling_team", Reason: "must differ from batting team"}
	}
	if !s.City.Known() {
		return &FieldError{Field: "city", Reason: fmt.Sprintf("unknown city %q", s.City)}
	}
	if s.Target < 1 {
		return &FieldError{Field: "target", Reason: fmt.Sprintf("must be at least 1, got %d", s.Target)}
	}
	if s.Score < 0 {
		return &FieldError{Field: "score", Reason: fmt.Sprintf("must not be negative, got %d", s.Score)}
	}
	if s.WicketsOut < 0 || s.WicketsOut > MaxWickets {
		return &FieldError{Field: "wickets_out", Reason: fmt.Sprintf("must be between 0 and %d, got %d", MaxWickets, s.WicketsOut)}
	}
	if !s.Overs.Valid() {
		return &FieldError{
			Field:  "overs",
			Reason: fmt.Sprintf("overs can only be up to .5, e.g. 18.0, 18.1, ..., 18.5, got %s", s.Overs),
			Err:    ErrInvalidOversFormat,
		}
	}
	if s.Overs.Balls() > InningsBalls {
		return &FieldError{Field: "overs", Reason: fmt.Sprintf("must not exceed %d.0, got %s", InningsOvers, s.Overs)}
	}
	return nil
}
