package match

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Overs is a fixed-point overs count in tenths: 18.4 is stored as 184 and
// means 18 completed overs plus 4 balls.
type Overs int

// OversFromFloat converts a literal overs value such as 18.4. Values with
// more than one decimal digit cannot be expressed in overs notation.
func OversFromFloat(f float64) (Overs, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidOversFormat, f)
	}
	tenths := math.Round(f * 10)
	if math.Abs(f*10-tenths) > 1e-6 {
		return 0, fmt.Errorf("%w: %v has more than one decimal digit", ErrInvalidOversFormat, f)
	}
	return Overs(tenths), nil
}

// ParseOvers parses overs notation such as "18", "18.4" or "0.5".
func ParseOvers(s string) (Overs, error) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOversFormat, s)
	}
	return OversFromFloat(f)
}

// Completed returns the number of completed six-ball overs.
func (o Overs) Completed() int {
	return int(o) / 10
}

// BallDigit returns the digit after the point.
func (o Overs) BallDigit() int {
	return int(o) % 10
}

// Valid reports whether the ball digit is between 0 and 5.
func (o Overs) Valid() bool {
	return o >= 0 && o.BallDigit() <= BallsPerOver-1
}

// Balls returns the number of legal balls bowled. The result is only
// meaningful when Valid is true.
func (o Overs) Balls() int {
	return o.Completed()*BallsPerOver + o.BallDigit()
}

// Decimal returns the literal decimal reading of the value (18.4, not 18⅔).
func (o Overs) Decimal() float64 {
	return float64(o) / 10
}

func (o Overs) String() string {
	if o < 0 {
		return "-" + (-o).String()
	}
	return fmt.Sprintf("%d.%d", o.Completed(), o.BallDigit())
}

func (o Overs) MarshalJSON() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalJSON accepts a number (18.4) or a string ("18.4").
func (o *Overs) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var (
		v   Overs
		err error
	)
	switch t := raw.(type) {
	case float64:
		v, err = OversFromFloat(t)
	case string:
		v, err = ParseOvers(t)
	default:
		err = fmt.Errorf("%w: unexpected JSON value %s", ErrInvalidOversFormat, string(data))
	}
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// ValidOvers lists every selectable overs value from 0.0 to 20.0.
func ValidOvers() []Overs {
	out := make([]Overs, 0, InningsBalls+1)
	for o := Overs(0); o <= Overs(InningsOvers*10); o++ {
		if o.Valid() {
			out = append(out, o)
		}
	}
	return out
}
