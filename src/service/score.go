package service

import (
	"encoding/json"
	"math"
)

// Score is a point value that may be intentionally unknown. NaN is the
// "no score yet" sentinel, distinct from zero, and marshals as JSON null
// since JSON has no NaN literal.
type Score float64

// NoScore returns the sentinel value.
func NoScore() Score {
	return Score(math.NaN())
}

// Known reports whether the score carries an actual value.
func (s Score) Known() bool {
	f := float64(s)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Known() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(s))
}

func (s *Score) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = NoScore()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*s = Score(f)
	return nil
}
