package grid

import "math"

// RoundTenth rounds v to the nearest tenth, halves away from zero.
// RoundTenth(RoundTenth(v)) == RoundTenth(v).
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
