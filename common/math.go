package common

import "math"

// RoundHalfUp rounds half towards positive infinity (-2.5 becomes -2).
// v+0.5 is never formed, so 0.49999999999999994 still rounds to 0.
func RoundHalfUp(v float64) float64 {
	f := math.Floor(v)
	if v-f >= 0.5 {
		f++
	}
	return f
}

func FitsInt32(v float64) bool {
	return v >= math.MinInt32 && v <= math.MaxInt32
}

func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
