package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundHalfUp(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{10.4, 10},
		{5.6, 6},
		{2.5, 3},
		{-2.5, -2},
		{-2.6, -3},
		{0, 0},
		{0.49999999999999994, 0},
		{-0.5, 0},
		{4503599627370495.5, 4503599627370496},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, RoundHalfUp(c.in), "RoundHalfUp(%v)", c.in)
	}
}

func TestRoundHalfUpNonFinite(t *testing.T) {
	assert.True(t, math.IsInf(RoundHalfUp(math.Inf(1)), 1))
	assert.True(t, math.IsInf(RoundHalfUp(math.Inf(-1)), -1))
	assert.True(t, math.IsNaN(RoundHalfUp(math.NaN())))
}

func TestFitsInt32(t *testing.T) {
	assert.True(t, FitsInt32(math.MaxInt32))
	assert.True(t, FitsInt32(math.MinInt32))
	assert.False(t, FitsInt32(math.MaxInt32+1))
	assert.False(t, FitsInt32(math.Inf(-1)))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(0, 1, 16))
	assert.Equal(t, 16, Clamp(40, 1, 16))
	assert.Equal(t, 3, Clamp(3, 1, 16))
}
