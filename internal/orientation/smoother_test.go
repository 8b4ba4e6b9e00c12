// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmoothRollConstantGain(t *testing.T) {
	cases := [][2]float64{
		{0, 0},
		{0, 1},
		{1, 0},
		{-0.5, 0.25},
		{math.Pi, -math.Pi},
		{1e-9, -3},
	}
	for _, c := range cases {
		p, m := c[0], c[1]
		assert.Equal(t, p+(2.0/3.0)*(m-p), SmoothRoll(p, m), "SmoothRoll(%v, %v)", p, m)
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		p := (rng.Float64()*2 - 1) * math.Pi
		m := (rng.Float64()*2 - 1) * math.Pi
		assert.Equal(t, p+(2.0/3.0)*(m-p), SmoothRoll(p, m))
	}
}

func TestSmoothRollDoesNotAdapt(t *testing.T) {
	// Repeating the same step must give the same output: no carried covariance.
	first := SmoothRoll(0, 1)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, SmoothRoll(0, 1))
	}
	assert.InDelta(t, 2.0/3.0, first, 1e-15)
}
