// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecomposeIdentity(t *testing.T) {
	yaw, pitch := Decompose(Identity())
	assert.Equal(t, 0.0, yaw)
	assert.Equal(t, 0.0, pitch)
}

func TestDecomposeIdentityAttitudePortrait(t *testing.T) {
	// Flat, face up: the screen looks straight down and atan2 sees two zeros.
	// Pitch is -pi/2, not 0: the Portrait wiring moves m33 (= 1) into s[1][2],
	// so look.y = -1. See "Degenerate identity case" in DESIGN.md.
	yaw, pitch := Decompose(Remap(Identity(), Portrait))
	assert.Equal(t, math.Pi, yaw)
	assert.InDelta(t, -math.Pi/2, pitch, 1e-12)
}

func TestDecomposeLookVector(t *testing.T) {
	// look = (1, 0, 0)
	var s Matrix
	s[0][2] = -1
	yaw, pitch := Decompose(s)
	assert.InDelta(t, math.Pi/2, yaw, 1e-12)
	assert.InDelta(t, 0, pitch, 1e-12)

	// look = (0, 0, 1): facing backwards
	s = Matrix{}
	s[2][2] = -1
	yaw, _ = Decompose(s)
	assert.InDelta(t, math.Pi, yaw, 1e-12)
}

func TestDecomposeClampsPitch(t *testing.T) {
	var s Matrix
	s[1][2] = -1.0000001
	_, pitch := Decompose(s)
	require.False(t, math.IsNaN(pitch))
	assert.InDelta(t, math.Pi/2, pitch, 1e-15)

	s[1][2] = 1.0000001
	_, pitch = Decompose(s)
	require.False(t, math.IsNaN(pitch))
	assert.InDelta(t, -math.Pi/2, pitch, 1e-15)
}

func TestDecomposeRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	screens := []ScreenOrientation{Portrait, PortraitUpsideDown, LandscapeLeft, LandscapeRight}
	for i := 0; i < 2000; i++ {
		q := Quaternion{
			X: rng.NormFloat64(),
			Y: rng.NormFloat64(),
			Z: rng.NormFloat64(),
			W: rng.NormFloat64(),
		}.Normalize()
		a := AttitudeFromQuaternion(q)
		for _, screen := range screens {
			yaw, pitch := Decompose(Remap(a, screen))
			require.Truef(t, yaw > -math.Pi && yaw <= math.Pi, "yaw %v out of range for %+v/%s", yaw, q, screen)
			require.Truef(t, pitch >= -math.Pi/2 && pitch <= math.Pi/2, "pitch %v out of range for %+v/%s", pitch, q, screen)
		}
	}
}
