// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import "math"

// Decompose extracts yaw and pitch from a screen-relative matrix. The look
// vector is the negated third column.
//
// Yaw is in (-pi, pi] and pitch in [-pi/2, pi/2].
func Decompose(s Matrix) (yaw, pitch float64) {
	lookX := -s[0][2]
	lookY := -s[1][2]
	lookZ := -s[2][2]

	yaw = math.Atan2(lookX, -lookZ)
	// atan2 returns -pi for a negative-zero x and y
	if yaw <= -math.Pi {
		yaw = math.Pi
	}
	pitch = math.Asin(clamp(lookY, -1, 1))
	return yaw, pitch
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
