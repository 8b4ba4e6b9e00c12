// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import "math"

// RollFromQuaternion returns asin(2(xz - wy)), clamped against drift.
func RollFromQuaternion(q Quaternion) float64 {
	return math.Asin(clamp(2*(q.X*q.Z-q.W*q.Y), -1, 1))
}

// Update runs one pipeline step. It returns ok=false, and state unchanged,
// when the sample is inactive.
//
// The first sample after the zero FilterState seeds roll directly; later
// samples are smoothed against the previous estimate. A missing attitude
// matrix falls back to the identity without remapping, which yields
// yaw 0 and pitch 0.
func Update(sample RawSample, screen ScreenOrientation, state FilterState) (Estimate, FilterState, bool) {
	if !sample.Active {
		return Estimate{}, state, false
	}

	upsideDown := sample.Gravity.Y >= 0

	rawRoll := RollFromQuaternion(sample.Quaternion)
	roll := rawRoll
	if state.Initialized {
		roll = SmoothRoll(state.Roll, rawRoll)
	}

	screenMatrix := Identity()
	if sample.Attitude != nil {
		screenMatrix = Remap(*sample.Attitude, screen)
	}
	yaw, pitch := Decompose(screenMatrix)

	est := Estimate{
		Yaw:        yaw,
		Pitch:      pitch,
		Roll:       roll,
		UpsideDown: upsideDown,
		Timestamp:  sample.Timestamp,
	}
	return est, FilterState{Roll: roll, Initialized: true}, true
}
