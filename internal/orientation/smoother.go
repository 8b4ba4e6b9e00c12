// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

// Roll filter noise parameters. The error covariance starts from
// rollInitialCovariance on every call, so the gain never adapts and works out
// to (0.1+0.1)/(0.1+0.1+0.1) = 2/3.
const (
	rollProcessVariance     = 0.1
	rollMeasurementVariance = 0.1
	rollInitialCovariance   = 0.1
)

// SmoothRoll blends a new roll measurement into the previous smoothed value.
// The result equals previous + 2/3*(measurement-previous).
func SmoothRoll(previous, measurement float64) float64 {
	p := rollInitialCovariance + rollProcessVariance
	k := p / (p + rollMeasurementVariance)
	return previous + k*(measurement-previous)
}
