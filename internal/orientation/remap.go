// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

// Matrix is a row-major 3x3 rotation matrix. m[0][0] is m11, m[2][2] is m33.
type Matrix [3][3]float64

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Remap re-expresses a device-frame attitude matrix relative to the screen
// for the given display orientation.
//
// LandscapeLeft and PortraitUpsideDown use the same wiring. Device captures
// have not been checked for PortraitUpsideDown, so it is kept as is.
func Remap(a Matrix, screen ScreenOrientation) Matrix {
	m11, m12, m13 := a[0][0], a[0][1], a[0][2]
	m21, m22, m23 := a[1][0], a[1][1], a[1][2]
	m31, m32, m33 := a[2][0], a[2][1], a[2][2]

	switch screen {
	case LandscapeRight:
		return Matrix{
			{m21, -m11, m31},
			{m23, -m13, m33},
			{-m22, m12, -m32},
		}
	case LandscapeLeft, PortraitUpsideDown:
		return Matrix{
			{-m21, m11, m31},
			{-m23, m13, m33},
			{m22, -m12, -m32},
		}
	default:
		return Matrix{
			{m11, m21, m31},
			{m13, m23, m33},
			{-m12, -m22, -m32},
		}
	}
}
