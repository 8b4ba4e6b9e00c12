// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Quaternion is a unit quaternion describing device attitude.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// IdentityQuaternion is the attitude of a device aligned with the reference frame.
var IdentityQuaternion = Quaternion{W: 1}

// Number returns q as a gonum quaternion.
func (q Quaternion) Number() quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

func fromNumber(n quat.Number) Quaternion {
	return Quaternion{X: n.Imag, Y: n.Jmag, Z: n.Kmag, W: n.Real}
}

// Normalize returns q scaled to unit length. The zero quaternion maps to identity.
func (q Quaternion) Normalize() Quaternion {
	n := q.Number()
	a := quat.Abs(n)
	if a == 0 {
		return IdentityQuaternion
	}
	return fromNumber(quat.Scale(1/a, n))
}

// Rotate applies q to v.
func (q Quaternion) Rotate(v r3.Vec) r3.Vec {
	n := q.Number()
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(n, p), quat.Conj(n))
	return r3.Vec{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

func axisAngle(axis r3.Vec, angle float64) quat.Number {
	s, c := math.Sincos(angle / 2)
	return quat.Number{Real: c, Imag: axis.X * s, Jmag: axis.Y * s, Kmag: axis.Z * s}
}

// QuaternionFromEuler builds the attitude for a Z (yaw), Y (pitch), X (roll)
// rotation sequence. Angles are radians.
func QuaternionFromEuler(yaw, pitch, roll float64) Quaternion {
	qz := axisAngle(r3.Vec{Z: 1}, yaw)
	qy := axisAngle(r3.Vec{Y: 1}, pitch)
	qx := axisAngle(r3.Vec{X: 1}, roll)
	return fromNumber(quat.Mul(quat.Mul(qz, qy), qx))
}

// AttitudeFromQuaternion returns the rotation matrix of q. Column j is the
// device's j-th axis expressed in the reference frame.
func AttitudeFromQuaternion(q Quaternion) Matrix {
	q = q.Normalize()
	ex := q.Rotate(r3.Vec{X: 1})
	ey := q.Rotate(r3.Vec{Y: 1})
	ez := q.Rotate(r3.Vec{Z: 1})
	return Matrix{
		{ex.X, ey.X, ez.X},
		{ex.Y, ey.Y, ez.Y},
		{ex.Z, ey.Z, ez.Z},
	}
}
