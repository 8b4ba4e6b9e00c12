// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// ScreenOrientation is the current visual orientation of the display.
// The zero value is Portrait.
type ScreenOrientation int

const (
	Portrait ScreenOrientation = iota
	PortraitUpsideDown
	LandscapeLeft
	LandscapeRight
)

var screenOrientationNames = [...]string{
	Portrait:           "portrait",
	PortraitUpsideDown: "portrait_upside_down",
	LandscapeLeft:      "landscape_left",
	LandscapeRight:     "landscape_right",
}

func (s ScreenOrientation) String() string {
	if s < 0 || int(s) >= len(screenOrientationNames) {
		return fmt.Sprintf("ScreenOrientation(%d)", int(s))
	}
	return screenOrientationNames[s]
}

// ParseScreenOrientation accepts the names returned by String, case
// insensitive, with '-' and '_' treated alike.
func ParseScreenOrientation(s string) (ScreenOrientation, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for i, n := range screenOrientationNames {
		if n == name {
			return ScreenOrientation(i), nil
		}
	}
	return Portrait, fmt.Errorf("unknown screen orientation %q", s)
}

// RawSample is one device-motion reading as delivered by a SensorSource.
type RawSample struct {
	Quaternion Quaternion
	// Gravity in device frame, unit-scaled. Only the sign of Y is used.
	Gravity r3.Vec
	// Attitude is nil when the sensor could not provide a rotation matrix.
	Attitude  *Matrix
	Active    bool
	Timestamp time.Time
}

// FilterState carries the smoothed roll between updates.
// The zero value is the uninitialized state.
type FilterState struct {
	Roll        float64
	Initialized bool
}

// Estimate is the screen-relative orientation produced for one sample.
// Angles are radians.
type Estimate struct {
	Yaw        float64   `json:"yaw"`
	Pitch      float64   `json:"pitch"`
	Roll       float64   `json:"roll"`
	UpsideDown bool      `json:"upside_down"`
	Timestamp  time.Time `json:"time"`
}

// Degrees returns roll, pitch and yaw converted to degrees.
func (e Estimate) Degrees() (roll, pitch, yaw float64) {
	return e.Roll * 180.0 / math.Pi, e.Pitch * 180.0 / math.Pi, e.Yaw * 180.0 / math.Pi
}
