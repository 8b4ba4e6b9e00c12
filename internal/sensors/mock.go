// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"github.com/relabs-tech/orientation_provider/internal/orientation"
)

// Mock generates smoothly changing device motion.
type Mock struct {
	start time.Time
	loop  tickLoop
}

// NewMock creates a mock sensor whose motion starts now.
func NewMock() *Mock {
	return &Mock{start: time.Now()}
}

func (m *Mock) IsAvailable() bool { return true }

func (m *Mock) IsActive() bool { return m.loop.active() }

func (m *Mock) Subscribe(rateHz float64, fn func(orientation.RawSample, error)) error {
	return m.loop.start(rateHz, nil, func(t time.Time) {
		fn(m.SampleAt(t), nil)
	})
}

func (m *Mock) Unsubscribe() error {
	m.loop.stop()
	return nil
}

// SampleAt returns the synthetic sample for time t.
func (m *Mock) SampleAt(t time.Time) orientation.RawSample {
	elapsed := t.Sub(m.start).Seconds()
	yaw := math.Mod(elapsed*30, 360) - 180
	pitch := 15 * math.Cos(elapsed*0.7)
	roll := 20 * math.Sin(elapsed)
	q := orientation.QuaternionFromEuler(degToRad(yaw), degToRad(pitch), degToRad(roll))
	return sampleFromQuaternion(q, t)
}
