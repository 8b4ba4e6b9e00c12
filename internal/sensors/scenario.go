// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/orientation_provider/internal/orientation"
)

// Keyframe is a scripted attitude at offset T. Angles are degrees.
type Keyframe struct {
	T     time.Duration `yaml:"t"`
	Yaw   float64       `yaml:"yaw"`
	Pitch float64       `yaml:"pitch"`
	Roll  float64       `yaml:"roll"`
}

// Scenario is a scripted motion, interpolated linearly between keyframes.
type Scenario struct {
	Loop      bool       `yaml:"loop"`
	Keyframes []Keyframe `yaml:"keyframes"`
}

// LoadScenario reads a YAML scenario file.
func LoadScenario(path string) (Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(b)
}

// ParseScenario decodes and validates a YAML scenario.
func ParseScenario(b []byte) (Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(b, &sc); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	if len(sc.Keyframes) == 0 {
		return Scenario{}, fmt.Errorf("scenario has no keyframes")
	}
	if sc.Keyframes[0].T < 0 {
		return Scenario{}, fmt.Errorf("keyframe 0: negative time %s", sc.Keyframes[0].T)
	}
	for i := 1; i < len(sc.Keyframes); i++ {
		if sc.Keyframes[i].T <= sc.Keyframes[i-1].T {
			return Scenario{}, fmt.Errorf("keyframe %d: time %s not after %s", i, sc.Keyframes[i].T, sc.Keyframes[i-1].T)
		}
	}
	return sc, nil
}

// Duration is the time of the last keyframe.
func (sc Scenario) Duration() time.Duration {
	return sc.Keyframes[len(sc.Keyframes)-1].T
}

// At returns the interpolated keyframe for elapsed. finished is true once a
// non-looping scenario has run past its last keyframe.
func (sc Scenario) At(elapsed time.Duration) (k Keyframe, finished bool) {
	d := sc.Duration()
	if sc.Loop && d > 0 {
		elapsed %= d
	} else if elapsed > d {
		k = sc.Keyframes[len(sc.Keyframes)-1]
		k.T = elapsed
		return k, !sc.Loop
	}

	first := sc.Keyframes[0]
	if elapsed <= first.T {
		first.T = elapsed
		return first, false
	}
	for i := 1; i < len(sc.Keyframes); i++ {
		a, b := sc.Keyframes[i-1], sc.Keyframes[i]
		if elapsed > b.T {
			continue
		}
		f := float64(elapsed-a.T) / float64(b.T-a.T)
		return Keyframe{
			T:     elapsed,
			Yaw:   a.Yaw + f*(b.Yaw-a.Yaw),
			Pitch: a.Pitch + f*(b.Pitch-a.Pitch),
			Roll:  a.Roll + f*(b.Roll-a.Roll),
		}, false
	}
	k = sc.Keyframes[len(sc.Keyframes)-1]
	k.T = elapsed
	return k, false
}

// ScenarioSource replays a Scenario as live sensor data.
type ScenarioSource struct {
	sc       Scenario
	loop     tickLoop
	mu       sync.Mutex
	start    time.Time
	finished atomic.Bool
}

func NewScenarioSource(sc Scenario) *ScenarioSource {
	return &ScenarioSource{sc: sc}
}

func (s *ScenarioSource) IsAvailable() bool { return len(s.sc.Keyframes) > 0 }

func (s *ScenarioSource) IsActive() bool { return s.loop.active() && !s.finished.Load() }

// Subscribe restarts the scenario from its first keyframe.
func (s *ScenarioSource) Subscribe(rateHz float64, fn func(orientation.RawSample, error)) error {
	if !s.IsAvailable() {
		return orientation.ErrSensorUnavailable
	}
	return s.loop.start(rateHz, s.rewind, func(t time.Time) {
		fn(s.SampleAt(t), nil)
	})
}

func (s *ScenarioSource) rewind() {
	s.mu.Lock()
	s.start = time.Now()
	s.mu.Unlock()
	s.finished.Store(false)
}

func (s *ScenarioSource) Unsubscribe() error {
	s.loop.stop()
	return nil
}

// SampleAt returns the sample for wall time t. Samples after a non-looping
// scenario ends are inactive.
func (s *ScenarioSource) SampleAt(t time.Time) orientation.RawSample {
	s.mu.Lock()
	start := s.start
	s.mu.Unlock()

	k, finished := s.sc.At(t.Sub(start))
	if finished {
		s.finished.Store(true)
		return orientation.RawSample{Timestamp: t}
	}
	q := orientation.QuaternionFromEuler(degToRad(k.Yaw), degToRad(k.Pitch), degToRad(k.Roll))
	return sampleFromQuaternion(q, t)
}
