// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/orientation_provider/internal/orientation"
)

// ErrAlreadySubscribed is returned by Subscribe on a source that is already running.
var ErrAlreadySubscribed = errors.New("sensor already subscribed")

// tickLoop runs a callback on a fixed-rate ticker from one goroutine.
type tickLoop struct {
	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

// start runs setup, if not nil, once the loop is known to be free and before
// the first tick.
func (l *tickLoop) start(rateHz float64, setup func(), tick func(time.Time)) error {
	if rateHz <= 0 {
		return fmt.Errorf("invalid sample rate %v Hz", rateHz)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopCh != nil {
		return ErrAlreadySubscribed
	}

	if setup != nil {
		setup()
	}

	interval := time.Duration(float64(time.Second) / rateHz)
	stop := make(chan struct{})
	done := make(chan struct{})
	l.stopCh, l.doneCh = stop, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case t := <-ticker.C:
				select {
				case <-stop:
					return
				default:
				}
				tick(t)
			}
		}
	}()
	return nil
}

// stop waits for the running tick to return. Safe to call when not started.
func (l *tickLoop) stop() {
	l.mu.Lock()
	stop, done := l.stopCh, l.doneCh
	l.stopCh, l.doneCh = nil, nil
	l.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (l *tickLoop) active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopCh != nil
}

// sampleFromQuaternion fills in the attitude matrix and gravity for q.
// Gravity is the reference down axis seen from the device frame.
func sampleFromQuaternion(q orientation.Quaternion, t time.Time) orientation.RawSample {
	q = q.Normalize()
	a := orientation.AttitudeFromQuaternion(q)
	inv := orientation.Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
	return orientation.RawSample{
		Quaternion: q,
		Gravity:    inv.Rotate(r3.Vec{Z: -1}),
		Attitude:   &a,
		Active:     true,
		Timestamp:  t,
	}
}

func degToRad(d float64) float64 {
	return d * math.Pi / 180.0
}
