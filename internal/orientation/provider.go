// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"
)

// DefaultRateHz is the sensor subscription rate used when none is configured.
const DefaultRateHz = 60.0

// ErrSensorUnavailable is returned by sources that cannot deliver samples.
var ErrSensorUnavailable = errors.New("sensor unavailable")

// SensorSource delivers raw device-motion samples.
//
// Callbacks for one subscription must arrive in order from a single
// goroutine, and must stop once Unsubscribe returns.
type SensorSource interface {
	IsAvailable() bool
	IsActive() bool
	Subscribe(rateHz float64, fn func(RawSample, error)) error
	Unsubscribe() error
}

// ScreenOrientationSource reports the current display orientation.
type ScreenOrientationSource interface {
	Current() ScreenOrientation
}

// Sink receives estimates in the order they are produced.
type Sink interface {
	Publish(Estimate)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Estimate)

func (f SinkFunc) Publish(e Estimate) { f(e) }

// Option configures a Provider.
type Option func(*Provider)

// WithRate sets the sensor subscription rate in Hz.
func WithRate(hz float64) Option {
	return func(p *Provider) {
		if hz > 0 {
			p.rateHz = hz
		}
	}
}

// WithLogger replaces the standard logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// Provider owns one sensor subscription and turns its samples into
// estimates for a Sink.
type Provider struct {
	sensor SensorSource
	screen ScreenOrientationSource
	sink   Sink
	rateHz float64
	logger *log.Logger

	mu      sync.Mutex
	session *session

	// generation tags each subscription; callbacks from older ones are dropped.
	generation atomic.Uint64
}

// session holds everything that lives between one Start and the matching Stop.
type session struct {
	gen     uint64
	state   FilterState
	results chan Estimate
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewProvider builds a stopped provider.
func NewProvider(sensor SensorSource, screen ScreenOrientationSource, sink Sink, opts ...Option) *Provider {
	p := &Provider{
		sensor: sensor,
		screen: screen,
		sink:   sink,
		rateHz: DefaultRateHz,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Started reports whether a subscription is live.
func (p *Provider) Started() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session != nil
}

// Start subscribes to the sensor. It is a no-op, returning false, when the
// provider is already started or the sensor is unavailable.
func (p *Provider) Start() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != nil {
		return false
	}
	if !p.sensor.IsAvailable() {
		p.logger.Printf("provider: sensor not available, not starting")
		return false
	}

	s := &session{
		gen:     p.generation.Add(1),
		results: make(chan Estimate, 1),
		done:    make(chan struct{}),
	}
	s.wg.Add(1)
	go p.deliver(s)

	if err := p.sensor.Subscribe(p.rateHz, func(sample RawSample, err error) {
		p.handle(s, sample, err)
	}); err != nil {
		p.generation.Add(1)
		close(s.done)
		s.wg.Wait()
		p.logger.Printf("provider: subscribe failed: %v", err)
		return false
	}

	p.session = s
	p.logger.Printf("provider: started at %.1f Hz", p.rateHz)
	return true
}

// Stop ends the subscription and discards the filter state. It is a no-op
// when the provider is not started.
func (p *Provider) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.session
	if s == nil {
		return
	}
	p.generation.Add(1)
	close(s.done)
	if err := p.sensor.Unsubscribe(); err != nil {
		p.logger.Printf("provider: unsubscribe error: %v", err)
	}
	s.wg.Wait()
	p.session = nil
	p.logger.Printf("provider: stopped")
}

// handle runs on the sensor's callback goroutine.
func (p *Provider) handle(s *session, sample RawSample, err error) {
	if p.generation.Load() != s.gen {
		return
	}
	if err != nil {
		p.logger.Printf("provider: dropping sample: %v", err)
		return
	}

	est, next, ok := Update(sample, p.screen.Current(), s.state)
	if !ok {
		return
	}
	s.state = next

	select {
	case s.results <- est:
	case <-s.done:
	}
}

func (p *Provider) deliver(s *session) {
	defer s.wg.Done()
	for {
		select {
		case est := <-s.results:
			p.sink.Publish(est)
		case <-s.done:
			return
		}
	}
}
