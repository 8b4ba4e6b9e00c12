// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/orientation_provider/internal/orientation"
)

// TypeORNT is the proprietary sentence carrying one device-motion sample:
//
//	$PORNT,qx,qy,qz,qw,gx,gy,gz*hh
const TypeORNT = "ORNT"

// ORNT is a parsed $PORNT sentence.
type ORNT struct {
	nmea.BaseSentence
	Quaternion orientation.Quaternion
	Gravity    r3.Vec
}

func parseORNT(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	p.AssertType(TypeORNT)
	m := ORNT{
		BaseSentence: s,
		Quaternion: orientation.Quaternion{
			X: p.Float64(0, "qx"),
			Y: p.Float64(1, "qy"),
			Z: p.Float64(2, "qz"),
			W: p.Float64(3, "qw"),
		},
		Gravity: r3.Vec{
			X: p.Float64(4, "gx"),
			Y: p.Float64(5, "gy"),
			Z: p.Float64(6, "gz"),
		},
	}
	return m, p.Err()
}

var sentenceParser = nmea.SentenceParser{
	CustomParsers: map[string]nmea.ParserFunc{
		TypeORNT: parseORNT,
	},
}

// ParseORNT parses one line. Checksum and field errors are returned as is.
func ParseORNT(line string) (ORNT, error) {
	s, err := sentenceParser.Parse(strings.TrimSpace(line))
	if err != nil {
		return ORNT{}, err
	}
	m, ok := s.(ORNT)
	if !ok {
		return ORNT{}, fmt.Errorf("unexpected sentence type %q", s.DataType())
	}
	return m, nil
}

// FormatORNT encodes a sample as a $PORNT sentence with checksum.
func FormatORNT(q orientation.Quaternion, g r3.Vec) string {
	body := fmt.Sprintf("P%s,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f", TypeORNT, q.X, q.Y, q.Z, q.W, g.X, g.Y, g.Z)
	return "$" + body + "*" + nmea.Checksum(body)
}

// Serial reads $PORNT sentences from a serial line.
type Serial struct {
	opts serial.OpenOptions
	open func(serial.OpenOptions) (io.ReadWriteCloser, error)

	mu     sync.Mutex
	port   io.ReadWriteCloser
	stopCh chan struct{}
	doneCh chan struct{}
	active atomic.Bool
}

// NewSerial prepares a serial source; the port is opened on Subscribe.
func NewSerial(portName string, baudRate int) *Serial {
	return &Serial{
		opts: serial.OpenOptions{
			PortName:              portName,
			BaudRate:              uint(baudRate),
			DataBits:              8,
			StopBits:              1,
			MinimumReadSize:       1,
			ParityMode:            serial.PARITY_NONE,
			InterCharacterTimeout: 0,
		},
		open: serial.Open,
	}
}

// IsAvailable reports whether the port device exists.
func (s *Serial) IsAvailable() bool {
	if s.opts.PortName == "" {
		return false
	}
	_, err := os.Stat(s.opts.PortName)
	return err == nil
}

func (s *Serial) IsActive() bool { return s.active.Load() }

// Subscribe opens the port and delivers at most rateHz samples per second.
// Sentences arriving faster are dropped.
func (s *Serial) Subscribe(rateHz float64, fn func(orientation.RawSample, error)) error {
	if rateHz <= 0 {
		return fmt.Errorf("invalid sample rate %v Hz", rateHz)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh != nil {
		return ErrAlreadySubscribed
	}

	port, err := s.open(s.opts)
	if err != nil {
		return fmt.Errorf("serial %s: open: %w", s.opts.PortName, err)
	}
	log.Printf("sensors: serial port opened on %s at %d baud", s.opts.PortName, s.opts.BaudRate)

	s.port = port
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.active.Store(true)
	go s.readLoop(port, time.Duration(float64(time.Second)/rateHz), fn, s.stopCh, s.doneCh)
	return nil
}

// readLoop releases the port itself when the stream ends on its own, so the
// source can be subscribed again without an Unsubscribe.
func (s *Serial) readLoop(port io.ReadWriteCloser, interval time.Duration, fn func(orientation.RawSample, error), stop, done chan struct{}) {
	defer close(done)
	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.stopCh != stop {
			return // Unsubscribe owns the shutdown
		}
		s.port, s.stopCh, s.doneCh = nil, nil, nil
		s.active.Store(false)
		if err := port.Close(); err != nil {
			log.Printf("sensors: serial %s: close: %v", s.opts.PortName, err)
		}
	}()

	th := throttle{interval: interval}
	reader := bufio.NewReader(port)
	for {
		line, err := reader.ReadString('\n')
		select {
		case <-stop:
			return
		default:
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("sensors: serial read error: %v", err)
			}
			return
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		now := time.Now()
		if !th.allow(now) {
			continue
		}

		m, err := ParseORNT(line)
		if err != nil {
			fn(orientation.RawSample{}, fmt.Errorf("serial sample: %w", err))
			continue
		}
		fn(sampleFromORNT(m, now), nil)
	}
}

// throttle lets through at most one event per interval.
type throttle struct {
	interval time.Duration
	last     time.Time
}

func (t *throttle) allow(now time.Time) bool {
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}

func sampleFromORNT(m ORNT, t time.Time) orientation.RawSample {
	s := sampleFromQuaternion(m.Quaternion, t)
	s.Gravity = m.Gravity
	return s
}

// Unsubscribe closes the port and waits for the reader to exit.
func (s *Serial) Unsubscribe() error {
	s.mu.Lock()
	port, stop, done := s.port, s.stopCh, s.doneCh
	s.port, s.stopCh, s.doneCh = nil, nil, nil
	s.active.Store(false)
	s.mu.Unlock()
	if stop == nil {
		return nil
	}

	close(stop)
	err := port.Close()
	<-done
	if err != nil {
		return fmt.Errorf("serial %s: close: %w", s.opts.PortName, err)
	}
	return nil
}
