// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	serial "github.com/jacobsa/go-serial/serial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/orientation_provider/internal/orientation"
)

func TestParseORNTRoundTrip(t *testing.T) {
	q := orientation.QuaternionFromEuler(0.2, -0.1, 0.4)
	g := r3.Vec{X: 0.1, Y: -0.2, Z: -0.97}
	line := FormatORNT(q, g)
	require.True(t, strings.HasPrefix(line, "$PORNT,"))

	m, err := ParseORNT(line + "\r\n")
	require.NoError(t, err)
	assert.InDelta(t, q.X, m.Quaternion.X, 1e-6)
	assert.InDelta(t, q.Y, m.Quaternion.Y, 1e-6)
	assert.InDelta(t, q.Z, m.Quaternion.Z, 1e-6)
	assert.InDelta(t, q.W, m.Quaternion.W, 1e-6)
	assert.InDelta(t, g.Y, m.Gravity.Y, 1e-6)
	assert.Equal(t, TypeORNT, m.DataType())
}

func TestParseORNTErrors(t *testing.T) {
	good := FormatORNT(orientation.IdentityQuaternion, r3.Vec{Z: -1})
	sum := good[len(good)-2:]
	bad := "00"
	if sum == bad {
		bad = "01"
	}

	tests := map[string]string{
		"checksum":     good[:len(good)-2] + bad,
		"short":        "$PORNT,0,0,0*" + nmeaChecksum("PORNT,0,0,0"),
		"not a number": "$PORNT,a,0,0,1,0,0,-1*" + nmeaChecksum("PORNT,a,0,0,1,0,0,-1"),
		"garbage":      "hello",
	}
	for name, line := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseORNT(line)
			assert.Error(t, err)
		})
	}
}

func nmeaChecksum(body string) string {
	var c byte
	for i := 0; i < len(body); i++ {
		c ^= body[i]
	}
	const hex = "0123456789ABCDEF"
	return string([]byte{hex[c>>4], hex[c&0x0f]})
}

func TestThrottle(t *testing.T) {
	th := throttle{interval: 100 * time.Millisecond}
	base := time.Unix(100, 0)
	assert.True(t, th.allow(base))
	assert.False(t, th.allow(base.Add(50*time.Millisecond)))
	assert.True(t, th.allow(base.Add(100*time.Millisecond)))
	assert.False(t, th.allow(base.Add(199*time.Millisecond)))
}

type pipePort struct {
	*io.PipeReader
}

func (pipePort) Write(p []byte) (int, error) { return len(p), nil }

type result struct {
	sample orientation.RawSample
	err    error
}

func TestSerialDeliversSamplesAndErrors(t *testing.T) {
	pr, pw := io.Pipe()
	s := NewSerial("/dev/null-test", 115200)
	s.open = func(opts serial.OpenOptions) (io.ReadWriteCloser, error) {
		assert.Equal(t, uint(115200), opts.BaudRate)
		return pipePort{pr}, nil
	}

	results := make(chan result, 8)
	require.NoError(t, s.Subscribe(1e12, func(sample orientation.RawSample, err error) {
		results <- result{sample, err}
	}))
	assert.True(t, s.IsActive())

	g := r3.Vec{Y: 0.25, Z: -0.9}
	q := orientation.QuaternionFromEuler(0, 0.3, 0)
	go func() {
		io.WriteString(pw, FormatORNT(q, g)+"\r\n")
		io.WriteString(pw, "noise without dollar\r\n")
		io.WriteString(pw, "$PORNT,1,2*00\r\n")
		io.WriteString(pw, FormatORNT(q, g)+"\r\n")
		pw.Close()
	}()

	next := func() result {
		select {
		case r := <-results:
			return r
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for serial sample")
			return result{}
		}
	}

	r := next()
	require.NoError(t, r.err)
	assert.True(t, r.sample.Active)
	assert.Equal(t, g, r.sample.Gravity)
	assert.InDelta(t, -0.3, orientation.RollFromQuaternion(r.sample.Quaternion), 1e-5)

	r = next()
	assert.Error(t, r.err)

	r = next()
	require.NoError(t, r.err)

	// EOF ends the subscription.
	require.Eventually(t, func() bool { return !s.IsActive() }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, s.Unsubscribe())
	require.NoError(t, s.Unsubscribe())
}

func TestSerialAvailability(t *testing.T) {
	assert.False(t, NewSerial("", 9600).IsAvailable())
	assert.False(t, NewSerial("/definitely/not/a/port", 9600).IsAvailable())
}

type closingPort struct {
	io.Reader
	closed atomic.Bool
}

func (p *closingPort) Write(b []byte) (int, error) { return len(b), nil }
func (p *closingPort) Close() error                { p.closed.Store(true); return nil }

func TestSerialEOFReleasesPort(t *testing.T) {
	s := NewSerial("/dev/null-test", 115200)
	opened := make(chan *closingPort, 2)
	s.open = func(serial.OpenOptions) (io.ReadWriteCloser, error) {
		p := &closingPort{Reader: strings.NewReader("")}
		opened <- p
		return p, nil
	}
	noop := func(orientation.RawSample, error) {}

	require.NoError(t, s.Subscribe(1e12, noop))
	first := <-opened
	require.Eventually(t, func() bool { return !s.IsActive() }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, first.closed.Load, 2*time.Second, 5*time.Millisecond)

	// A fresh subscription works without an Unsubscribe in between.
	require.NoError(t, s.Subscribe(1e12, noop))
	second := <-opened
	require.Eventually(t, second.closed.Load, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, s.Unsubscribe())
}

func TestSerialUnsubscribeWhileReading(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	s := NewSerial("/dev/null-test", 115200)
	s.open = func(serial.OpenOptions) (io.ReadWriteCloser, error) {
		return pipePort{pr}, nil
	}

	require.NoError(t, s.Subscribe(1e12, func(orientation.RawSample, error) {}))
	assert.True(t, s.IsActive())
	require.NoError(t, s.Unsubscribe())
	assert.False(t, s.IsActive())
	require.NoError(t, s.Unsubscribe())
}
