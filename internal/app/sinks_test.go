// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/orientation_provider/internal/orientation"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                       { return true }
func (t doneToken) WaitTimeout(_ time.Duration) bool { return true }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t doneToken) Error() error { return t.err }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakePublisher struct {
	msgs []published
	err  error
}

func (p *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	p.msgs = append(p.msgs, published{topic, qos, retained, payload.([]byte)})
	return doneToken{err: p.err}
}

func testEstimate(roll float64) orientation.Estimate {
	return orientation.Estimate{
		Yaw:        0.5,
		Pitch:      -0.25,
		Roll:       roll,
		UpsideDown: true,
		Timestamp:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestLogSinkEvery(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(log.New(&buf, "", 0), 3)
	for i := 0; i < 7; i++ {
		s.Publish(testEstimate(0))
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3) // samples 1, 4 and 7
	assert.Contains(t, lines[0], "[ORIENT]")
	assert.Contains(t, lines[0], "UPSIDE_DOWN=true")
	assert.Contains(t, lines[0], "YAW=  28.65")
}

func TestLogSinkEveryDefaultsToOne(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(log.New(&buf, "", 0), 0)
	s.Publish(testEstimate(0))
	s.Publish(testEstimate(0))
	assert.Equal(t, 2, strings.Count(buf.String(), "[ORIENT]"))
}

func TestMQTTSinkPublishesRetainedJSON(t *testing.T) {
	pub := &fakePublisher{}
	s := NewMQTTSink(pub, "orientation/estimate")
	s.Publish(testEstimate(0.1))

	require.Len(t, pub.msgs, 1)
	m := pub.msgs[0]
	assert.Equal(t, "orientation/estimate", m.topic)
	assert.Equal(t, byte(0), m.qos)
	assert.True(t, m.retained)

	var p EstimatePayload
	require.NoError(t, json.Unmarshal(m.payload, &p))
	assert.InDelta(t, 0.1, p.Roll, 1e-12)
	assert.InDelta(t, 0.5, p.Yaw, 1e-12)
	assert.InDelta(t, -0.25, p.Pitch, 1e-12)
	assert.True(t, p.UpsideDown)
	assert.True(t, p.Timestamp.Equal(testEstimate(0).Timestamp))
	assert.InDelta(t, 0.1*180/3.141592653589793, p.RollDeg, 1e-9)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(m.payload, &raw))
	for _, k := range []string{"yaw", "pitch", "roll", "upside_down", "time", "roll_deg", "pitch_deg", "yaw_deg"} {
		assert.Contains(t, raw, k)
	}
}

func TestMQTTSinkPublishErrorIsLogged(t *testing.T) {
	pub := &fakePublisher{err: errors.New("not connected")}
	s := NewMQTTSink(pub, "t")
	assert.NotPanics(t, func() { s.Publish(testEstimate(0)) })
	assert.Len(t, pub.msgs, 1)
}

func TestMultiSinkOrder(t *testing.T) {
	var order []string
	m := MultiSink{
		orientation.SinkFunc(func(orientation.Estimate) { order = append(order, "a") }),
		orientation.SinkFunc(func(orientation.Estimate) { order = append(order, "b") }),
	}
	m.Publish(testEstimate(0))
	m.Publish(testEstimate(0))
	assert.Equal(t, []string{"a", "b", "a", "b"}, order)
}
