// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/orientation_provider/internal/orientation"
)

// EstimatePayload is the JSON published for each estimate: radians from the
// estimate plus degree values for display.
type EstimatePayload struct {
	orientation.Estimate
	RollDeg  float64 `json:"roll_deg"`
	PitchDeg float64 `json:"pitch_deg"`
	YawDeg   float64 `json:"yaw_deg"`
}

// NewEstimatePayload fills in the degree fields for e.
func NewEstimatePayload(e orientation.Estimate) EstimatePayload {
	roll, pitch, yaw := e.Degrees()
	return EstimatePayload{Estimate: e, RollDeg: roll, PitchDeg: pitch, YawDeg: yaw}
}

// LogSink prints every Nth estimate in degrees.
type LogSink struct {
	logger *log.Logger
	every  int
	n      int
}

func NewLogSink(logger *log.Logger, every int) *LogSink {
	if logger == nil {
		logger = log.Default()
	}
	if every < 1 {
		every = 1
	}
	return &LogSink{logger: logger, every: every}
}

// Publish is called from the provider's delivery goroutine only.
func (s *LogSink) Publish(e orientation.Estimate) {
	s.n++
	if (s.n-1)%s.every != 0 {
		return
	}
	roll, pitch, yaw := e.Degrees()
	s.logger.Printf("[ORIENT] ROLL=%7.2f  PITCH=%7.2f  YAW=%7.2f  UPSIDE_DOWN=%t", roll, pitch, yaw, e.UpsideDown)
}

// publisher is the part of mqtt.Client the sink uses.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTSink publishes estimates as retained JSON messages.
type MQTTSink struct {
	client publisher
	topic  string
}

func NewMQTTSink(client publisher, topic string) *MQTTSink {
	return &MQTTSink{client: client, topic: topic}
}

func (s *MQTTSink) Publish(e orientation.Estimate) {
	payload, err := json.Marshal(NewEstimatePayload(e))
	if err != nil {
		log.Printf("mqtt: json marshal error (estimate): %v", err)
		return
	}
	if token := s.client.Publish(s.topic, 0, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("mqtt: publish error (%s): %v", s.topic, token.Error())
	}
}

// MultiSink forwards each estimate to every sink in order.
type MultiSink []orientation.Sink

func (m MultiSink) Publish(e orientation.Estimate) {
	for _, s := range m {
		s.Publish(e)
	}
}
