// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package screen provides the display orientation read on every update.
package screen

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/orientation_provider/internal/orientation"
)

// Static always reports the same orientation.
type Static orientation.ScreenOrientation

func (s Static) Current() orientation.ScreenOrientation {
	return orientation.ScreenOrientation(s)
}

// MQTTSource tracks the orientation published on an MQTT topic.
type MQTTSource struct {
	topic   string
	current atomic.Int32
}

// NewMQTTSource starts at initial until the first valid message arrives.
func NewMQTTSource(topic string, initial orientation.ScreenOrientation) *MQTTSource {
	s := &MQTTSource{topic: topic}
	s.current.Store(int32(initial))
	return s
}

func (s *MQTTSource) Current() orientation.ScreenOrientation {
	return orientation.ScreenOrientation(s.current.Load())
}

// Subscribe registers the topic handler on an already connected client.
func (s *MQTTSource) Subscribe(client mqtt.Client) error {
	token := client.Subscribe(s.topic, 0, s.handle)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", s.topic, token.Error())
	}
	log.Printf("screen: subscribed to %s", s.topic)
	return nil
}

func (s *MQTTSource) handle(_ mqtt.Client, msg mqtt.Message) {
	o, err := orientation.ParseScreenOrientation(strings.Trim(string(msg.Payload()), "\" \r\n"))
	if err != nil {
		log.Printf("screen: ignoring payload on %s: %v", msg.Topic(), err)
		return
	}
	if prev := orientation.ScreenOrientation(s.current.Swap(int32(o))); prev != o {
		log.Printf("screen: orientation %s -> %s", prev, o)
	}
}

// Publish sends o to topic as a retained message so late subscribers pick
// up the current orientation.
func Publish(client mqtt.Client, topic string, o orientation.ScreenOrientation) error {
	token := client.Publish(topic, 1, true, o.String())
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("publish %s: %w", topic, token.Error())
	}
	return nil
}
