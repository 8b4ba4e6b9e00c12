// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/orientation_provider/internal/config"
	"github.com/relabs-tech/orientation_provider/internal/orientation"
	"github.com/relabs-tech/orientation_provider/internal/screen"
)

// RunScreenPublisher announces a screen orientation on the configured topic.
func RunScreenPublisher(o orientation.ScreenOrientation) error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDScreen)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect: %w", token.Error())
	}
	defer client.Disconnect(250)

	if err := screen.Publish(client, cfg.TopicScreenOrientation, o); err != nil {
		return err
	}
	log.Printf("screen: published %s to %s", o, cfg.TopicScreenOrientation)
	return nil
}
