package app

import (
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/orientation_provider/internal/config"
)

func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to estimates
	token := client.Subscribe(cfg.TopicEstimate, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p EstimatePayload
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("console: estimate unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[ORIENT] ROLL=%7.2f  PITCH=%7.2f  YAW=%7.2f  UPSIDE_DOWN=%t\n",
			p.RollDeg, p.PitchDeg, p.YawDeg, p.UpsideDown,
		)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicEstimate)

	// Subscribe to screen orientation changes
	if cfg.TopicScreenOrientation != "" {
		screenToken := client.Subscribe(cfg.TopicScreenOrientation, 0, func(_ mqtt.Client, msg mqtt.Message) {
			fmt.Printf("[SCREEN] %s\n", msg.Payload())
		})
		screenToken.Wait()
		if screenToken.Error() != nil {
			return screenToken.Error()
		}
		log.Printf("console: subscribed to %s", cfg.TopicScreenOrientation)
	}

	// Wait for Ctrl+C
	waitForSignal()

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
