package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/orientation_provider/internal/config"
)

// RunWeb serves the hub from estimates received over MQTT.
func RunWeb() error {
	cfg := config.Get()
	hub := NewHub()
	defer hub.Close()

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to estimate topic and feed the hub on each message
	token := client.Subscribe(cfg.TopicEstimate, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p EstimatePayload
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("MQTT payload unmarshal error: %v", err)
			return
		}
		hub.Publish(p.Estimate)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("subscribed to MQTT topic %s", cfg.TopicEstimate)

	// 3) JSON API, websocket stream and static files from ./web
	port := cfg.WebServerPort
	if port == 0 {
		port = 8080
	}
	addr := fmt.Sprintf(":%d", port)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, hub.Handler("web"))
}
