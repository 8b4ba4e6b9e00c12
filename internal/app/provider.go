// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/orientation_provider/internal/config"
	"github.com/relabs-tech/orientation_provider/internal/orientation"
	"github.com/relabs-tech/orientation_provider/internal/screen"
	"github.com/relabs-tech/orientation_provider/internal/sensors"
)

// newSensorSource builds the sensor selected by SENSOR_SOURCE.
func newSensorSource(cfg *config.Config) (orientation.SensorSource, error) {
	switch cfg.SensorSource {
	case config.SensorMock, "":
		log.Println("using mock sensor source")
		return sensors.NewMock(), nil
	case config.SensorIMU:
		log.Printf("using IMU sensor on %s (CS %s)", cfg.IMUSPIDevice, cfg.IMUCSPin)
		imu, err := sensors.NewIMU(cfg.IMUSPIDevice, cfg.IMUCSPin)
		if err != nil {
			return nil, err
		}
		return imu, nil
	case config.SensorSerial:
		log.Printf("using serial sensor on %s", cfg.SerialPort)
		return sensors.NewSerial(cfg.SerialPort, cfg.SerialBaudRate), nil
	case config.SensorScenario:
		sc, err := sensors.LoadScenario(cfg.ScenarioFile)
		if err != nil {
			return nil, err
		}
		log.Printf("using scenario %s (%d keyframes, loop=%t)", cfg.ScenarioFile, len(sc.Keyframes), sc.Loop)
		return sensors.NewScenarioSource(sc), nil
	default:
		return nil, fmt.Errorf("unknown sensor source %q", cfg.SensorSource)
	}
}

// newScreenSource builds the orientation source selected by SCREEN_SOURCE.
func newScreenSource(cfg *config.Config, client mqtt.Client) (orientation.ScreenOrientationSource, error) {
	if cfg.ScreenSource != config.ScreenMQTT {
		log.Printf("using static screen orientation %s", cfg.ScreenOrientation)
		return screen.Static(cfg.ScreenOrientation), nil
	}
	src := screen.NewMQTTSource(cfg.TopicScreenOrientation, cfg.ScreenOrientation)
	if err := src.Subscribe(client); err != nil {
		return nil, err
	}
	return src, nil
}

// RunProvider runs sensor -> pipeline -> sinks until SIGINT/SIGTERM.
func RunProvider() error {
	log.Println("starting orientation provider")

	cfg := config.Get()
	if cfg == nil {
		return errors.New("config not initialized")
	}

	sensor, err := newSensorSource(cfg)
	if err != nil {
		return fmt.Errorf("sensor: %w", err)
	}

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProvider)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect: %w", token.Error())
	}
	defer client.Disconnect(250)
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	screenSrc, err := newScreenSource(cfg, client)
	if err != nil {
		return fmt.Errorf("screen orientation: %w", err)
	}

	sinks := MultiSink{NewMQTTSink(client, cfg.TopicEstimate)}
	if cfg.LogEstimates {
		sinks = append(sinks, NewLogSink(log.Default(), cfg.LogEvery))
	}

	var srv *http.Server
	if cfg.WebServerPort > 0 {
		hub := NewHub()
		defer hub.Close()
		sinks = append(sinks, hub)
		srv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.WebServerPort),
			Handler: hub.Handler("web"),
		}
		go func() {
			log.Printf("web server listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("web: server error: %v", err)
			}
		}()
	}

	p := orientation.NewProvider(sensor, screenSrc, sinks, orientation.WithRate(cfg.SampleRateHz))
	if !p.Start() {
		return fmt.Errorf("sensor %q: %w", cfg.SensorSource, orientation.ErrSensorUnavailable)
	}
	log.Printf("publishing estimates to %s", cfg.TopicEstimate)

	waitForSignal()
	log.Println("shutting down")
	p.Stop()

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("web: shutdown error: %v", err)
		}
	}
	return nil
}

func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	signal.Stop(sigCh)
}
