// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/orientation_provider/internal/config"
	"github.com/relabs-tech/orientation_provider/internal/orientation"
	"github.com/relabs-tech/orientation_provider/internal/screen"
	"github.com/relabs-tech/orientation_provider/internal/sensors"
)

func TestNewSensorSource(t *testing.T) {
	cfg := config.Defaults()

	src, err := newSensorSource(cfg)
	require.NoError(t, err)
	assert.IsType(t, &sensors.Mock{}, src)

	cfg.SensorSource = config.SensorSerial
	cfg.SerialPort = "/dev/ttyUSB0"
	src, err = newSensorSource(cfg)
	require.NoError(t, err)
	assert.IsType(t, &sensors.Serial{}, src)

	cfg.SensorSource = config.SensorScenario
	cfg.ScenarioFile = "../../scenarios/tilt.yaml"
	src, err = newSensorSource(cfg)
	require.NoError(t, err)
	assert.IsType(t, &sensors.ScenarioSource{}, src)
	assert.True(t, src.IsAvailable())

	cfg.ScenarioFile = "does-not-exist.yaml"
	_, err = newSensorSource(cfg)
	assert.Error(t, err)

	cfg.SensorSource = "gyro"
	_, err = newSensorSource(cfg)
	assert.Error(t, err)
}

func TestNewScreenSourceStatic(t *testing.T) {
	cfg := config.Defaults()
	cfg.ScreenOrientation = orientation.LandscapeRight

	src, err := newScreenSource(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, screen.Static(orientation.LandscapeRight), src)
	assert.Equal(t, orientation.LandscapeRight, src.Current())
}
