// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"log"

	"github.com/relabs-tech/orientation_provider/internal/orientation"
	"github.com/relabs-tech/orientation_provider/internal/screen"
	"github.com/relabs-tech/orientation_provider/internal/sensors"
)

// RunConsole prints estimates from the mock sensor without a broker.
func RunConsole(screenOrientation orientation.ScreenOrientation, rateHz float64, every int) error {
	p := orientation.NewProvider(
		sensors.NewMock(),
		screen.Static(screenOrientation),
		NewLogSink(log.Default(), every),
		orientation.WithRate(rateHz),
	)
	if !p.Start() {
		return orientation.ErrSensorUnavailable
	}
	waitForSignal()
	p.Stop()
	return nil
}
