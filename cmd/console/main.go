// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/orientation_provider/internal/app"
	"github.com/relabs-tech/orientation_provider/internal/orientation"
)

func main() {
	screen := flag.String("screen", "portrait", "screen orientation (portrait, landscape_left, landscape_right, portrait_upside_down)")
	rate := flag.Float64("rate", orientation.DefaultRateHz, "sample rate in Hz")
	every := flag.Int("every", 6, "print every Nth estimate")
	flag.Parse()

	o, err := orientation.ParseScreenOrientation(*screen)
	if err != nil {
		log.Fatalf("invalid -screen: %v", err)
	}

	log.Println("starting orientation provider (mock console)")

	if err := app.RunConsole(o, *rate, *every); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
