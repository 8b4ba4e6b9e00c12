// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/orientation_provider/internal/app"
	"github.com/relabs-tech/orientation_provider/internal/config"
	"github.com/relabs-tech/orientation_provider/internal/orientation"
)

func main() {
	configPath := flag.String("config", "./orientation_config.txt", "path to configuration file")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: screen [-config path] <portrait|landscape_left|landscape_right|portrait_upside_down>")
	}
	o, err := orientation.ParseScreenOrientation(flag.Arg(0))
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunScreenPublisher(o); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
