// Wastebot drives an autonomous waste-sorting robot: it watches the camera
// stream, steers toward the nearest object and routes it to the recyclable
// or non-recyclable belt.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-wastesort/internal/config"
	"github.com/teslashibe/go-wastesort/internal/log"
	"github.com/teslashibe/go-wastesort/pkg/wastebot"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}
	log.Init(cfg.LogLevel)

	app, err := wastebot.New(cfg)
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(2)
	}

	if err := app.Init(); err != nil {
		log.Error("initialization failed", "error", err)
		os.Exit(1)
	}
	defer app.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil {
		log.Error("runtime error", "error", err)
	}
}

// loadConfig applies defaults, the optional config file, the environment
// and finally command line flags.
func loadConfig() (config.Config, error) {
	flags := config.NewFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return cfg, err
	}
	flags.Apply(&cfg)
	return cfg, nil
}
