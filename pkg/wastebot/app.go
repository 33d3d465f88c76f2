// Package wastebot wires the sorting robot together: video source,
// detector, sorting machine, command channel, journal and dashboard.
package wastebot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-wastesort/internal/clock"
	"github.com/teslashibe/go-wastesort/internal/config"
	"github.com/teslashibe/go-wastesort/internal/log"
	"github.com/teslashibe/go-wastesort/pkg/camera"
	"github.com/teslashibe/go-wastesort/pkg/command"
	"github.com/teslashibe/go-wastesort/pkg/detection"
	"github.com/teslashibe/go-wastesort/pkg/detection/yolo"
	"github.com/teslashibe/go-wastesort/pkg/journal"
	"github.com/teslashibe/go-wastesort/pkg/loop"
	"github.com/teslashibe/go-wastesort/pkg/sorting"
	"github.com/teslashibe/go-wastesort/pkg/web"
)

// App is the running robot.
type App struct {
	config config.Config
	clock  clock.Clock
	log    *slog.Logger

	channel  command.Channel
	detector detection.Detector
	machine  *sorting.Machine
	loop     *loop.Loop

	journal   *journal.Journal
	webServer *web.Server
}

// New creates an App after validating cfg.
func New(cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &App{
		config: cfg,
		clock:  clock.Real{},
		log:    log.Component("wastebot"),
	}, nil
}

// Init builds all components.
// Call this after New() and before Run().
func (a *App) Init() error {
	a.log.Info("initializing",
		"transport", a.config.Actuator.Transport,
		"stream", a.config.Stream.URL,
		"backend", a.config.Stream.Backend,
		"dry_run", a.config.DryRun)

	ch, err := a.newChannel()
	if err != nil {
		return fmt.Errorf("command channel: %w", err)
	}

	det, err := yolo.New(a.config.DetectionConfig())
	if err != nil {
		return fmt.Errorf("detector: %w", err)
	}
	a.detector = det

	open, err := camera.NewOpener(a.config.Stream.Backend, a.config.Stream.URL, a.config.Stream.ConnectTimeout.Duration)
	if err != nil {
		return fmt.Errorf("video source: %w", err)
	}

	if path := a.config.Journal.Path; path != "" {
		j, err := journal.Open(path)
		if err != nil {
			return fmt.Errorf("journal: %w", err)
		}
		a.journal = j
	}

	var dispatchListeners []sorting.Listener
	var tickListeners []loop.Listener
	if a.journal != nil {
		dispatchListeners = append(dispatchListeners, a.journal)
	}
	if port := a.config.Dashboard.Port; port != "" {
		var store web.DispatchStore
		if a.journal != nil {
			store = a.journal
		}
		a.webServer = web.NewServer(port, store)
		ch = command.Observe(ch, a.webServer.ObserveCommand)
		dispatchListeners = append(dispatchListeners, a.webServer)
		tickListeners = append(tickListeners, a.webServer)
	}

	a.channel = ch
	a.machine = sorting.NewMachine(a.config.SortingConfig(), ch, a.config.Policy(), a.clock, dispatchListeners...)
	a.loop = loop.New(a.config.LoopConfig(), open, a.detector, a.machine, a.clock, tickListeners...)

	if a.webServer != nil {
		a.webServer.Stats = a.loop.Stats
	}
	return nil
}

func (a *App) newChannel() (command.Channel, error) {
	if a.config.DryRun {
		return command.Discard{}, nil
	}
	switch a.config.Actuator.Transport {
	case config.TransportSerial:
		return command.NewSerial(a.config.SerialConfig(), a.clock), nil
	case config.TransportTCP:
		return command.NewTCP(a.config.TCPConfig(), a.clock), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", a.config.Actuator.Transport)
	}
}

// Run drives the frame loop until ctx is cancelled or the dashboard
// requests a stop. The dashboard runs alongside when enabled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.webServer != nil {
		a.webServer.OnStop = cancel
		go func() {
			if err := a.webServer.Start(ctx); err != nil {
				a.log.Warn("dashboard stopped", "error", err)
			}
		}()
	}

	a.log.Info("robot running, press Ctrl+C to stop")
	err := a.loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Shutdown releases all resources.
func (a *App) Shutdown() {
	if a.loop != nil {
		st := a.loop.Stats()
		a.log.Info("shutting down",
			"frames_read", st.FramesRead,
			"frames_processed", st.FramesProcessed,
			"reconnects", st.Reconnects)
	}
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			a.log.Warn("close detector", "error", err)
		}
	}
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.log.Warn("close journal", "error", err)
		}
	}
}
