// Package loop runs the perception, decision and actuation cycle: read a
// frame, detect objects, pick the nearest and let the sorting machine act.
package loop

import (
	"context"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-wastesort/internal/clock"
	"github.com/teslashibe/go-wastesort/internal/log"
	"github.com/teslashibe/go-wastesort/pkg/detection"
	"github.com/teslashibe/go-wastesort/pkg/sorting"
	"github.com/teslashibe/go-wastesort/pkg/steering"
	"github.com/teslashibe/go-wastesort/pkg/vision"
)

// Config holds frame loop settings.
type Config struct {
	FrameWidth     int           // Processed frame width
	FrameHeight    int           // Processed frame height
	FrameSkip      int           // Process one frame in every FrameSkip
	Deadband       int           // Steering deadband in pixels
	ReconnectPause time.Duration // Pause before reopening a failed stream
}

// DefaultConfig returns the production loop settings.
func DefaultConfig() Config {
	return Config{
		FrameWidth:     640,
		FrameHeight:    480,
		FrameSkip:      5,
		Deadband:       steering.DefaultDeadband,
		ReconnectPause: 2 * time.Second,
	}
}

// Center returns the processed frame center.
func (c Config) Center() image.Point {
	return image.Pt(c.FrameWidth/2, c.FrameHeight/2)
}

// TickReport summarizes one processed frame.
type TickReport struct {
	Frame      uint64                `json:"frame"`
	At         time.Time             `json:"at"`
	Detections []detection.Detection `json:"detections"`
	Target     *steering.Target      `json:"target,omitempty"`
	Outcome    sorting.Outcome       `json:"outcome"`
	State      sorting.State         `json:"state"`
	Memory     sorting.Memory        `json:"memory"`
	Latency    time.Duration         `json:"latency_ns"`
}

// Listener receives a report for every processed frame. It runs on the
// loop goroutine and must not block.
type Listener interface {
	OnTick(r TickReport)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(r TickReport)

// OnTick calls f.
func (f ListenerFunc) OnTick(r TickReport) { f(r) }

// Stats is a snapshot of loop counters.
type Stats struct {
	Connected       bool   `json:"connected"`
	FramesRead      uint64 `json:"frames_read"`
	FramesProcessed uint64 `json:"frames_processed"`
	ReadFailures    uint64 `json:"read_failures"`
	Reconnects      uint64 `json:"reconnects"`
	DetectErrors    uint64 `json:"detect_errors"`
}

// Loop owns the video source and drives the sorting machine. Run must be
// called from a single goroutine; Stats may be read from any goroutine.
type Loop struct {
	cfg       Config
	open      vision.Opener
	det       detection.Detector
	sm        *sorting.Machine
	clk       clock.Clock
	listeners []Listener
	log       *slog.Logger

	src   vision.Source
	count uint64

	connected       atomic.Bool
	framesProcessed atomic.Uint64
	framesRead      atomic.Uint64
	readFailures    atomic.Uint64
	reconnects      atomic.Uint64
	detectErrors    atomic.Uint64
}

// New creates a loop. Nothing is opened until Run.
func New(cfg Config, open vision.Opener, det detection.Detector, sm *sorting.Machine, clk clock.Clock, listeners ...Listener) *Loop {
	if cfg.FrameSkip < 1 {
		cfg.FrameSkip = 1
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &Loop{
		cfg:       cfg,
		open:      open,
		det:       det,
		sm:        sm,
		clk:       clk,
		listeners: listeners,
		log:       log.Component("loop"),
	}
}

// AddListener registers l. Not safe to call while Run is active.
func (l *Loop) AddListener(lis Listener) {
	l.listeners = append(l.listeners, lis)
}

// Stats returns current counters.
func (l *Loop) Stats() Stats {
	return Stats{
		Connected:       l.connected.Load(),
		FramesRead:      l.framesRead.Load(),
		FramesProcessed: l.framesProcessed.Load(),
		ReadFailures:    l.readFailures.Load(),
		Reconnects:      l.reconnects.Load(),
		DetectErrors:    l.detectErrors.Load(),
	}
}

// Run processes frames until ctx is cancelled. Stream failures never end
// the loop; the source is reopened after ReconnectPause. Cancellation is
// observed between frames, so an in-progress dispatch sequence completes
// first.
func (l *Loop) Run(ctx context.Context) error {
	defer l.closeSource()

	l.log.Info("frame loop started",
		"width", l.cfg.FrameWidth,
		"height", l.cfg.FrameHeight,
		"skip", l.cfg.FrameSkip,
		"reconnect_pause", l.cfg.ReconnectPause)

	for {
		if err := ctx.Err(); err != nil {
			l.log.Info("frame loop stopped", "frames_read", l.framesRead.Load())
			return err
		}

		if l.src == nil {
			if err := l.connect(); err != nil {
				l.log.Warn("failed to open stream, retrying", "error", err, "pause", l.cfg.ReconnectPause)
				l.clk.Sleep(l.cfg.ReconnectPause)
				continue
			}
		}

		frame, err := l.src.Read()
		if err != nil {
			l.readFailures.Add(1)
			l.log.Warn("failed to grab frame, reconnecting", "error", err, "pause", l.cfg.ReconnectPause)
			l.closeSource()
			l.reconnects.Add(1)
			l.clk.Sleep(l.cfg.ReconnectPause)
			continue
		}

		l.count++
		l.framesRead.Add(1)
		if l.count%uint64(l.cfg.FrameSkip) != 0 {
			frame.Close()
			continue
		}

		l.process(ctx, frame)
	}
}

func (l *Loop) connect() error {
	src, err := l.open()
	if err != nil {
		return err
	}
	l.src = src
	l.connected.Store(true)
	l.log.Info("stream opened")
	return nil
}

func (l *Loop) closeSource() {
	if l.src == nil {
		return
	}
	if err := l.src.Close(); err != nil {
		l.log.Debug("close stream", "error", err)
	}
	l.src = nil
	l.connected.Store(false)
}

func (l *Loop) process(ctx context.Context, frame vision.Frame) {
	start := time.Now()
	dets := l.detect(frame)

	target, found := steering.Select(dets, l.cfg.Center(), l.cfg.Deadband)
	out := l.sm.Step(ctx, target, found)
	l.framesProcessed.Add(1)

	r := TickReport{
		Frame:      l.count,
		At:         l.clk.Now(),
		Detections: dets,
		Outcome:    out,
		State:      l.sm.State(),
		Memory:     l.sm.Memory(),
		Latency:    time.Since(start),
	}
	if found {
		r.Target = &target
	}

	l.log.Debug("tick",
		"frame", r.Frame,
		"detections", len(dets),
		"action", out.Action,
		"latency", r.Latency)

	for _, lis := range l.listeners {
		lis.OnTick(r)
	}
}

// detect resizes frame and runs the detector. Both frames are closed
// before returning. Failures count as an empty frame.
func (l *Loop) detect(frame vision.Frame) []detection.Detection {
	defer frame.Close()

	resized, err := frame.Resize(l.cfg.FrameWidth, l.cfg.FrameHeight)
	if err != nil {
		l.detectErrors.Add(1)
		l.log.Warn("resize failed", "error", err)
		return nil
	}
	defer resized.Close()

	dets, err := l.det.Detect(resized)
	if err != nil {
		l.detectErrors.Add(1)
		l.log.Warn("detection failed", "error", err)
		return nil
	}
	return dets
}
