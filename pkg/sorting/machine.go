// Package sorting implements the debounced stop-and-sort sequence run when
// the robot reaches a waste object.
package sorting

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-wastesort/internal/clock"
	"github.com/teslashibe/go-wastesort/internal/log"
	"github.com/teslashibe/go-wastesort/pkg/command"
	"github.com/teslashibe/go-wastesort/pkg/steering"
	"github.com/teslashibe/go-wastesort/pkg/waste"
)

// State is the machine's coarse state.
type State int

const (
	Cruising State = iota
	Dispatching
)

func (s State) String() string {
	if s == Dispatching {
		return "dispatching"
	}
	return "cruising"
}

// MarshalText encodes s by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Memory is what the machine remembers about the last completed dispatch.
type Memory struct {
	LastClass    string    `json:"last_class"`
	HasLast      bool      `json:"has_last"`
	LastDispatch time.Time `json:"last_dispatch"`
}

// Dispatch records one completed stop-and-sort sequence.
type Dispatch struct {
	ID          uuid.UUID       `json:"id"`
	Class       string          `json:"class"`
	Category    waste.Category  `json:"category"`
	Belt        command.Command `json:"belt"`
	Distance    float64         `json:"distance"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
}

// Listener is notified after each completed dispatch. Listeners run on the
// loop goroutine and must not block.
type Listener interface {
	OnDispatch(d Dispatch)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(d Dispatch)

// OnDispatch calls f.
func (f ListenerFunc) OnDispatch(d Dispatch) { f(d) }

// Action describes what a Step did.
type Action int

const (
	// ActionSteer sent a single movement command.
	ActionSteer Action = iota
	// ActionDispatch ran the full stop-and-sort sequence.
	ActionDispatch
	// ActionSuppressed reached an object but the debounce guard blocked
	// it. Nothing was sent.
	ActionSuppressed
)

func (a Action) String() string {
	switch a {
	case ActionDispatch:
		return "dispatch"
	case ActionSuppressed:
		return "suppressed"
	default:
		return "steer"
	}
}

// MarshalText encodes a by name.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Outcome is the result of one Step.
type Outcome struct {
	Action   Action            `json:"action"`
	Commands []command.Command `json:"commands,omitempty"`
	Dispatch *Dispatch         `json:"dispatch,omitempty"`
}

// Machine decides between steering and dispatching for each processed
// frame. It is owned by a single goroutine and holds no locks.
type Machine struct {
	cfg       Config
	ch        command.Channel
	policy    *waste.Policy
	clk       clock.Clock
	listeners []Listener
	log       *slog.Logger

	state State
	mem   Memory
}

// NewMachine creates a machine in the Cruising state with empty memory.
func NewMachine(cfg Config, ch command.Channel, policy *waste.Policy, clk clock.Clock, listeners ...Listener) *Machine {
	if clk == nil {
		clk = clock.Real{}
	}
	if policy == nil {
		policy = waste.DefaultPolicy()
	}
	return &Machine{
		cfg:       cfg,
		ch:        ch,
		policy:    policy,
		clk:       clk,
		listeners: listeners,
		log:       log.Component("sorting"),
	}
}

// AddListener registers l for subsequent dispatches. Not safe to call
// while Step is running.
func (m *Machine) AddListener(l Listener) {
	m.listeners = append(m.listeners, l)
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Memory returns a copy of the dispatch memory.
func (m *Machine) Memory() Memory { return m.mem }

// Step acts on the nearest target of one processed frame. found is false
// when the frame had no detections. Send errors are ignored; the channel
// logs them.
func (m *Machine) Step(ctx context.Context, target steering.Target, found bool) Outcome {
	if !found {
		m.send(ctx, command.Forward)
		return Outcome{Action: ActionSteer, Commands: []command.Command{command.Forward}}
	}

	if target.Distance >= m.cfg.StopThreshold {
		cmd := target.Steering.Command()
		m.send(ctx, cmd)
		return Outcome{Action: ActionSteer, Commands: []command.Command{cmd}}
	}

	class := target.Detection.Label
	if !m.shouldDispatch(class) {
		m.log.Debug("dispatch suppressed", "class", class, "since_last", m.clk.Now().Sub(m.mem.LastDispatch))
		return Outcome{Action: ActionSuppressed}
	}

	d := m.dispatch(ctx, class, target.Distance)
	return Outcome{
		Action:   ActionDispatch,
		Commands: []command.Command{command.Stop, d.Belt, command.Forward},
		Dispatch: &d,
	}
}

// shouldDispatch reports whether the debounce guard lets class through.
func (m *Machine) shouldDispatch(class string) bool {
	if !m.mem.HasLast || class != m.mem.LastClass {
		return true
	}
	return m.clk.Now().Sub(m.mem.LastDispatch) > m.cfg.DebounceWindow
}

func (m *Machine) dispatch(ctx context.Context, class string, distance float64) Dispatch {
	category, belt := m.policy.Classify(class)

	m.state = Dispatching
	d := Dispatch{
		ID:        uuid.New(),
		Class:     class,
		Category:  category,
		Belt:      belt,
		Distance:  distance,
		StartedAt: m.clk.Now(),
	}
	m.log.Info("object reached", "class", class, "category", category, "distance", distance)

	m.send(ctx, command.Stop)
	m.send(ctx, belt)
	m.clk.Sleep(m.cfg.SortingDelay)
	m.send(ctx, command.Forward)

	now := m.clk.Now()
	m.mem = Memory{LastClass: class, HasLast: true, LastDispatch: now}
	m.state = Cruising
	d.CompletedAt = now

	for _, l := range m.listeners {
		l.OnDispatch(d)
	}
	return d
}

func (m *Machine) send(ctx context.Context, cmd command.Command) {
	_ = m.ch.Send(ctx, cmd)
}
