// Package web provides the robot's monitoring dashboard: a JSON API, a live
// websocket event feed and a remote stop.
package web

import (
	"context"
	_ "embed"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/teslashibe/go-wastesort/internal/log"
	"github.com/teslashibe/go-wastesort/pkg/command"
	"github.com/teslashibe/go-wastesort/pkg/hub"
	"github.com/teslashibe/go-wastesort/pkg/journal"
	"github.com/teslashibe/go-wastesort/pkg/loop"
	"github.com/teslashibe/go-wastesort/pkg/sorting"
)

//go:embed index.html
var indexHTML []byte

// maxCommands is the size of the recent command buffer.
const maxCommands = 200

// DispatchStore is the read side of the dispatch journal.
type DispatchStore interface {
	Recent(limit int) ([]journal.Entry, error)
	CountByCategory() (map[string]int, error)
}

// CommandEntry is one command as seen by the dashboard.
type CommandEntry struct {
	Time    time.Time `json:"time"`
	Command string    `json:"command"`
	Error   string    `json:"error,omitempty"`
}

// Server is the web dashboard server
type Server struct {
	app  *fiber.App
	port string

	journal DispatchStore
	events  *hub.Hub
	started time.Time
	log     *slog.Logger

	mu       sync.RWMutex
	lastTick *loop.TickReport
	commands []CommandEntry
	sorted   uint64

	// Stats reports loop counters for /api/status.
	Stats func() loop.Stats

	// OnStop is called by POST /api/stop.
	OnStop func()
}

var (
	_ loop.Listener    = (*Server)(nil)
	_ sorting.Listener = (*Server)(nil)
)

// NewServer creates a dashboard listening on port. journal may be nil when
// journaling is disabled.
func NewServer(port string, journal DispatchStore) *Server {
	s := &Server{
		port:     port,
		journal:  journal,
		events:   hub.New("events"),
		started:  time.Now(),
		log:      log.Component("web"),
		commands: make([]CommandEntry, 0, maxCommands),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Wastebot Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	app.Get("/", s.handleIndex)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/commands", s.handleCommands)
	api.Get("/dispatches", s.handleDispatches)
	api.Post("/stop", s.handleStop)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// Start runs the server until ctx is cancelled or listening fails.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.port)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the server on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.events.Run(ctx)
	go func() {
		<-ctx.Done()
		if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil {
			s.log.Warn("dashboard shutdown", "error", err)
		}
	}()

	s.log.Info("dashboard listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

// OnTick records the latest tick and pushes it to clients.
func (s *Server) OnTick(r loop.TickReport) {
	s.mu.Lock()
	s.lastTick = &r
	s.mu.Unlock()
	s.publish(hub.EventTick, r)
}

// OnDispatch pushes a completed dispatch to clients.
func (s *Server) OnDispatch(d sorting.Dispatch) {
	s.mu.Lock()
	s.sorted++
	s.mu.Unlock()
	s.publish(hub.EventDispatch, d)
}

// ObserveCommand records a sent command. It matches command.ObserverFunc.
func (s *Server) ObserveCommand(cmd command.Command, err error) {
	e := CommandEntry{Time: time.Now(), Command: cmd.String()}
	if err != nil {
		e.Error = err.Error()
	}

	s.mu.Lock()
	s.commands = append(s.commands, e)
	if len(s.commands) > maxCommands {
		s.commands = s.commands[1:]
	}
	s.mu.Unlock()

	s.publish(hub.EventCommand, e)
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	return s.events.ClientCount()
}

func (s *Server) publish(typ string, data any) {
	if err := s.events.Publish(typ, data); err != nil {
		s.log.Debug("encode event", "type", typ, "error", err)
	}
}
