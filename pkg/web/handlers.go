package web

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-wastesort/pkg/hub"
	"github.com/teslashibe/go-wastesort/pkg/loop"
	"github.com/teslashibe/go-wastesort/pkg/sorting"
)

// Status is the /api/status response.
type Status struct {
	loop.Stats
	State     sorting.State    `json:"state"`
	Memory    sorting.Memory   `json:"memory"`
	LastTick  *loop.TickReport `json:"last_tick,omitempty"`
	Sorted    uint64           `json:"sorted"`
	Clients   int              `json:"clients"`
	Journal   bool             `json:"journal"`
	UptimeSec float64          `json:"uptime_sec"`
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Type("html")
	return c.Send(indexHTML)
}

// handleStatus returns the robot's current state
func (s *Server) handleStatus(c *fiber.Ctx) error {
	st := Status{
		Clients:   s.ClientCount(),
		Journal:   s.journal != nil,
		UptimeSec: time.Since(s.started).Seconds(),
	}
	if s.Stats != nil {
		st.Stats = s.Stats()
	}

	s.mu.RLock()
	if s.lastTick != nil {
		t := *s.lastTick
		st.LastTick = &t
		st.State = t.State
		st.Memory = t.Memory
	}
	st.Sorted = s.sorted
	s.mu.RUnlock()

	return c.JSON(st)
}

// handleCommands returns recent commands, oldest first
func (s *Server) handleCommands(c *fiber.Ctx) error {
	s.mu.RLock()
	out := make([]CommandEntry, len(s.commands))
	copy(out, s.commands)
	s.mu.RUnlock()
	return c.JSON(out)
}

// handleDispatches returns journaled dispatches, newest first
func (s *Server) handleDispatches(c *fiber.Ctx) error {
	if s.journal == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "journal disabled",
		})
	}

	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 500 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be between 1 and 500",
		})
	}

	entries, err := s.journal.Recent(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	counts, err := s.journal.CountByCategory()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"dispatches": entries,
		"counts":     counts,
	})
}

// handleStop asks the robot to quit after the current frame
func (s *Server) handleStop(c *fiber.Ctx) error {
	if s.OnStop == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "stop not configured",
		})
	}
	s.log.Warn("stop requested from dashboard", "remote", c.IP())
	s.OnStop()
	return c.JSON(fiber.Map{"stopping": true})
}

// handleEventsWS streams tick, command and dispatch events
func (s *Server) handleEventsWS(c *websocket.Conn) {
	client := hub.NewClient(s.events, c)
	if client == nil {
		return
	}
	client.Run()
}
