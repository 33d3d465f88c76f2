package command

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/teslashibe/go-wastesort/internal/clock"
	"github.com/teslashibe/go-wastesort/internal/log"
)

// Default TCP channel settings, matching the ESP32 firmware.
const (
	DefaultHost        = "192.168.43.66"
	DefaultPort        = 80
	DefaultTimeout     = 10 * time.Second
	DefaultSettleDelay = 1 * time.Second
)

// TCPConfig holds the actuator address and per-send timing.
type TCPConfig struct {
	Host string
	Port int

	// Timeout bounds both connect and write.
	Timeout time.Duration

	// SettleDelay is held after the write, before closing, so the firmware
	// starts acting on the command while the connection is still up.
	SettleDelay time.Duration
}

// DefaultTCPConfig returns the production defaults.
func DefaultTCPConfig() TCPConfig {
	return TCPConfig{
		Host:        DefaultHost,
		Port:        DefaultPort,
		Timeout:     DefaultTimeout,
		SettleDelay: DefaultSettleDelay,
	}
}

// Addr returns host:port.
func (c TCPConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// TCPChannel opens a fresh TCP connection for every command.
type TCPChannel struct {
	cfg    TCPConfig
	addr   string
	dialer net.Dialer
	clk    clock.Clock
	log    *slog.Logger
}

// NewTCP creates a TCP command channel. A nil clock uses wall time.
func NewTCP(cfg TCPConfig, clk clock.Clock) *TCPChannel {
	if clk == nil {
		clk = clock.Real{}
	}
	return &TCPChannel{
		cfg:    cfg,
		addr:   cfg.Addr(),
		dialer: net.Dialer{Timeout: cfg.Timeout},
		clk:    clk,
		log:    log.Component("command").With("transport", "tcp", "addr", cfg.Addr()),
	}
}

// Send dials the actuator, writes cmd followed by a newline, waits the settle
// delay and closes. Failures are logged and returned; nothing is retried.
func (c *TCPChannel) Send(ctx context.Context, cmd Command) error {
	// A quit request never aborts a command half-way.
	ctx = context.WithoutCancel(ctx)

	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return c.fail(cmd, "dial", err)
	}
	defer conn.Close()

	if c.cfg.Timeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(c.cfg.Timeout))
	}
	if _, err := io.WriteString(conn, cmd.Line()); err != nil {
		return c.fail(cmd, "write", err)
	}
	c.log.Info("sent command", "command", cmd)

	c.clk.Sleep(c.cfg.SettleDelay)
	return nil
}

func (c *TCPChannel) fail(cmd Command, op string, err error) error {
	terr := &TransportError{Command: cmd, Op: op, Addr: c.addr, Err: err}
	c.log.Warn("command send failed", "command", cmd, "op", op, "timeout", terr.Timeout(), "error", err)
	return terr
}
