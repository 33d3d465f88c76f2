package command

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.bug.st/serial"

	"github.com/teslashibe/go-wastesort/internal/clock"
	"github.com/teslashibe/go-wastesort/internal/log"
)

// DefaultBaudRate is the ESP32 USB console rate.
const DefaultBaudRate = 115200

// SerialConfig describes a USB serial link to the actuator controller.
type SerialConfig struct {
	Device      string
	BaudRate    int
	SettleDelay time.Duration
}

// Mode converts the config into the mode expected by go.bug.st/serial.
func (c SerialConfig) Mode() *serial.Mode {
	baud := c.BaudRate
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// PortOpener opens a serial device.
type PortOpener func(device string, mode *serial.Mode) (io.WriteCloser, error)

func openSerialPort(device string, mode *serial.Mode) (io.WriteCloser, error) {
	return serial.Open(device, mode)
}

// SerialChannel opens the serial device for every command, mirroring the TCP
// channel's one-shot contract.
type SerialChannel struct {
	cfg  SerialConfig
	open PortOpener
	clk  clock.Clock
	log  *slog.Logger
}

// NewSerial creates a serial command channel. A nil clock uses wall time.
func NewSerial(cfg SerialConfig, clk clock.Clock) *SerialChannel {
	if clk == nil {
		clk = clock.Real{}
	}
	return &SerialChannel{
		cfg:  cfg,
		open: openSerialPort,
		clk:  clk,
		log:  log.Component("command").With("transport", "serial", "device", cfg.Device),
	}
}

// WithOpener replaces the port opener. Used by tests.
func (c *SerialChannel) WithOpener(open PortOpener) *SerialChannel {
	c.open = open
	return c
}

// Send writes cmd and a newline to the serial device, waits the settle delay
// and closes the port.
func (c *SerialChannel) Send(ctx context.Context, cmd Command) error {
	if c.cfg.Device == "" {
		return c.fail(cmd, "open", ErrNoDevice)
	}

	port, err := c.open(c.cfg.Device, c.cfg.Mode())
	if err != nil {
		return c.fail(cmd, "open", err)
	}
	defer port.Close()

	if _, err := io.WriteString(port, cmd.Line()); err != nil {
		return c.fail(cmd, "write", err)
	}
	c.log.Info("sent command", "command", cmd)

	c.clk.Sleep(c.cfg.SettleDelay)
	return nil
}

func (c *SerialChannel) fail(cmd Command, op string, err error) error {
	c.log.Warn("command send failed", "command", cmd, "op", op, "error", err)
	return &TransportError{Command: cmd, Op: op, Addr: c.cfg.Device, Err: err}
}
