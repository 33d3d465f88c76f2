package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"go.bug.st/serial"

	"github.com/teslashibe/go-wastesort/internal/clock"
)

type fakePort struct {
	bytes.Buffer
	closed bool
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func TestSerialChannel_WritesLineAndCloses(t *testing.T) {
	port := &fakePort{}
	var gotDevice string
	var gotMode *serial.Mode

	clk := clock.NewFake(time.Unix(0, 0))
	ch := NewSerial(SerialConfig{Device: "/dev/ttyUSB0", SettleDelay: 500 * time.Millisecond}, clk).
		WithOpener(func(device string, mode *serial.Mode) (io.WriteCloser, error) {
			gotDevice, gotMode = device, mode
			return port, nil
		})

	if err := ch.Send(context.Background(), Left); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if port.String() != "LEFT\n" {
		t.Errorf("wire: got %q, want %q", port.String(), "LEFT\n")
	}
	if !port.closed {
		t.Error("port must be closed after each command")
	}
	if gotDevice != "/dev/ttyUSB0" {
		t.Errorf("device: got %q", gotDevice)
	}
	if gotMode.BaudRate != DefaultBaudRate {
		t.Errorf("baud: got %d, want %d", gotMode.BaudRate, DefaultBaudRate)
	}
	if s := clk.Sleeps(); len(s) != 1 || s[0] != 500*time.Millisecond {
		t.Errorf("settle: got %v", s)
	}
}

func TestSerialChannel_OpenFailure(t *testing.T) {
	boom := errors.New("no such device")
	ch := NewSerial(SerialConfig{Device: "/dev/missing"}, clock.NewFake(time.Unix(0, 0))).
		WithOpener(func(string, *serial.Mode) (io.WriteCloser, error) { return nil, boom })

	err := ch.Send(context.Background(), Stop)
	var terr *TransportError
	if !errors.As(err, &terr) || terr.Op != "open" {
		t.Fatalf("expected open TransportError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("error should wrap the opener failure: %v", err)
	}
}

func TestSerialChannel_NoDevice(t *testing.T) {
	err := NewSerial(SerialConfig{}, nil).Send(context.Background(), Stop)
	if !errors.Is(err, ErrNoDevice) {
		t.Errorf("got %v, want ErrNoDevice", err)
	}
}
