package command

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/teslashibe/go-wastesort/internal/clock"
)

// listen starts a local actuator stand-in that reports each received line
// and whether the connection was closed after it.
func listen(t *testing.T) (TCPConfig, <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	lines := make(chan string, 16)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				r := bufio.NewReader(c)
				line, err := r.ReadString('\n')
				if err != nil {
					return
				}
				lines <- line
				// The sender closes after the settle delay; reading again
				// must observe EOF.
				if _, err := r.ReadByte(); err == nil {
					lines <- "unexpected trailing data"
				}
			}(conn)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return TCPConfig{
		Host:        "127.0.0.1",
		Port:        addr.Port,
		Timeout:     time.Second,
		SettleDelay: time.Second,
	}, lines
}

func TestTCPChannel_SendsNewlineTerminatedCommand(t *testing.T) {
	cfg, lines := listen(t)
	clk := clock.NewFake(time.Unix(0, 0))
	ch := NewTCP(cfg, clk)

	if err := ch.Send(context.Background(), Stop); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case line := <-lines:
		if line != "STOP\n" {
			t.Errorf("wire: got %q, want %q", line, "STOP\n")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("actuator never received the command")
	}

	sleeps := clk.Sleeps()
	if len(sleeps) != 1 || sleeps[0] != time.Second {
		t.Errorf("settle delay: got %v, want [1s]", sleeps)
	}
}

func TestTCPChannel_OneConnectionPerCommand(t *testing.T) {
	cfg, lines := listen(t)
	ch := NewTCP(cfg, clock.NewFake(time.Unix(0, 0)))

	cmds := []Command{Stop, "Recyclable Belt", Forward}
	for _, c := range cmds {
		if err := ch.Send(context.Background(), c); err != nil {
			t.Fatalf("Send(%s): %v", c, err)
		}
	}

	got := map[string]bool{}
	for range cmds {
		select {
		case line := <-lines:
			got[line] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("only received %d of %d commands", len(got), len(cmds))
		}
	}
	for _, c := range cmds {
		if !got[c.Line()] {
			t.Errorf("missing %q, got %v", c.Line(), got)
		}
	}
}

func TestTCPChannel_DialFailureIsTransportError(t *testing.T) {
	// Grab a free port, then close it so nothing is listening.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	clk := clock.NewFake(time.Unix(0, 0))
	ch := NewTCP(TCPConfig{Host: "127.0.0.1", Port: port, Timeout: 200 * time.Millisecond, SettleDelay: time.Second}, clk)

	err = ch.Send(context.Background(), Forward)
	if err == nil {
		t.Fatal("expected error sending to closed port")
	}

	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *TransportError, got %T", err)
	}
	if terr.Op != "dial" {
		t.Errorf("Op: got %q, want dial", terr.Op)
	}
	if terr.Command != Forward {
		t.Errorf("Command: got %q, want FORWARD", terr.Command)
	}
	if terr.Addr != net.JoinHostPort("127.0.0.1", strconv.Itoa(port)) {
		t.Errorf("Addr: got %q", terr.Addr)
	}
	if len(clk.Sleeps()) != 0 {
		t.Errorf("no settle delay expected after a failed dial, got %v", clk.Sleeps())
	}
}

func TestTCPChannel_CancelledContextStillSends(t *testing.T) {
	cfg, lines := listen(t)
	ch := NewTCP(cfg, clock.NewFake(time.Unix(0, 0)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := ch.Send(ctx, Forward); err != nil {
		t.Fatalf("Send with cancelled ctx: %v", err)
	}
	select {
	case line := <-lines:
		if line != "FORWARD\n" {
			t.Errorf("wire: got %q", line)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("command was not delivered")
	}
}

func TestDefaultTCPConfig(t *testing.T) {
	cfg := DefaultTCPConfig()
	if cfg.Addr() != "192.168.43.66:80" {
		t.Errorf("Addr: got %q", cfg.Addr())
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout: got %v, want 10s", cfg.Timeout)
	}
	if cfg.SettleDelay != time.Second {
		t.Errorf("SettleDelay: got %v, want 1s", cfg.SettleDelay)
	}
}
