// Actuator-send delivers a single command to the actuator controller, for
// bench-testing the ESP32 firmware without the camera loop.
//
// Usage:
//
//	actuator-send -host 192.168.43.66 FORWARD
//	actuator-send -serial /dev/ttyUSB0 "Recyclable Belt"
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/teslashibe/go-wastesort/internal/log"
	"github.com/teslashibe/go-wastesort/pkg/command"
)

func main() {
	def := command.DefaultTCPConfig()
	host := flag.String("host", def.Host, "Actuator controller host")
	port := flag.Int("port", def.Port, "Actuator controller TCP port")
	device := flag.String("serial", "", "Send over this serial device instead of TCP")
	baud := flag.Int("baud", command.DefaultBaudRate, "Serial baud rate")
	timeout := flag.Duration("timeout", def.Timeout, "Connect and write timeout")
	settle := flag.Duration("settle", def.SettleDelay, "Hold the connection open this long after writing")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	log.Init(level)

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: actuator-send [flags] COMMAND")
		flag.PrintDefaults()
		os.Exit(2)
	}
	cmd := command.Command(strings.Join(flag.Args(), " "))

	var ch command.Channel
	if *device != "" {
		ch = command.NewSerial(command.SerialConfig{Device: *device, BaudRate: *baud, SettleDelay: *settle}, nil)
	} else {
		ch = command.NewTCP(command.TCPConfig{Host: *host, Port: *port, Timeout: *timeout, SettleDelay: *settle}, nil)
	}

	if err := ch.Send(context.Background(), cmd); err != nil {
		fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
		os.Exit(1)
	}
}
