// Fake-actuator stands in for the ESP32 on the bench. It accepts TCP
// connections and logs every newline-terminated command it receives.
package main

import (
	"bufio"
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-wastesort/internal/log"
)

func main() {
	addr := flag.String("listen", ":8080", "Address to listen on")
	flag.Parse()
	log.Init("info")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Error("listen failed", "addr", *addr, "error", err)
		os.Exit(1)
	}
	log.Info("fake actuator listening", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("accept failed", "error", err)
			continue
		}
		go handle(conn)
	}
}

func handle(conn net.Conn) {
	defer conn.Close()
	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		log.Info("command received", "remote", conn.RemoteAddr().String(), "command", sc.Text())
	}
}
