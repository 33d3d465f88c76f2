package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestNewEventMessage(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msg, err := NewEventMessage(EventCommand, at, map[string]string{"command": "STOP"})
	if err != nil {
		t.Fatalf("NewEventMessage: %v", err)
	}

	var got struct {
		Type string            `json:"type"`
		Time time.Time         `json:"time"`
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "command" || got.Data["command"] != "STOP" || !got.Time.Equal(at) {
		t.Errorf("unexpected event %+v", got)
	}
}

func TestNewEventMessage_Unencodable(t *testing.T) {
	if _, err := NewEventMessage(EventTick, time.Now(), make(chan int)); err == nil {
		t.Error("expected an encoding error")
	}
}

func TestHub_FanOutAndSlowClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New("test")
	go h.Run(ctx)

	fast := &Client{hub: h, send: make(chan Message, 4)}
	slow := &Client{hub: h, send: make(chan Message)} // never drained
	h.register <- fast
	h.register <- slow

	waitFor(t, func() bool { return h.ClientCount() == 2 })

	if err := h.Publish(EventTick, map[string]int{"frame": 5}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case msg := <-fast.send:
		if len(msg.Data) == 0 {
			t.Error("empty message")
		}
	case <-time.After(time.Second):
		t.Fatal("fast client did not receive the event")
	}

	waitFor(t, func() bool { return h.ClientCount() == 1 })
	if _, ok := <-slow.send; ok {
		t.Error("slow client channel should be closed")
	}
}

func TestHub_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := New("test")
	go h.Run(ctx)

	c := &Client{hub: h, send: make(chan Message, 1)}
	h.register <- c
	cancel()

	select {
	case <-h.done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	if _, ok := <-c.send; ok {
		t.Error("client channel should be closed on shutdown")
	}
	if h.ClientCount() != 0 {
		t.Errorf("clients after shutdown: %d", h.ClientCount())
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}
