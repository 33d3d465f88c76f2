// Package hub provides a thread-safe websocket broadcast hub
// using the idiomatic Go channel-based fan-out pattern.
package hub

import (
	"encoding/json"
	"time"
)

// Event names pushed to dashboard clients.
const (
	EventTick     = "tick"
	EventCommand  = "command"
	EventDispatch = "dispatch"
)

// Event is the JSON envelope sent to clients.
type Event struct {
	Type string    `json:"type"`
	Time time.Time `json:"time"`
	Data any       `json:"data"`
}

// Message is an encoded frame queued for clients.
type Message struct {
	Data []byte
}

// NewEventMessage encodes an event of the given type.
func NewEventMessage(typ string, at time.Time, data any) (Message, error) {
	b, err := json.Marshal(Event{Type: typ, Time: at, Data: data})
	if err != nil {
		return Message{}, err
	}
	return Message{Data: b}, nil
}
