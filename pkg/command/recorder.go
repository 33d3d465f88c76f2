package command

import (
	"context"
	"sync"
)

// Recorder implements Channel for testing. It records every attempted
// command in order and never opens a connection.
type Recorder struct {
	// FailOn makes Send return the mapped error for that command. The
	// command is still recorded as attempted.
	FailOn map[Command]error

	// OnSend, if set, is called for each command before it is recorded.
	OnSend func(cmd Command)

	mu   sync.Mutex
	sent []Command
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Send records cmd.
func (r *Recorder) Send(ctx context.Context, cmd Command) error {
	if r.OnSend != nil {
		r.OnSend(cmd)
	}
	r.mu.Lock()
	r.sent = append(r.sent, cmd)
	r.mu.Unlock()
	if err, ok := r.FailOn[cmd]; ok {
		return &TransportError{Command: cmd, Op: "write", Addr: "recorder", Err: err}
	}
	return nil
}

// Commands returns a copy of all recorded commands.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Command, len(r.sent))
	copy(out, r.sent)
	return out
}

// Reset clears the recorded commands.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.sent = nil
	r.mu.Unlock()
}
