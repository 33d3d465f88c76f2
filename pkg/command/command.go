// Package command delivers movement and belt commands to the actuator
// controller.
//
// Every command is fire-and-forget: one connection per call, one
// newline-terminated token, no acknowledgment and no retry. Callers treat a
// failed send as best-effort and keep operating.
package command

import "context"

// Command is a plain text token understood by the actuator firmware.
type Command string

// Movement vocabulary. Belt tokens are produced by the waste policy.
const (
	Forward Command = "FORWARD"
	Left    Command = "LEFT"
	Right   Command = "RIGHT"
	Stop    Command = "STOP"
)

// String returns the token.
func (c Command) String() string { return string(c) }

// Line returns the token as it travels on the wire.
func (c Command) Line() string { return string(c) + "\n" }

// Channel sends a single command to the actuator.
//
// Send blocks the caller for the full exchange, including any settle delay,
// and is not aborted by ctx cancellation once started.
type Channel interface {
	Send(ctx context.Context, cmd Command) error
}

// ChannelFunc adapts a function to Channel.
type ChannelFunc func(ctx context.Context, cmd Command) error

// Send calls f.
func (f ChannelFunc) Send(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// ObserverFunc is called after every send with its result.
type ObserverFunc func(cmd Command, err error)

// Observe wraps ch so fn sees every command and its outcome.
func Observe(ch Channel, fn ObserverFunc) Channel {
	if fn == nil {
		return ch
	}
	return ChannelFunc(func(ctx context.Context, cmd Command) error {
		err := ch.Send(ctx, cmd)
		fn(cmd, err)
		return err
	})
}
