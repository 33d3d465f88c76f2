package command

import (
	"errors"
	"fmt"
	"net"
)

// ErrNoDevice is returned when a serial channel has no device configured.
var ErrNoDevice = errors.New("command: no serial device configured")

// TransportError reports a failed command delivery.
type TransportError struct {
	// Command is the token that could not be delivered.
	Command Command

	// Op is the failing step: "dial", "open", "write".
	Op string

	// Addr is the actuator address or serial device.
	Addr string

	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("command %s: %s %s: %v", e.Command, e.Op, e.Addr, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a timeout.
func (e *TransportError) Timeout() bool {
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}
