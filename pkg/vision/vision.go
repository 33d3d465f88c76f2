// Package vision defines the frame and video source abstractions consumed by
// the control loop, plus a pure-Go MJPEG source for cameras that serve
// multipart JPEG over HTTP (ESP32-CAM).
package vision

import (
	"errors"
	"image"
)

// ErrStreamEnded is returned by Source.Read when the stream is closed or
// dropped. It is distinct from any valid frame so the loop can reconnect.
var ErrStreamEnded = errors.New("vision: stream ended")

// Frame is one captured image. Frames own native resources in some
// backends and must be closed.
type Frame interface {
	// Size returns the frame dimensions in pixels.
	Size() image.Point

	// Resize returns a new frame scaled to w x h. The receiver is unchanged.
	Resize(w, h int) (Frame, error)

	Close() error
}

// Source is a pull-based stream of frames.
type Source interface {
	// Read blocks until the next frame is available.
	Read() (Frame, error)

	Close() error
}

// Opener acquires a fresh Source. It is called at startup and after every
// stream failure.
type Opener func() (Source, error)
