// Package camera captures frames with OpenCV (gocv) and selects the video
// source backend for the control loop.
package camera

import (
	"fmt"
	"image"
	"time"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-wastesort/pkg/vision"
)

// Backend names.
const (
	BackendGoCV  = "gocv"
	BackendMJPEG = "mjpeg"
)

// DefaultStreamURL is the ESP32-CAM MJPEG endpoint.
const DefaultStreamURL = "http://192.168.43.165:81/stream"

// Backends returns the supported backend names.
func Backends() []string {
	return []string{BackendGoCV, BackendMJPEG}
}

// NewOpener returns an Opener for the named backend. source is a stream URL,
// file path or, for gocv, a device index such as "0".
func NewOpener(backend, source string, connectTimeout time.Duration) (vision.Opener, error) {
	switch backend {
	case BackendGoCV, "":
		return Opener(source), nil
	case BackendMJPEG:
		return vision.MJPEGOpener(source, connectTimeout), nil
	default:
		return nil, fmt.Errorf("unknown camera backend %q (want one of %v)", backend, Backends())
	}
}

// MatFrame is a Frame backed by an OpenCV Mat.
type MatFrame struct {
	mat gocv.Mat
}

// NewMatFrame takes ownership of m.
func NewMatFrame(m gocv.Mat) *MatFrame {
	return &MatFrame{mat: m}
}

// Mat returns the underlying Mat. It stays owned by the frame.
func (f *MatFrame) Mat() gocv.Mat {
	return f.mat
}

// Size returns the Mat dimensions.
func (f *MatFrame) Size() image.Point {
	return image.Pt(f.mat.Cols(), f.mat.Rows())
}

// Resize returns a new frame scaled to w x h.
func (f *MatFrame) Resize(w, h int) (vision.Frame, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("resize to %dx%d: invalid size", w, h)
	}
	dst := gocv.NewMat()
	gocv.Resize(f.mat, &dst, image.Pt(w, h), 0, 0, gocv.InterpolationLinear)
	if dst.Empty() {
		dst.Close()
		return nil, fmt.Errorf("resize to %dx%d: empty result", w, h)
	}
	return &MatFrame{mat: dst}, nil
}

// Close releases the Mat.
func (f *MatFrame) Close() error {
	return f.mat.Close()
}
