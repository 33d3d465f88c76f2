package camera

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-wastesort/internal/log"
	"github.com/teslashibe/go-wastesort/pkg/vision"
)

// Capture reads frames through gocv.VideoCapture.
type Capture struct {
	source string
	vc     *gocv.VideoCapture
}

// Open opens source (URL, file or device index).
func Open(source string) (*Capture, error) {
	vc, err := gocv.OpenVideoCapture(source)
	if err != nil {
		return nil, fmt.Errorf("open capture %s: %w", source, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("open capture %s: not opened", source)
	}
	log.Component("camera").Info("capture opened", "source", source)
	return &Capture{source: source, vc: vc}, nil
}

// Opener returns an Opener for source.
func Opener(source string) vision.Opener {
	return func() (vision.Source, error) {
		return Open(source)
	}
}

// Read grabs the next frame. A failed grab or empty Mat is reported as
// vision.ErrStreamEnded.
func (c *Capture) Read() (vision.Frame, error) {
	m := gocv.NewMat()
	if ok := c.vc.Read(&m); !ok || m.Empty() {
		m.Close()
		return nil, fmt.Errorf("%w: %s", vision.ErrStreamEnded, c.source)
	}
	return NewMatFrame(m), nil
}

// Close releases the capture device.
func (c *Capture) Close() error {
	return c.vc.Close()
}
