package vision

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ImageFrame is a Frame backed by a Go image.
type ImageFrame struct {
	Image image.Image
}

// NewImageFrame wraps img.
func NewImageFrame(img image.Image) *ImageFrame {
	return &ImageFrame{Image: img}
}

// Size returns the image bounds size.
func (f *ImageFrame) Size() image.Point {
	return f.Image.Bounds().Size()
}

// Resize scales the image to exactly w x h with linear filtering.
func (f *ImageFrame) Resize(w, h int) (Frame, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("resize to %dx%d: invalid size", w, h)
	}
	if f.Size() == image.Pt(w, h) {
		return &ImageFrame{Image: f.Image}, nil
	}
	return &ImageFrame{Image: imaging.Resize(f.Image, w, h, imaging.Linear)}, nil
}

// Close is a no-op.
func (f *ImageFrame) Close() error { return nil }
