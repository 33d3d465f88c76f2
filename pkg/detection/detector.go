// Package detection defines the object detection contract used by the
// control loop. Model backends live in subpackages.
package detection

import (
	"fmt"
	"image"

	"github.com/teslashibe/go-wastesort/pkg/vision"
)

// Detection is one labeled bounding box in processed-frame pixels.
type Detection struct {
	Label      string          `json:"label"`
	Box        image.Rectangle `json:"box"` // Min = (x1,y1), Max = (x2,y2)
	Confidence float64         `json:"confidence"`
}

// Center returns the integer midpoint of the box.
func (d Detection) Center() image.Point {
	return image.Pt((d.Box.Min.X+d.Box.Max.X)/2, (d.Box.Min.Y+d.Box.Max.Y)/2)
}

// String formats the detection for logs.
func (d Detection) String() string {
	return fmt.Sprintf("%s(%.2f)@%v", d.Label, d.Confidence, d.Box)
}

// Detector finds objects in a frame.
type Detector interface {
	// Detect returns zero or more detections. The frame is borrowed and
	// must not be retained.
	Detect(frame vision.Frame) ([]Detection, error)

	// Close releases model resources.
	Close() error
}

// Config holds detector configuration.
type Config struct {
	ModelPath        string  // Path to ONNX model
	LabelsPath       string  // One class name per line, in model output order
	ConfidenceThresh float64 // Minimum confidence (default 0.5)
	NMSThresh        float64 // Non-maximum suppression IoU threshold
	InputSize        int     // Square model input size
}

// DefaultConfig returns production defaults for the waste YOLO model.
func DefaultConfig() Config {
	return Config{
		ModelPath:        "weights/best_model.onnx",
		LabelsPath:       "weights/labels.txt",
		ConfidenceThresh: 0.5,
		NMSThresh:        0.45,
		InputSize:        640,
	}
}
