// Package yolo runs a YOLOv8 ONNX waste model through OpenCV's DNN module.
package yolo

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-wastesort/internal/log"
	"github.com/teslashibe/go-wastesort/pkg/camera"
	"github.com/teslashibe/go-wastesort/pkg/detection"
	"github.com/teslashibe/go-wastesort/pkg/vision"
)

// Detector uses a YOLOv8 model for waste object detection.
type Detector struct {
	net       gocv.Net
	config    detection.Config
	labels    []string
	mu        sync.Mutex
	inputSize image.Point
}

var _ detection.Detector = (*Detector)(nil)

// New loads the model and labels named in cfg.
func New(cfg detection.Config) (*Detector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	labels, err := detection.LoadLabels(cfg.LabelsPath)
	if err != nil {
		return nil, err
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load YOLO model from %s", cfg.ModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	log.Component("yolo").Info("model loaded", "model", cfg.ModelPath, "classes", len(labels))

	return &Detector{
		net:       net,
		config:    cfg,
		labels:    labels,
		inputSize: image.Pt(cfg.InputSize, cfg.InputSize),
	}, nil
}

// Detect runs the model on frame. Mat-backed frames are used directly;
// image-backed frames are converted first.
func (d *Detector) Detect(frame vision.Frame) ([]detection.Detection, error) {
	var img gocv.Mat
	switch f := frame.(type) {
	case *camera.MatFrame:
		img = f.Mat()
	case *vision.ImageFrame:
		m, err := gocv.ImageToMatRGB(f.Image)
		if err != nil {
			return nil, fmt.Errorf("convert image: %w", err)
		}
		defer m.Close()
		img = m
	default:
		return nil, fmt.Errorf("unsupported frame type %T", frame)
	}

	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	blob := gocv.BlobFromImage(img, 1.0/255.0, d.inputSize, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	dims := output.Size()
	if len(dims) != 3 {
		return nil, fmt.Errorf("unexpected output shape %v", dims)
	}
	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}

	return decode(data, dims[1], dims[2], d.params(img.Cols(), img.Rows())), nil
}

func (d *Detector) params(frameW, frameH int) decodeParams {
	return decodeParams{
		labels:     d.labels,
		confThresh: float32(d.config.ConfidenceThresh),
		nmsThresh:  float32(d.config.NMSThresh),
		scaleX:     float32(frameW) / float32(d.inputSize.X),
		scaleY:     float32(frameH) / float32(d.inputSize.Y),
		bounds:     image.Rect(0, 0, frameW, frameH),
		nms:        gocv.NMSBoxes,
	}
}

// Close releases the network.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
