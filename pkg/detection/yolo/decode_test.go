package yolo

import (
	"image"
	"testing"
)

// keepAll skips suppression so decode can be tested in isolation.
func keepAll(boxes []image.Rectangle, _ []float32, _, _ float32) []int {
	idx := make([]int, len(boxes))
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// tensor builds a [attrs x anchors] row-major buffer from per-anchor columns.
func tensor(attrs int, columns ...[]float32) []float32 {
	anchors := len(columns)
	data := make([]float32, attrs*anchors)
	for i, col := range columns {
		for a, v := range col {
			data[a*anchors+i] = v
		}
	}
	return data
}

func TestDecode(t *testing.T) {
	labels := []string{"plastic bottle", "rock"}
	data := tensor(6,
		// cx, cy, w, h, score(plastic bottle), score(rock)
		[]float32{320, 320, 64, 64, 0.9, 0.1},
		[]float32{100, 100, 20, 20, 0.2, 0.3}, // below threshold
		[]float32{620, 40, 80, 80, 0.05, 0.7}, // clipped to frame
	)

	p := decodeParams{
		labels:     labels,
		confThresh: 0.5,
		nmsThresh:  0.45,
		scaleX:     1,
		scaleY:     0.75, // 640x480 frame from a 640x640 input
		bounds:     image.Rect(0, 0, 640, 480),
		nms:        keepAll,
	}

	dets := decode(data, 6, 3, p)
	if len(dets) != 2 {
		t.Fatalf("got %d detections, want 2: %v", len(dets), dets)
	}

	if dets[0].Label != "plastic bottle" {
		t.Errorf("first label: got %q", dets[0].Label)
	}
	if want := image.Rect(288, 216, 352, 264); dets[0].Box != want {
		t.Errorf("first box: got %v, want %v", dets[0].Box, want)
	}

	if dets[1].Label != "rock" {
		t.Errorf("second label: got %q", dets[1].Label)
	}
	if dets[1].Box.Max.X != 640 || dets[1].Box.Min.Y != 0 {
		t.Errorf("second box should be clipped to the frame, got %v", dets[1].Box)
	}
	if dets[1].Confidence < 0.69 || dets[1].Confidence > 0.71 {
		t.Errorf("second confidence: got %v", dets[1].Confidence)
	}
}

func TestDecode_NothingAboveThreshold(t *testing.T) {
	data := tensor(5, []float32{10, 10, 5, 5, 0.1})
	p := decodeParams{confThresh: 0.5, scaleX: 1, scaleY: 1, bounds: image.Rect(0, 0, 640, 480), nms: keepAll}
	if dets := decode(data, 5, 1, p); dets != nil {
		t.Errorf("expected no detections, got %v", dets)
	}
}
