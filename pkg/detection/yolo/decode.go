package yolo

import (
	"image"

	"github.com/teslashibe/go-wastesort/pkg/detection"
)

type decodeParams struct {
	labels     []string
	confThresh float32
	nmsThresh  float32
	scaleX     float32 // frame width / model input width
	scaleY     float32
	bounds     image.Rectangle

	// nms returns the indices of boxes to keep.
	nms func(boxes []image.Rectangle, scores []float32, scoreThresh, nmsThresh float32) []int
}

// decode parses a YOLOv8 output tensor laid out as [1, attrs, anchors] with
// attrs = 4 box values (cx, cy, w, h) followed by one score per class.
func decode(data []float32, attrs, anchors int, p decodeParams) []detection.Detection {
	var boxes []image.Rectangle
	var scores []float32
	var classIDs []int

	for i := 0; i < anchors; i++ {
		maxScore := float32(0)
		maxClassID := 0
		for c := 4; c < attrs; c++ {
			score := data[c*anchors+i]
			if score > maxScore {
				maxScore = score
				maxClassID = c - 4
			}
		}
		if maxScore < p.confThresh {
			continue
		}

		cx := data[0*anchors+i]
		cy := data[1*anchors+i]
		w := data[2*anchors+i]
		h := data[3*anchors+i]

		x1 := int((cx - w/2) * p.scaleX)
		y1 := int((cy - h/2) * p.scaleY)
		x2 := int((cx + w/2) * p.scaleX)
		y2 := int((cy + h/2) * p.scaleY)

		boxes = append(boxes, image.Rect(x1, y1, x2, y2).Intersect(p.bounds))
		scores = append(scores, maxScore)
		classIDs = append(classIDs, maxClassID)
	}

	if len(boxes) == 0 {
		return nil
	}

	keep := p.nms(boxes, scores, p.confThresh, p.nmsThresh)
	dets := make([]detection.Detection, 0, len(keep))
	for _, idx := range keep {
		dets = append(dets, detection.Detection{
			Label:      detection.LabelFor(p.labels, classIDs[idx]),
			Box:        boxes[idx],
			Confidence: float64(scores[idx]),
		})
	}
	return dets
}
