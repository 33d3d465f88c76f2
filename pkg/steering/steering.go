// Package steering picks the detection nearest the frame center and derives
// a directional decision from its horizontal offset.
package steering

import (
	"image"
	"math"

	"github.com/teslashibe/go-wastesort/pkg/command"
	"github.com/teslashibe/go-wastesort/pkg/detection"
)

// DefaultDeadband is the horizontal offset, in pixels, inside which the
// robot keeps driving forward.
const DefaultDeadband = 50

// Decision is a directional action.
type Decision int

const (
	Forward Decision = iota
	Left
	Right
	Stop
)

// String returns the wire token for d.
func (d Decision) String() string {
	return string(d.Command())
}

// MarshalText encodes d as its wire token.
func (d Decision) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Command maps d to its actuator command.
func (d Decision) Command() command.Command {
	switch d {
	case Left:
		return command.Left
	case Right:
		return command.Right
	case Stop:
		return command.Stop
	default:
		return command.Forward
	}
}

// Target is the detection chosen for this frame.
type Target struct {
	Detection  detection.Detection `json:"detection"`
	Distance   float64             `json:"distance"`    // Euclidean, box center to frame center
	DeviationX int                 `json:"deviation_x"` // box center X minus frame center X
	Steering   Decision            `json:"steering"`
}

// Select returns the detection whose box center is closest to center.
// Ties keep the earliest detection. ok is false when dets is empty.
func Select(dets []detection.Detection, center image.Point, deadband int) (t Target, ok bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, d := range dets {
		dist := Distance(d.Center(), center)
		if dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	if best < 0 {
		return Target{}, false
	}

	dx := dets[best].Center().X - center.X
	return Target{
		Detection:  dets[best],
		Distance:   bestDist,
		DeviationX: dx,
		Steering:   Steer(dx, deadband),
	}, true
}

// Steer turns toward the object when its horizontal deviation exceeds
// deadband.
func Steer(dx, deadband int) Decision {
	if dx > deadband {
		return Right
	}
	if dx < -deadband {
		return Left
	}
	return Forward
}

// Distance is the Euclidean distance between a and b.
func Distance(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}
