package steering

import (
	"image"
	"math"
	"testing"

	"github.com/teslashibe/go-wastesort/pkg/command"
	"github.com/teslashibe/go-wastesort/pkg/detection"
)

var center = image.Pt(320, 240)

func det(label string, x1, y1, x2, y2 int) detection.Detection {
	return detection.Detection{Label: label, Box: image.Rect(x1, y1, x2, y2), Confidence: 0.9}
}

func TestSelect_Empty(t *testing.T) {
	if _, ok := Select(nil, center, DefaultDeadband); ok {
		t.Error("Select on no detections should report not found")
	}
}

func TestSelect_Nearest(t *testing.T) {
	dets := []detection.Detection{
		det("far", 0, 0, 20, 20),
		det("near", 300, 220, 340, 260),
		det("mid", 400, 200, 440, 240),
	}
	got, ok := Select(dets, center, DefaultDeadband)
	if !ok {
		t.Fatal("expected a target")
	}
	if got.Detection.Label != "near" {
		t.Errorf("got %q, want near", got.Detection.Label)
	}
	if got.Distance != 0 {
		t.Errorf("distance: got %v, want 0", got.Distance)
	}
	if got.Steering != Forward {
		t.Errorf("steering: got %v, want FORWARD", got.Steering)
	}
}

func TestSelect_MinimalDistance(t *testing.T) {
	dets := []detection.Detection{
		det("a", 10, 10, 50, 50),
		det("b", 500, 400, 600, 470),
		det("c", 200, 100, 260, 180),
		det("d", 330, 10, 350, 30),
	}
	got, ok := Select(dets, center, DefaultDeadband)
	if !ok {
		t.Fatal("expected a target")
	}
	for _, d := range dets {
		if dist := Distance(d.Center(), center); dist < got.Distance {
			t.Errorf("%s is closer (%v) than selected %s (%v)", d.Label, dist, got.Detection.Label, got.Distance)
		}
	}
}

func TestSelect_TieKeepsFirst(t *testing.T) {
	dets := []detection.Detection{
		det("left", 200, 220, 240, 260),  // center (220,240), distance 100
		det("right", 400, 220, 440, 260), // center (420,240), distance 100
	}
	got, _ := Select(dets, center, DefaultDeadband)
	if got.Detection.Label != "left" {
		t.Errorf("tie should keep first detection, got %q", got.Detection.Label)
	}
	if got.Steering != Left {
		t.Errorf("steering: got %v, want LEFT", got.Steering)
	}
}

func TestSelect_IntegerCenter(t *testing.T) {
	// Box center is (321/2, 241/2) = (160,120) with integer division.
	got, _ := Select([]detection.Detection{det("x", 0, 0, 321, 241)}, center, DefaultDeadband)
	if got.DeviationX != -160 {
		t.Errorf("DeviationX: got %d, want -160", got.DeviationX)
	}
	if want := math.Hypot(160, 120); got.Distance != want {
		t.Errorf("Distance: got %v, want %v", got.Distance, want)
	}
}

func TestSteer(t *testing.T) {
	tests := []struct {
		name string
		dx   int
		want Decision
	}{
		{"centered", 0, Forward},
		{"at right edge of deadband", 50, Forward},
		{"at left edge of deadband", -50, Forward},
		{"just right", 51, Right},
		{"just left", -51, Left},
		{"far right", 300, Right},
		{"far left", -300, Left},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Steer(tc.dx, DefaultDeadband); got != tc.want {
				t.Errorf("Steer(%d) = %v, want %v", tc.dx, got, tc.want)
			}
		})
	}
}

func TestDecisionCommand(t *testing.T) {
	tests := []struct {
		d    Decision
		want command.Command
	}{
		{Forward, command.Forward},
		{Left, command.Left},
		{Right, command.Right},
		{Stop, command.Stop},
	}
	for _, tc := range tests {
		if got := tc.d.Command(); got != tc.want {
			t.Errorf("%d.Command() = %q, want %q", tc.d, got, tc.want)
		}
		if tc.d.String() != string(tc.want) {
			t.Errorf("%d.String() = %q", tc.d, tc.d.String())
		}
	}
}
