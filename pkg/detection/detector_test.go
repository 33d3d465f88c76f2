package detection

import (
	"errors"
	"image"
	"strings"
	"testing"
)

func TestDetection_Center(t *testing.T) {
	tests := []struct {
		name string
		box  image.Rectangle
		want image.Point
	}{
		{"centered box", image.Rect(300, 220, 340, 260), image.Pt(320, 240)},
		{"odd width truncates", image.Rect(0, 0, 101, 51), image.Pt(50, 25)},
		{"top left corner", image.Rect(0, 0, 20, 20), image.Pt(10, 10)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := Detection{Label: "tin", Box: tc.box}
			if got := d.Center(); got != tc.want {
				t.Errorf("Center: got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ModelPath == "" {
		t.Error("DefaultConfig: ModelPath should not be empty")
	}
	if cfg.ConfidenceThresh <= 0 || cfg.ConfidenceThresh > 1 {
		t.Errorf("DefaultConfig: ConfidenceThresh should be 0-1, got %f", cfg.ConfidenceThresh)
	}
	if cfg.InputSize <= 0 {
		t.Errorf("DefaultConfig: InputSize should be positive, got %d", cfg.InputSize)
	}
}

func TestReadLabels(t *testing.T) {
	in := "# waste model v3\nplastic bottle\n\n  glass bottle  \ncardboard\n"
	labels, err := ReadLabels(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadLabels: %v", err)
	}
	want := []string{"plastic bottle", "glass bottle", "cardboard"}
	if len(labels) != len(want) {
		t.Fatalf("got %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("[%d]: got %q, want %q", i, labels[i], want[i])
		}
	}
}

func TestReadLabels_Empty(t *testing.T) {
	if _, err := ReadLabels(strings.NewReader("# nothing\n\n")); !errors.Is(err, ErrNoLabels) {
		t.Errorf("got %v, want ErrNoLabels", err)
	}
}

func TestLabelFor(t *testing.T) {
	labels := []string{"paper", "tin"}
	if LabelFor(labels, 1) != "tin" {
		t.Error("LabelFor(1) should be tin")
	}
	if LabelFor(labels, 7) != "class_7" {
		t.Errorf("LabelFor(7): got %q", LabelFor(labels, 7))
	}
}

func TestMock_Script(t *testing.T) {
	boom := errors.New("inference failed")
	m := NewMock(
		MockResult{Detections: []Detection{{Label: "paper"}}},
		MockResult{Err: boom},
	)

	dets, err := m.Detect(nil)
	if err != nil || len(dets) != 1 || dets[0].Label != "paper" {
		t.Errorf("first call: got %v, %v", dets, err)
	}
	if _, err := m.Detect(nil); !errors.Is(err, boom) {
		t.Errorf("second call: got %v, want %v", err, boom)
	}
	if dets, err := m.Detect(nil); err != nil || dets != nil {
		t.Errorf("exhausted script: got %v, %v", dets, err)
	}
	if m.Calls() != 3 {
		t.Errorf("Calls: got %d, want 3", m.Calls())
	}
}
