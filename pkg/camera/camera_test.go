package camera

import (
	"image"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func TestMatFrame_Resize(t *testing.T) {
	m := gocv.NewMatWithSize(720, 1280, gocv.MatTypeCV8UC3)
	f := NewMatFrame(m)
	defer f.Close()

	if f.Size() != image.Pt(1280, 720) {
		t.Fatalf("Size: got %v", f.Size())
	}

	out, err := f.Resize(640, 480)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	defer out.Close()

	if out.Size() != image.Pt(640, 480) {
		t.Errorf("resized Size: got %v, want 640x480", out.Size())
	}
	if f.Size() != image.Pt(1280, 720) {
		t.Error("source frame must not change")
	}
}

func TestMatFrame_ResizeInvalid(t *testing.T) {
	f := NewMatFrame(gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3))
	defer f.Close()
	if _, err := f.Resize(-1, 10); err == nil {
		t.Error("expected error for negative width")
	}
}

func TestNewOpener(t *testing.T) {
	tests := []struct {
		backend string
		wantErr bool
	}{
		{BackendGoCV, false},
		{"", false},
		{BackendMJPEG, false},
		{"webrtc", true},
	}

	for _, tc := range tests {
		t.Run(tc.backend, func(t *testing.T) {
			open, err := NewOpener(tc.backend, DefaultStreamURL, time.Second)
			if tc.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil || open == nil {
				t.Errorf("NewOpener: %v", err)
			}
		})
	}
}
