package media

import (
	"strings"
	"testing"
)

func TestCalculatePosition(t *testing.T) {
	tests := []struct {
		name     string
		position string
		bgW, bgH int
		ovW, ovH int
		wantX    int
		wantY    int
	}{
		{"center", PositionCenter, 1280, 720, 320, 240, 480, 240},
		{"top-left", PositionTopLeft, 1280, 720, 320, 240, 0, 0},
		{"top-right", PositionTopRight, 1280, 720, 320, 240, 960, 0},
		{"bottom-left", PositionBottomLeft, 1280, 720, 320, 240, 0, 480},
		{"bottom-right", PositionBottomRight, 1280, 720, 320, 240, 960, 480},
		{"unknown falls back to center", "middle", 1280, 720, 320, 240, 480, 240},
		{"center odd division truncates", PositionCenter, 1281, 721, 320, 240, 480, 240},
		{"oversized overlay clamps to zero", PositionBottomRight, 640, 480, 1280, 720, 0, 0},
		{"oversized overlay center clamps to zero", PositionCenter, 640, 480, 1280, 720, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := calculatePosition(tt.position, tt.bgW, tt.bgH, tt.ovW, tt.ovH)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("calculatePosition(%s) = (%d,%d), want (%d,%d)", tt.position, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestBuildFilterComplex(t *testing.T) {
	t.Run("no resize no audio", func(t *testing.T) {
		got := buildFilterComplex(480, 240, nil, false)
		want := "[0:v][1:v]overlay=480:240[v]"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("with resize", func(t *testing.T) {
		got := buildFilterComplex(0, 0, &OverlaySize{Width: 320, Height: 240}, false)
		want := "[1:v]scale=320:240[overlay_scaled];[0:v][overlay_scaled]overlay=0:0[v]"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("with background audio", func(t *testing.T) {
		got := buildFilterComplex(480, 240, nil, true)
		if !strings.Contains(got, "[0:a]aformat=") {
			t.Errorf("expected audio normalization chain, got %q", got)
		}
		if !strings.HasSuffix(got, "[a]") {
			t.Errorf("audio chain should label [a], got %q", got)
		}
	})

	t.Run("resize and audio combined", func(t *testing.T) {
		got := buildFilterComplex(100, 50, &OverlaySize{Width: 640, Height: 360}, true)
		parts := strings.Split(got, ";")
		if len(parts) != 3 {
			t.Fatalf("expected 3 filter stages, got %d: %q", len(parts), got)
		}
		if !strings.HasPrefix(parts[0], "[1:v]scale=640:360") {
			t.Errorf("first stage should scale overlay, got %q", parts[0])
		}
		if !strings.Contains(parts[1], "overlay=100:50") {
			t.Errorf("second stage should overlay, got %q", parts[1])
		}
	})
}
