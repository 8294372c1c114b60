package sizing

import (
	"errors"
	"math"
	"testing"
)

func TestComputeSize_LetterPageAt200(t *testing.T) {
	size, err := ComputeSize(612, 792, 200, AxisHeight)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if size.Height != 200 {
		t.Errorf("Expected height 200, got %d", size.Height)
	}
	if size.Width != 154 {
		t.Errorf("Expected width 154, got %d", size.Width)
	}
}

func TestComputeSize_Table(t *testing.T) {
	tests := []struct {
		name           string
		width, height  int
		target         int
		axis           Axis
		expectedWidth  int
		expectedHeight int
	}{
		{"A4 portrait at 150dpi", 1241, 1754, 200, AxisHeight, 141, 200},
		{"landscape", 1754, 1241, 200, AxisHeight, 282, 200},
		{"square", 500, 500, 200, AxisHeight, 200, 200},
		{"upscale", 50, 100, 200, AxisHeight, 100, 200},
		{"width axis", 612, 792, 300, AxisWidth, 300, 388},
		{"extreme strip clamps to one pixel", 1, 5000, 200, AxisHeight, 1, 200},
		{"extreme strip on width axis", 5000, 1, 200, AxisWidth, 200, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, err := ComputeSize(tt.width, tt.height, tt.target, tt.axis)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if size.Width != tt.expectedWidth || size.Height != tt.expectedHeight {
				t.Errorf("ComputeSize(%d, %d, %d, %s) = %s, expected %dx%d",
					tt.width, tt.height, tt.target, tt.axis, size, tt.expectedWidth, tt.expectedHeight)
			}
		})
	}
}

func TestComputeSize_InvalidInput(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		target        int
	}{
		{"zero width", 0, 792, 200},
		{"zero height", 612, 0, 200},
		{"zero target", 612, 792, 0},
		{"negative width", -1, 792, 200},
		{"negative target", 612, 792, -200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeSize(tt.width, tt.height, tt.target, AxisHeight)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}

	if _, err := ComputeSize(612, 792, 200, Axis(7)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for unknown axis, got %v", err)
	}
}

// TestComputeSize_Properties sweeps a grid of sources and targets and checks
// the pinned axis, the one-pixel aspect tolerance and idempotence.
func TestComputeSize_Properties(t *testing.T) {
	dims := []int{1, 2, 3, 7, 99, 100, 612, 792, 1241, 1754, 4000}
	targets := []int{1, 50, 154, 200, 333, 1024}

	for _, axis := range []Axis{AxisHeight, AxisWidth} {
		for _, w := range dims {
			for _, h := range dims {
				for _, target := range targets {
					size, err := ComputeSize(w, h, target, axis)
					if err != nil {
						t.Fatalf("ComputeSize(%d, %d, %d, %s) failed: %v", w, h, target, axis, err)
					}

					pinned, free := size.Height, size.Width
					exact := float64(target) * float64(w) / float64(h)
					if axis == AxisWidth {
						pinned, free = size.Width, size.Height
						exact = float64(target) * float64(h) / float64(w)
					}
					if pinned != target {
						t.Errorf("ComputeSize(%d, %d, %d, %s): pinned axis %d, expected %d", w, h, target, axis, pinned, target)
					}
					if exact >= 1 && math.Abs(float64(free)-exact) >= 1 {
						t.Errorf("ComputeSize(%d, %d, %d, %s): free axis %d too far from %.3f", w, h, target, axis, free, exact)
					}

					again, err := ComputeSize(size.Width, size.Height, target, axis)
					if err != nil {
						t.Fatalf("Second ComputeSize failed: %v", err)
					}
					if again != size {
						t.Errorf("ComputeSize not idempotent for %dx%d target %d %s: %s then %s", w, h, target, axis, size, again)
					}
				}
			}
		}
	}
}

func TestParseAxis(t *testing.T) {
	tests := []struct {
		input    string
		expected Axis
		wantErr  bool
	}{
		{"height", AxisHeight, false},
		{"Height", AxisHeight, false},
		{" width ", AxisWidth, false},
		{"w", AxisWidth, false},
		{"diagonal", AxisHeight, true},
		{"", AxisHeight, true},
	}

	for _, tt := range tests {
		axis, err := ParseAxis(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAxis(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && axis != tt.expected {
			t.Errorf("ParseAxis(%q) = %s, expected %s", tt.input, axis, tt.expected)
		}
	}
}
