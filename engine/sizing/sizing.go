// Package sizing holds the thumbnail and spreadsheet-cell arithmetic.
// Everything here is pure: no I/O and no shared state.
package sizing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput is returned when a dimension or unit constant is not strictly positive
var ErrInvalidInput = errors.New("invalid sizing input")

// Axis selects which output dimension is pinned to the target
type Axis int

const (
	// AxisHeight pins the output height, width follows the aspect ratio
	AxisHeight Axis = iota
	// AxisWidth pins the output width, height follows the aspect ratio
	AxisWidth
)

func (a Axis) String() string {
	switch a {
	case AxisHeight:
		return "height"
	case AxisWidth:
		return "width"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ParseAxis converts "height" or "width" (any case) into an Axis
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "height", "h":
		return AxisHeight, nil
	case "width", "w":
		return AxisWidth, nil
	}
	return AxisHeight, fmt.Errorf("%w: unknown axis %q (must be height or width)", ErrInvalidInput, s)
}

// Size is a pixel size
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// ComputeSize scales a source size so that the pinned axis equals target and
// the other axis keeps the source aspect ratio. The free axis is truncated
// toward zero using integer arithmetic, so feeding a result back in with the
// same target and axis returns it unchanged. A free axis that truncates to
// zero is clamped to one pixel.
func ComputeSize(sourceWidth, sourceHeight, target int, axis Axis) (Size, error) {
	if sourceWidth <= 0 || sourceHeight <= 0 || target <= 0 {
		return Size{}, fmt.Errorf("%w: source %dx%d, target %d", ErrInvalidInput, sourceWidth, sourceHeight, target)
	}

	switch axis {
	case AxisHeight:
		width := int(int64(target) * int64(sourceWidth) / int64(sourceHeight))
		return Size{Width: max(width, 1), Height: target}, nil
	case AxisWidth:
		height := int(int64(target) * int64(sourceHeight) / int64(sourceWidth))
		return Size{Width: target, Height: max(height, 1)}, nil
	default:
		return Size{}, fmt.Errorf("%w: unknown axis %d", ErrInvalidInput, int(axis))
	}
}
