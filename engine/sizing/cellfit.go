package sizing

import "fmt"

const (
	// DefaultPxPerColumnUnit is the pixel width of one spreadsheet column-width unit
	// (the maximum digit width of the default 11pt font).
	DefaultPxPerColumnUnit = 7.0
	// DefaultPtPerPixel converts pixels to row-height points at 96 DPI
	DefaultPtPerPixel = 0.75
)

// CellLayout is what a spreadsheet writer needs to make one picture fill one cell
type CellLayout struct {
	ColumnWidth float64 `json:"columnWidth"` // column-width units
	RowHeight   float64 `json:"rowHeight"`   // points
	XScale      float64 `json:"xScale"`
	YScale      float64 `json:"yScale"`
}

// ComputeCellLayout sizes a cell for a picture embedded at exactly
// thumbWidthPx x thumbHeightPx, so both scale factors are 1.
func ComputeCellLayout(thumbWidthPx, thumbHeightPx int, pxPerColumnUnit, ptPerPixel float64) (CellLayout, error) {
	return ComputeScaledCellLayout(thumbWidthPx, thumbHeightPx, thumbWidthPx, thumbHeightPx, pxPerColumnUnit, ptPerPixel)
}

// ComputeScaledCellLayout sizes a cell for the thumbnail size and derives the
// scale factors that shrink a picture embedded at embeddedWidthPx x
// embeddedHeightPx down to that size.
func ComputeScaledCellLayout(thumbWidthPx, thumbHeightPx, embeddedWidthPx, embeddedHeightPx int, pxPerColumnUnit, ptPerPixel float64) (CellLayout, error) {
	if thumbWidthPx <= 0 || thumbHeightPx <= 0 || embeddedWidthPx <= 0 || embeddedHeightPx <= 0 {
		return CellLayout{}, fmt.Errorf("%w: thumbnail %dx%d, embedded %dx%d",
			ErrInvalidInput, thumbWidthPx, thumbHeightPx, embeddedWidthPx, embeddedHeightPx)
	}
	if !(pxPerColumnUnit > 0) || !(ptPerPixel > 0) {
		return CellLayout{}, fmt.Errorf("%w: px/column unit %v, pt/px %v", ErrInvalidInput, pxPerColumnUnit, ptPerPixel)
	}

	return CellLayout{
		ColumnWidth: float64(thumbWidthPx) / pxPerColumnUnit,
		RowHeight:   float64(thumbHeightPx) * ptPerPixel,
		XScale:      float64(thumbWidthPx) / float64(embeddedWidthPx),
		YScale:      float64(thumbHeightPx) / float64(embeddedHeightPx),
	}, nil
}
