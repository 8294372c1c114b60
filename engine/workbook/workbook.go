// Package workbook places thumbnails into spreadsheet cells with excelize.
package workbook

import (
	"fmt"
	"strings"

	"github.com/drummonds/pdfthumbs/engine/sizing"
	"github.com/xuri/excelize/v2"
)

const (
	// ThumbnailSheet holds the pictures
	ThumbnailSheet = "Thumbnails"
	// IndexSheet lists what was placed where
	IndexSheet = "Index"

	// Limits enforced by excelize (and Excel)
	maxColumnWidth = excelize.MaxColumnWidth
	maxRowHeight   = excelize.MaxRowHeight
)

// Order decides how sequential items walk the grid
type Order string

const (
	// RowMajor fills a row of Span cells before moving down
	RowMajor Order = "row-major"
	// ColumnMajor fills a column of Span cells before moving right
	ColumnMajor Order = "column-major"
)

// ParseOrder validates an order name
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case RowMajor, "row", "":
		return RowMajor, nil
	case ColumnMajor, "column", "col":
		return ColumnMajor, nil
	}
	return RowMajor, fmt.Errorf("unknown sheet order %q (must be row-major or column-major)", s)
}

// Placement configures the grid
type Placement struct {
	Order Order
	Span  int // items per row (RowMajor) or per column (ColumnMajor)
}

// Cell returns the 1-based column and row of the index-th item
func (p Placement) Cell(index int) (col, row int) {
	span := max(p.Span, 1)
	major, minor := index/span, index%span
	if p.Order == ColumnMajor {
		return major + 1, minor + 1
	}
	return minor + 1, major + 1
}

// Item is one picture to place
type Item struct {
	SourceName string
	EntryName  string
	Pages      int
	Thumbnail  sizing.Size
	Layout     sizing.CellLayout
	ImagePath  string // encoded picture on disk
}

// Writer appends pictures to a new workbook in call order
type Writer struct {
	file      *excelize.File
	placement Placement
	count     int
	colWidths map[int]float64
	rowHeight map[int]float64
}

// New creates a workbook with the thumbnail and index sheets
func New(placement Placement) (*Writer, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ThumbnailSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("unable to name thumbnail sheet: %w", err)
	}
	if _, err := f.NewSheet(IndexSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("unable to create index sheet: %w", err)
	}

	headers := []interface{}{"Cell", "Source", "Entry", "Pages", "Width px", "Height px", "Column width", "Row height pt", "X scale", "Y scale"}
	if err := f.SetSheetRow(IndexSheet, "A1", &headers); err != nil {
		f.Close()
		return nil, fmt.Errorf("unable to write index header: %w", err)
	}

	return &Writer{
		file:      f,
		placement: placement,
		colWidths: make(map[int]float64),
		rowHeight: make(map[int]float64),
	}, nil
}

// Add places the next item. The column and row grow to the largest layout
// placed in them so no picture overflows its cell.
func (w *Writer) Add(item Item) (string, error) {
	col, row := w.placement.Cell(w.count)
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	colName, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return "", err
	}

	layout := fitLimits(item.Layout)

	if layout.ColumnWidth > w.colWidths[col] {
		if err := w.file.SetColWidth(ThumbnailSheet, colName, colName, layout.ColumnWidth); err != nil {
			return "", fmt.Errorf("unable to set width of column %s: %w", colName, err)
		}
		w.colWidths[col] = layout.ColumnWidth
	}
	if layout.RowHeight > w.rowHeight[row] {
		if err := w.file.SetRowHeight(ThumbnailSheet, row, layout.RowHeight); err != nil {
			return "", fmt.Errorf("unable to set height of row %d: %w", row, err)
		}
		w.rowHeight[row] = layout.RowHeight
	}

	err = w.file.AddPicture(ThumbnailSheet, cell, item.ImagePath, &excelize.GraphicOptions{
		AltText:     item.SourceName,
		ScaleX:      layout.XScale,
		ScaleY:      layout.YScale,
		Positioning: "oneCell",
	})
	if err != nil {
		return "", fmt.Errorf("unable to add picture at %s: %w", cell, err)
	}

	w.count++
	indexRow := []interface{}{
		cell, item.SourceName, item.EntryName, item.Pages,
		item.Thumbnail.Width, item.Thumbnail.Height,
		layout.ColumnWidth, layout.RowHeight, layout.XScale, layout.YScale,
	}
	indexCell, _ := excelize.CoordinatesToCellName(1, w.count+1)
	if err := w.file.SetSheetRow(IndexSheet, indexCell, &indexRow); err != nil {
		return "", fmt.Errorf("unable to write index row: %w", err)
	}

	return cell, nil
}

// Len is the number of pictures placed
func (w *Writer) Len() int {
	return w.count
}

// Bytes serializes the workbook
func (w *Writer) Bytes() ([]byte, error) {
	buf, err := w.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("unable to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Close releases the workbook
func (w *Writer) Close() error {
	return w.file.Close()
}

// fitLimits shrinks a layout uniformly when its cell would exceed the
// spreadsheet's column width or row height limits
func fitLimits(layout sizing.CellLayout) sizing.CellLayout {
	factor := 1.0
	if layout.ColumnWidth > maxColumnWidth {
		factor = min(factor, maxColumnWidth/layout.ColumnWidth)
	}
	if layout.RowHeight > maxRowHeight {
		factor = min(factor, maxRowHeight/layout.RowHeight)
	}
	if factor == 1 {
		return layout
	}
	return sizing.CellLayout{
		ColumnWidth: layout.ColumnWidth * factor,
		RowHeight:   layout.RowHeight * factor,
		XScale:      layout.XScale * factor,
		YScale:      layout.YScale * factor,
	}
}
