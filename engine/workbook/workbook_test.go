package workbook

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/drummonds/pdfthumbs/engine/sizing"
	"github.com/xuri/excelize/v2"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create picture: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode picture: %v", err)
	}
	return path
}

func TestPlacement_Cell(t *testing.T) {
	tests := []struct {
		placement Placement
		index     int
		col, row  int
	}{
		{Placement{Order: RowMajor, Span: 1}, 0, 1, 1},
		{Placement{Order: RowMajor, Span: 1}, 3, 1, 4},
		{Placement{Order: RowMajor, Span: 3}, 4, 2, 2},
		{Placement{Order: ColumnMajor, Span: 3}, 4, 2, 2},
		{Placement{Order: ColumnMajor, Span: 2}, 1, 1, 2},
		{Placement{Order: ColumnMajor, Span: 2}, 2, 2, 1},
		{Placement{Order: RowMajor, Span: 0}, 2, 1, 3},
	}

	for _, tt := range tests {
		col, row := tt.placement.Cell(tt.index)
		if col != tt.col || row != tt.row {
			t.Errorf("%+v.Cell(%d) = (%d, %d), expected (%d, %d)", tt.placement, tt.index, col, row, tt.col, tt.row)
		}
	}
}

func TestParseOrder(t *testing.T) {
	if o, err := ParseOrder("column-major"); err != nil || o != ColumnMajor {
		t.Errorf("ParseOrder(column-major) = %v, %v", o, err)
	}
	if o, err := ParseOrder(""); err != nil || o != RowMajor {
		t.Errorf("ParseOrder(\"\") = %v, %v", o, err)
	}
	if _, err := ParseOrder("spiral"); err == nil {
		t.Error("Expected error for unknown order")
	}
}

func TestWriter_PlacesPicturesAndSizesCells(t *testing.T) {
	tempDir := t.TempDir()

	w, err := New(Placement{Order: RowMajor, Span: 2})
	if err != nil {
		t.Fatalf("Failed to create workbook: %v", err)
	}
	defer w.Close()

	sizes := []sizing.Size{{Width: 154, Height: 200}, {Width: 282, Height: 200}, {Width: 141, Height: 200}}
	var cells []string
	for i, size := range sizes {
		layout, err := sizing.ComputeCellLayout(size.Width, size.Height, sizing.DefaultPxPerColumnUnit, sizing.DefaultPtPerPixel)
		if err != nil {
			t.Fatalf("ComputeCellLayout failed: %v", err)
		}
		path := writePNG(t, tempDir, filepath.Base(t.Name())+string(rune('a'+i))+".png", size.Width, size.Height)
		cell, err := w.Add(Item{
			SourceName: "doc.pdf",
			EntryName:  "doc.png",
			Pages:      1,
			Thumbnail:  size,
			Layout:     layout,
			ImagePath:  path,
		})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		cells = append(cells, cell)
	}

	expectedCells := []string{"A1", "B1", "A2"}
	for i, cell := range cells {
		if cell != expectedCells[i] {
			t.Errorf("Item %d placed at %s, expected %s", i, cell, expectedCells[i])
		}
	}
	if w.Len() != 3 {
		t.Errorf("Expected 3 pictures, got %d", w.Len())
	}

	data, err := w.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to reopen workbook: %v", err)
	}
	defer f.Close()

	// Column A holds 154px and 141px pictures, so it is sized for 154px
	widthA, err := f.GetColWidth(ThumbnailSheet, "A")
	if err != nil {
		t.Fatalf("GetColWidth failed: %v", err)
	}
	if math.Abs(widthA-22) > 0.01 {
		t.Errorf("Expected column A width 22, got %v", widthA)
	}
	widthB, _ := f.GetColWidth(ThumbnailSheet, "B")
	if math.Abs(widthB-282.0/7.0) > 0.01 {
		t.Errorf("Expected column B width %v, got %v", 282.0/7.0, widthB)
	}
	height, err := f.GetRowHeight(ThumbnailSheet, 2)
	if err != nil {
		t.Fatalf("GetRowHeight failed: %v", err)
	}
	if math.Abs(height-150) > 0.01 {
		t.Errorf("Expected row 2 height 150, got %v", height)
	}

	for _, cell := range expectedCells {
		pics, err := f.GetPictures(ThumbnailSheet, cell)
		if err != nil {
			t.Fatalf("GetPictures(%s) failed: %v", cell, err)
		}
		if len(pics) != 1 {
			t.Errorf("Expected one picture at %s, got %d", cell, len(pics))
		}
	}

	rows, err := f.GetRows(IndexSheet)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("Expected header plus 3 index rows, got %d", len(rows))
	}
	if rows[2][0] != "B1" || rows[2][1] != "doc.pdf" {
		t.Errorf("Unexpected index row %v", rows[2])
	}
}

func TestFitLimits(t *testing.T) {
	layout := sizing.CellLayout{ColumnWidth: 510, RowHeight: 300, XScale: 1, YScale: 1}
	fitted := fitLimits(layout)

	if math.Abs(fitted.ColumnWidth-255) > 1e-9 {
		t.Errorf("Expected width clamped to 255, got %v", fitted.ColumnWidth)
	}
	if math.Abs(fitted.RowHeight-150) > 1e-9 || math.Abs(fitted.XScale-0.5) > 1e-9 || math.Abs(fitted.YScale-0.5) > 1e-9 {
		t.Errorf("Expected uniform halving, got %+v", fitted)
	}

	small := sizing.CellLayout{ColumnWidth: 22, RowHeight: 150, XScale: 1, YScale: 1}
	if fitLimits(small) != small {
		t.Errorf("Layout within limits should be unchanged")
	}
}
