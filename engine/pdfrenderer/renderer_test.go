package pdfrenderer

import (
	"errors"
	"testing"
)

func TestNewRenderer_UnknownKind(t *testing.T) {
	r, err := NewRenderer("ghostscript")
	if err == nil {
		r.Close()
		t.Fatal("Expected error for unknown renderer kind")
	}
	t.Logf("Correctly rejected unknown renderer: %v", err)
}

func TestPixelDPI(t *testing.T) {
	tests := []struct {
		dpi  float64
		want int
	}{
		{0.5, 1},
		{0, 1},
		{-3, 1},
		{1, 1},
		{72.4, 72},
		{149.6, 150},
		{150, 150},
	}

	for _, tt := range tests {
		if got := pixelDPI(tt.dpi); got != tt.want {
			t.Errorf("pixelDPI(%v): expected %d, got %d", tt.dpi, tt.want, got)
		}
	}
}

func TestFitzRenderer_RejectsGarbage(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping MuPDF test in short mode")
	}

	r, err := NewRenderer("fitz")
	if err != nil {
		t.Fatalf("Failed to create fitz renderer: %v", err)
	}
	defer r.Close()

	_, _, err = r.RenderFirstPage([]byte("this is not a PDF at all"), DefaultDPI)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("Expected ErrDecode, got %v", err)
	}
}

func TestPDFiumRenderer_RendersLetterPage(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping PDFium WebAssembly test in short mode")
	}

	r, err := NewRenderer("pdfium")
	if err != nil {
		t.Fatalf("Failed to create pdfium renderer: %v", err)
	}
	defer r.Close()

	img, pages, err := r.RenderFirstPage(letterPDF(), 72)
	if err != nil {
		t.Fatalf("RenderFirstPage failed: %v", err)
	}
	if pages != 1 {
		t.Errorf("Expected 1 page, got %d", pages)
	}

	// 612x792pt at 72dpi is 612x792px
	b := img.Bounds()
	if b.Dx() != 612 || b.Dy() != 792 {
		t.Errorf("Expected 612x792 raster, got %dx%d", b.Dx(), b.Dy())
	}

	if _, _, err := r.RenderFirstPage([]byte("%PDF-1.4 truncated"), 72); !errors.Is(err, ErrDecode) {
		t.Errorf("Expected ErrDecode for truncated PDF, got %v", err)
	}
}

// letterPDF returns a minimal single page US Letter document
func letterPDF() []byte {
	return []byte(`%PDF-1.4
1 0 obj
<< /Type /Catalog /Pages 2 0 R >>
endobj
2 0 obj
<< /Type /Pages /Kids [3 0 R] /Count 1 >>
endobj
3 0 obj
<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>
endobj
trailer
<< /Root 1 0 R /Size 4 >>
%%EOF`)
}
