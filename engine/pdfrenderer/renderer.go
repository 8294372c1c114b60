package pdfrenderer

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
)

// ErrDecode is wrapped by every renderer failure caused by the document itself
var ErrDecode = errors.New("unable to decode PDF")

// DefaultDPI is the resolution the first page is rasterized at
const DefaultDPI = 150

// Renderer defines the interface for PDF to image conversion
type Renderer interface {
	// RenderFirstPage rasterizes the first page of an in-memory PDF at dpi
	// and returns it with the document's page count
	RenderFirstPage(data []byte, dpi float64) (image.Image, int, error)

	// Close cleans up any resources used by the renderer
	Close() error
}

// NewRenderer creates the renderer named by kind: "pdfium" (pure Go, the
// default when kind is empty) or "fitz" (CGo and MuPDF)
func NewRenderer(kind string) (Renderer, error) {
	switch strings.ToLower(kind) {
	case "", "pdfium":
		return NewPDFiumRenderer()
	case "fitz", "mupdf":
		return NewFitzRenderer()
	default:
		return nil, fmt.Errorf("unknown renderer %q (supported: pdfium, fitz)", kind)
	}
}

func decodeError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
}

// pixelDPI rounds dpi to the whole number pdfium takes, never below 1
func pixelDPI(dpi float64) int {
	if n := int(math.Round(dpi)); n > 1 {
		return n
	}
	return 1
}
