package pdfrenderer

import (
	"image"

	"github.com/gen2brain/go-fitz"
)

// FitzRenderer implements PDF rendering using go-fitz (requires CGo and MuPDF)
type FitzRenderer struct {
}

// NewFitzRenderer creates a new Fitz-based PDF renderer
func NewFitzRenderer() (*FitzRenderer, error) {
	return &FitzRenderer{}, nil
}

// RenderFirstPage opens the PDF from memory and renders page 0
func (r *FitzRenderer) RenderFirstPage(data []byte, dpi float64) (image.Image, int, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, 0, decodeError("unable to open PDF document: %v", err)
	}
	defer doc.Close()

	numPages := doc.NumPage()
	if numPages < 1 {
		return nil, 0, decodeError("PDF has no pages")
	}

	img, err := doc.ImageDPI(0, dpi)
	if err != nil {
		return nil, numPages, decodeError("unable to render first page: %v", err)
	}

	return img, numPages, nil
}

// Close cleans up resources (no-op for Fitz renderer as doc is closed per-render)
func (r *FitzRenderer) Close() error {
	return nil
}
