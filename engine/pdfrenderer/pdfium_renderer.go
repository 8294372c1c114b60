package pdfrenderer

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
)

// PDFiumRenderer implements PDF rendering using go-pdfium with WebAssembly (pure Go, no CGo)
type PDFiumRenderer struct {
	mu       sync.Mutex // one instance, one document at a time
	pool     pdfium.Pool
	instance pdfium.Pdfium
}

// NewPDFiumRenderer creates a new PDFium-based PDF renderer using WebAssembly
func NewPDFiumRenderer() (*PDFiumRenderer, error) {
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PDFium WebAssembly: %w", err)
	}

	instance, err := pool.GetInstance(time.Second * 30)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to get PDFium instance: %w", err)
	}

	return &PDFiumRenderer{
		pool:     pool,
		instance: instance,
	}, nil
}

// RenderFirstPage renders page 0 of an in-memory PDF at dpi
func (r *PDFiumRenderer) RenderFirstPage(data []byte, dpi float64) (image.Image, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.instance == nil {
		return nil, 0, fmt.Errorf("PDFium renderer is closed")
	}

	doc, err := r.instance.OpenDocument(&requests.OpenDocument{
		File: &data,
	})
	if err != nil {
		return nil, 0, decodeError("unable to open PDF document: %v", err)
	}
	defer r.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})

	pageCountResp, err := r.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc.Document,
	})
	if err != nil {
		return nil, 0, decodeError("unable to get page count: %v", err)
	}
	numPages := pageCountResp.PageCount
	if numPages < 1 {
		return nil, 0, decodeError("PDF has no pages")
	}

	pageRender, err := r.instance.RenderPageInDPI(&requests.RenderPageInDPI{
		DPI: pixelDPI(dpi),
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: doc.Document,
				Index:    0,
			},
		},
	})
	if err != nil {
		return nil, numPages, decodeError("unable to render first page: %v", err)
	}
	defer pageRender.Cleanup()

	// The pixel buffer lives in WebAssembly memory and is freed by Cleanup
	return imaging.Clone(pageRender.Result.Image), numPages, nil
}

// Close cleans up resources used by the PDFium renderer
func (r *PDFiumRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pool != nil {
		r.pool.Close()
		r.pool = nil
	}
	r.instance = nil
	return nil
}
