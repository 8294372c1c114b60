package engine

import (
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/drummonds/pdfthumbs/engine/pdfrenderer"
	"github.com/drummonds/pdfthumbs/engine/sizing"
)

// thumbnail takes one document through explicit steps:
// Step 1: validate the upload
// Step 2: rasterize the first page
// Step 3: size, resize and encode into the workspace
// Any panic from a parser or codec is reported as a decode failure.
func (p *Processor) thumbnail(ws *Workspace, index int, doc Input) (th *Thumbnail, err error) {
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered while processing document", "name", doc.Name, "panic", r)
			th = nil
			err = itemError(doc.Name, KindDecodeFailure, fmt.Errorf("panic: %v", r))
		}
	}()

	// Step 1
	if err := validateInput(doc, p.Options.MinDocumentBytes); err != nil {
		return nil, itemError(doc.Name, KindInvalidInput, err)
	}
	counted := readPageCount(doc.Name, doc.Data)

	// Step 2
	img, pages, err := p.Renderer.RenderFirstPage(doc.Data, p.dpi())
	if err != nil {
		return nil, itemError(doc.Name, KindDecodeFailure, err)
	}
	if img == nil {
		return nil, itemError(doc.Name, KindDecodeFailure, fmt.Errorf("%w: renderer returned no image", pdfrenderer.ErrDecode))
	}
	if pages < 1 {
		pages = counted
	}

	// Step 3
	bounds := img.Bounds()
	source := sizing.Size{Width: bounds.Dx(), Height: bounds.Dy()}
	size, err := sizing.ComputeSize(source.Width, source.Height, p.Options.TargetDimension, p.Options.Axis)
	if err != nil {
		// the target was validated with the options, so only an empty raster gets here
		return nil, itemError(doc.Name, KindDecodeFailure, err)
	}

	resized := imaging.Resize(img, size.Width, size.Height, imaging.Lanczos)
	ext := imageExtension(p.Options.ImageFormat)
	path := ws.Path(index, ext)
	if err := p.encode(path, resized); err != nil {
		return nil, itemError(doc.Name, KindEncodeFailure, err)
	}

	th = &Thumbnail{
		SourceName: doc.Name,
		Source:     source,
		Size:       size,
		Pages:      pages,
		Path:       path,
	}

	if p.Options.EmbedOriginal {
		original := ws.Path(index, "-original"+ext)
		if err := p.encode(original, img); err != nil {
			return nil, itemError(doc.Name, KindEncodeFailure, err)
		}
		th.OriginalPath = original
	}

	return th, nil
}

func (p *Processor) encode(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", path, err)
	}

	var opts []imaging.EncodeOption
	if p.Options.ImageFormat == imaging.JPEG && p.Options.JPEGQuality > 0 {
		opts = append(opts, imaging.JPEGQuality(p.Options.JPEGQuality))
	}
	if err := imaging.Encode(f, img, p.Options.ImageFormat, opts...); err != nil {
		f.Close()
		return fmt.Errorf("unable to encode thumbnail: %w", err)
	}
	return f.Close()
}

func (p *Processor) dpi() float64 {
	if p.Options.DPI > 0 {
		return p.Options.DPI
	}
	return pdfrenderer.DefaultDPI
}
