package engine

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/h2non/filetype"
	"github.com/ledongthuc/pdf"
)

// validateInput rejects uploads that cannot be a real PDF before they reach
// the rasterizer
func validateInput(in Input, minBytes int) error {
	slashed := strings.ReplaceAll(in.Name, "\\", "/")
	base := path.Base(slashed)
	if strings.HasPrefix(base, "._") {
		return fmt.Errorf("%s is a macOS resource fork", base)
	}
	if strings.HasPrefix(slashed, "__MACOSX/") || strings.Contains(slashed, "/__MACOSX/") {
		return fmt.Errorf("%s is macOS archive metadata", in.Name)
	}
	if len(in.Data) < minBytes {
		return fmt.Errorf("%d bytes is below the minimum document size of %d", len(in.Data), minBytes)
	}
	if !filetype.Is(in.Data, "pdf") {
		kind, _ := filetype.Match(in.Data)
		if kind == filetype.Unknown {
			return fmt.Errorf("content is not a PDF")
		}
		return fmt.Errorf("content is %s, not a PDF", kind.MIME.Value)
	}
	return nil
}

// readPageCount reads the page tree without rendering. It returns 0 when the
// structure cannot be parsed; the rasterizer has the final word.
func readPageCount(name string, data []byte) (pages int) {
	defer func() {
		if r := recover(); r != nil {
			Logger.Debug("Panic recovered while counting PDF pages", "name", name, "panic", r)
			pages = 0
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		Logger.Debug("Page count could not parse document", "name", name, "error", err)
		return 0
	}
	return reader.NumPage()
}
