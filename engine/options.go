package engine

import (
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/drummonds/pdfthumbs/config"
	"github.com/drummonds/pdfthumbs/engine/sizing"
	"github.com/drummonds/pdfthumbs/engine/workbook"
)

// Format is the output container of a batch
type Format string

const (
	FormatZip  Format = "zip"
	FormatXlsx Format = "xlsx"
)

// ParseFormat validates an output format name, defaulting to zip
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatZip, "":
		return FormatZip, nil
	case FormatXlsx, "excel", "spreadsheet":
		return FormatXlsx, nil
	}
	return "", fmt.Errorf("unknown output format %q (must be zip or xlsx)", s)
}

// ContentType is the MIME type of the output
func (f Format) ContentType() string {
	if f == FormatXlsx {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/zip"
}

// Extension is the output file extension
func (f Format) Extension() string {
	if f == FormatXlsx {
		return ".xlsx"
	}
	return ".zip"
}

// ParseImageFormat accepts jpeg, jpg or png
func ParseImageFormat(s string) (imaging.Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpeg", "jpg", "":
		return imaging.JPEG, nil
	case "png":
		return imaging.PNG, nil
	}
	return imaging.JPEG, fmt.Errorf("unknown image format %q (must be jpeg or png)", s)
}

func imageExtension(f imaging.Format) string {
	if f == imaging.PNG {
		return ".png"
	}
	return ".jpg"
}

// Options shape one batch
type Options struct {
	WorkDir          string
	DPI              float64
	TargetDimension  int
	Axis             sizing.Axis
	ImageFormat      imaging.Format
	JPEGQuality      int
	MinDocumentBytes int
	MaxZipEntryBytes int64
	PxPerColumnUnit  float64
	PtPerPixel       float64
	Placement        workbook.Placement
	EmbedOriginal    bool
}

// OptionsFromConfig converts validated configuration into batch options
func OptionsFromConfig(cfg config.ThumbnailConfig, workDir string) (Options, error) {
	if err := cfg.Validate(); err != nil {
		return Options{}, err
	}
	axis, err := sizing.ParseAxis(cfg.TargetAxis)
	if err != nil {
		return Options{}, err
	}
	imageFormat, err := ParseImageFormat(cfg.ImageFormat)
	if err != nil {
		return Options{}, err
	}
	order, err := workbook.ParseOrder(cfg.SheetOrder)
	if err != nil {
		return Options{}, err
	}

	return Options{
		WorkDir:          workDir,
		DPI:              cfg.DPI,
		TargetDimension:  cfg.TargetDimension,
		Axis:             axis,
		ImageFormat:      imageFormat,
		JPEGQuality:      cfg.JPEGQuality,
		MinDocumentBytes: cfg.MinDocumentBytes,
		MaxZipEntryBytes: int64(cfg.MaxZipEntryMB) << 20,
		PxPerColumnUnit:  cfg.PxPerColumnUnit,
		PtPerPixel:       cfg.PtPerPixel,
		Placement:        workbook.Placement{Order: order, Span: cfg.SheetSpan},
		EmbedOriginal:    cfg.EmbedOriginal,
	}, nil
}
