package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// thumbnailOverrides is the YAML shape; nil fields keep the current value
type thumbnailOverrides struct {
	Renderer         *string  `yaml:"renderer"`
	DPI              *float64 `yaml:"dpi"`
	TargetDimension  *int     `yaml:"targetDimension"`
	TargetAxis       *string  `yaml:"targetAxis"`
	ImageFormat      *string  `yaml:"imageFormat"`
	JPEGQuality      *int     `yaml:"jpegQuality"`
	MinDocumentBytes *int     `yaml:"minDocumentBytes"`
	MaxZipEntryMB    *int     `yaml:"maxZipEntryMB"`
	PxPerColumnUnit  *float64 `yaml:"pxPerColumnUnit"`
	PtPerPixel       *float64 `yaml:"ptPerPixel"`
	SheetOrder       *string  `yaml:"sheetOrder"`
	SheetSpan        *int     `yaml:"sheetSpan"`
	EmbedOriginal    *bool    `yaml:"embedOriginal"`
}

// ApplyFile overlays the settings in a YAML file onto c and validates the result
func (c ThumbnailConfig) ApplyFile(path string) (ThumbnailConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("unable to read config file %s: %w", path, err)
	}
	return c.ApplyYAML(data)
}

// ApplyYAML overlays YAML settings onto c and validates the result
func (c ThumbnailConfig) ApplyYAML(data []byte) (ThumbnailConfig, error) {
	var o thumbnailOverrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return c, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	setString(&c.Renderer, o.Renderer)
	setFloat(&c.DPI, o.DPI)
	setInt(&c.TargetDimension, o.TargetDimension)
	setString(&c.TargetAxis, o.TargetAxis)
	setString(&c.ImageFormat, o.ImageFormat)
	setInt(&c.JPEGQuality, o.JPEGQuality)
	setInt(&c.MinDocumentBytes, o.MinDocumentBytes)
	setInt(&c.MaxZipEntryMB, o.MaxZipEntryMB)
	setFloat(&c.PxPerColumnUnit, o.PxPerColumnUnit)
	setFloat(&c.PtPerPixel, o.PtPerPixel)
	setString(&c.SheetOrder, o.SheetOrder)
	setInt(&c.SheetSpan, o.SheetSpan)
	if o.EmbedOriginal != nil {
		c.EmbedOriginal = *o.EmbedOriginal
	}

	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
