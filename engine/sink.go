package engine

import (
	"github.com/drummonds/pdfthumbs/engine/archive"
	"github.com/drummonds/pdfthumbs/engine/sizing"
	"github.com/drummonds/pdfthumbs/engine/workbook"
)

// sink is the output shared by every document of a batch
type sink interface {
	add(th *Thumbnail) error
	finish() ([]byte, error)
	close()
}

func newSink(format Format, opts Options) (sink, error) {
	if format == FormatXlsx {
		w, err := workbook.New(opts.Placement)
		if err != nil {
			return nil, err
		}
		return &workbookSink{w: w, opts: opts}, nil
	}
	return &zipSink{w: archive.NewWriter()}, nil
}

type zipSink struct {
	w *archive.Writer
}

func (s *zipSink) add(th *Thumbnail) error {
	return s.w.AddFile(th.Name, th.Path)
}

func (s *zipSink) finish() ([]byte, error) {
	return s.w.Close()
}

func (s *zipSink) close() {}

type workbookSink struct {
	w    *workbook.Writer
	opts Options
}

func (s *workbookSink) add(th *Thumbnail) error {
	imagePath := th.Path
	var layout sizing.CellLayout
	var err error
	if th.OriginalPath != "" {
		imagePath = th.OriginalPath
		layout, err = sizing.ComputeScaledCellLayout(th.Size.Width, th.Size.Height, th.Source.Width, th.Source.Height, s.opts.PxPerColumnUnit, s.opts.PtPerPixel)
	} else {
		layout, err = sizing.ComputeCellLayout(th.Size.Width, th.Size.Height, s.opts.PxPerColumnUnit, s.opts.PtPerPixel)
	}
	if err != nil {
		return err
	}

	cell, err := s.w.Add(workbook.Item{
		SourceName: th.SourceName,
		EntryName:  th.Name,
		Pages:      th.Pages,
		Thumbnail:  th.Size,
		Layout:     layout,
		ImagePath:  imagePath,
	})
	if err != nil {
		return err
	}
	th.Cell = cell
	th.Layout = &layout
	return nil
}

func (s *workbookSink) finish() ([]byte, error) {
	return s.w.Bytes()
}

func (s *workbookSink) close() {
	if err := s.w.Close(); err != nil {
		Logger.Warn("Unable to release workbook", "error", err)
	}
}
