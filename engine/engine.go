package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/drummonds/pdfthumbs/engine/archive"
	"github.com/drummonds/pdfthumbs/engine/pdfrenderer"
	"github.com/drummonds/pdfthumbs/engine/sizing"
)

// Input is one uploaded document (or a ZIP of documents)
type Input struct {
	Name string
	Data []byte
}

// Thumbnail is a produced image spooled in the batch workspace
type Thumbnail struct {
	Name         string             `json:"name"`       // entry name in the output
	SourceName   string             `json:"sourceName"` // uploaded name
	Source       sizing.Size        `json:"source"`     // first page raster
	Size         sizing.Size        `json:"size"`
	Pages        int                `json:"pages"`
	Path         string             `json:"-"`
	OriginalPath string             `json:"-"` // unresized raster, spreadsheet EmbedOriginal only
	Cell         string             `json:"cell,omitempty"`
	Layout       *sizing.CellLayout `json:"layout,omitempty"`
}

// Result is the outcome of a batch. Empty is set, and Output is nil, when no
// document produced a thumbnail.
type Result struct {
	Output     []byte
	Format     Format
	Documents  int
	Thumbnails []Thumbnail
	Notices    []Notice
	Empty      bool
}

// Err is ErrBatchEmpty for an empty batch and nil otherwise
func (r *Result) Err() error {
	if r.Empty {
		return ErrBatchEmpty
	}
	return nil
}

// Entries lists the output entry names in document order
func (r *Result) Entries() []string {
	names := make([]string, 0, len(r.Thumbnails))
	for _, th := range r.Thumbnails {
		names = append(names, th.Name)
	}
	return names
}

// ProgressReporter is told after every document
type ProgressReporter interface {
	Progress(done, total int, current string)
}

// Processor runs batches against one renderer
type Processor struct {
	Renderer pdfrenderer.Renderer
	Options  Options
	Progress ProgressReporter

	newSink func(Format, Options) (sink, error) // nil means newSink
}

// NewProcessor creates a processor; Progress may be set afterwards
func NewProcessor(renderer pdfrenderer.Renderer, opts Options) *Processor {
	return &Processor{Renderer: renderer, Options: opts}
}

// Process thumbnails every document of the batch, in order, into a single
// archive or workbook. Documents that fail are skipped with a Notice. The
// returned error is reserved for failures of the batch itself: the scratch
// workspace, the output container or a cancelled context.
func (p *Processor) Process(ctx context.Context, inputs []Input, format Format) (*Result, error) {
	if p.Renderer == nil {
		return nil, errors.New("no renderer configured")
	}

	ws, err := NewWorkspace(p.Options.WorkDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ws.Release(); err != nil {
			Logger.Error("Unable to remove scratch directory", "dir", ws.Dir, "error", err)
		}
	}()

	result := &Result{Format: format}
	docs := p.expand(inputs, result)
	result.Documents = len(docs)

	makeSink := p.newSink
	if makeSink == nil {
		makeSink = newSink
	}
	out, err := makeSink(format, p.Options)
	if err != nil {
		return nil, fmt.Errorf("unable to create %s output: %w", format, err)
	}
	defer out.close()

	Logger.Info("Starting thumbnail batch", "documents", len(docs), "format", format, "scratch", ws.Dir)
	namer := archive.NewNamer()
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			Logger.Warn("Thumbnail batch cancelled", "done", i, "total", len(docs), "error", err)
			return nil, err
		}

		th, err := p.thumbnail(ws, i, doc)
		if err == nil {
			// the name is only taken once the entry is in the output
			th.Name = namer.Next(archive.EntryName(doc.Name, imageExtension(p.Options.ImageFormat)))
			if sinkErr := out.add(th); sinkErr != nil {
				err = itemError(doc.Name, KindEncodeFailure, sinkErr)
			} else {
				namer.Reserve(th.Name)
			}
		}

		var itemErr *ItemError
		switch {
		case errors.As(err, &itemErr):
			result.Notices = append(result.Notices, itemErr.Notice())
			Logger.Warn("Skipping document", "name", doc.Name, "kind", itemErr.Kind, "error", itemErr.Err)
		case err != nil:
			result.Notices = append(result.Notices, Notice{Name: doc.Name, Kind: KindDecodeFailure, Reason: err.Error()})
			Logger.Warn("Skipping document", "name", doc.Name, "error", err)
		default:
			result.Thumbnails = append(result.Thumbnails, *th)
			Logger.Debug("Thumbnail added", "name", doc.Name, "entry", th.Name, "size", th.Size.String())
		}

		if p.Progress != nil {
			p.Progress.Progress(i+1, len(docs), doc.Name)
		}
	}

	if len(result.Thumbnails) == 0 {
		result.Empty = true
		Logger.Info("Thumbnail batch produced nothing", "documents", len(docs), "skipped", len(result.Notices))
		return result, nil
	}

	result.Output, err = out.finish()
	if err != nil {
		return nil, fmt.Errorf("unable to finish %s output: %w", format, err)
	}
	Logger.Info("Thumbnail batch complete",
		"documents", len(docs),
		"thumbnails", len(result.Thumbnails),
		"skipped", len(result.Notices),
		"bytes", len(result.Output))
	return result, nil
}

// expand replaces ZIP uploads by their members. Unreadable archives and
// oversized members become notices.
func (p *Processor) expand(inputs []Input, result *Result) []Input {
	var docs []Input
	for _, in := range inputs {
		members, err := archive.Expand(in.Name, in.Data, p.Options.MaxZipEntryBytes)
		if err != nil {
			result.Notices = append(result.Notices, itemError(in.Name, KindInvalidInput, err).Notice())
			Logger.Warn("Skipping unreadable archive", "name", in.Name, "error", err)
			continue
		}
		for _, m := range members {
			if m.Err != nil {
				result.Notices = append(result.Notices, itemError(m.Name, KindInvalidInput, m.Err).Notice())
				Logger.Warn("Skipping archive member", "name", m.Name, "error", m.Err)
				continue
			}
			docs = append(docs, Input{Name: m.Name, Data: m.Data})
		}
	}
	return docs
}
