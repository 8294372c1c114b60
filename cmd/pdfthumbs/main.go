// Command pdfthumbs thumbnails batches of PDFs from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/drummonds/pdfthumbs/config"
	"github.com/drummonds/pdfthumbs/engine"
	"github.com/drummonds/pdfthumbs/engine/pdfrenderer"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// newRenderer is swapped out in tests
var newRenderer = pdfrenderer.NewRenderer

type batchFlags struct {
	output     string
	configPath string
	renderer   string
	target     int
	axis       string
	image      string
	order      string
	span       int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pdfthumbs",
		Short: "Thumbnail the first page of PDFs",
		Long: `pdfthumbs renders the first page of every PDF (or every PDF inside a ZIP),
resizes it and writes the results to a ZIP of images or a spreadsheet.
Directories are searched for .pdf and .zip files.`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.AddCommand(
		newBatchCmd(engine.FormatZip, "Write thumbnails to a ZIP of images"),
		newBatchCmd(engine.FormatXlsx, "Place thumbnails in spreadsheet cells"),
	)
	return rootCmd
}

func newBatchCmd(format engine.Format, short string) *cobra.Command {
	flags := &batchFlags{}
	cmd := &cobra.Command{
		Use:   string(format) + " [flags] inputs...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, format, flags, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "Output file (default: thumbnails"+format.Extension()+")")
	f.StringVar(&flags.configPath, "config", "", "YAML file overriding thumbnail settings")
	f.StringVar(&flags.renderer, "renderer", "", "PDF renderer: pdfium or fitz")
	f.IntVarP(&flags.target, "target", "t", 0, "Target dimension in pixels")
	f.StringVar(&flags.axis, "axis", "", "Pinned axis: height or width")
	f.StringVar(&flags.image, "image", "", "Image format: jpeg or png")
	if format == engine.FormatXlsx {
		f.StringVar(&flags.order, "order", "", "Placement order: row-major or column-major")
		f.IntVar(&flags.span, "span", 0, "Pictures per row (row-major) or column (column-major)")
	}
	return cmd
}

// loadConfig layers environment, the --config file and explicit flags
func loadConfig(f *pflag.FlagSet, flags *batchFlags) (config.ThumbnailConfig, error) {
	cfg, logger := config.SetupCLI()
	Logger = logger
	engine.Logger = logger

	if flags.configPath != "" {
		var err error
		if cfg, err = cfg.ApplyFile(flags.configPath); err != nil {
			return cfg, err
		}
	}

	if f.Changed("renderer") {
		cfg.Renderer = flags.renderer
	}
	if f.Changed("target") {
		cfg.TargetDimension = flags.target
	}
	if f.Changed("axis") {
		cfg.TargetAxis = flags.axis
	}
	if f.Changed("image") {
		cfg.ImageFormat = flags.image
	}
	if f.Lookup("order") != nil && f.Changed("order") {
		cfg.SheetOrder = flags.order
	}
	if f.Lookup("span") != nil && f.Changed("span") {
		cfg.SheetSpan = flags.span
	}
	return cfg, cfg.Validate()
}

func runBatch(cmd *cobra.Command, format engine.Format, flags *batchFlags, args []string) error {
	cfg, err := loadConfig(cmd.Flags(), flags)
	if err != nil {
		return err
	}
	opts, err := engine.OptionsFromConfig(cfg, os.TempDir())
	if err != nil {
		return err
	}

	inputs, err := collectInputs(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return errors.New("no .pdf or .zip files found")
	}

	renderer, err := newRenderer(cfg.Renderer)
	if err != nil {
		return fmt.Errorf("unable to start %s renderer: %w", cfg.Renderer, err)
	}
	defer renderer.Close()

	result, err := engine.NewProcessor(renderer, opts).Process(cmd.Context(), inputs, format)
	if err != nil {
		return err
	}

	for _, n := range result.Notices {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s (%s): %s\n", n.Name, n.Kind, n.Reason)
	}
	if err := result.Err(); errors.Is(err, engine.ErrBatchEmpty) {
		fmt.Fprintf(cmd.ErrOrStderr(), "nothing to write: %v\n", err)
		return nil
	}

	output := flags.output
	if output == "" {
		output = "thumbnails" + format.Extension()
	}
	if err := os.WriteFile(output, result.Output, 0644); err != nil {
		return fmt.Errorf("unable to write %s: %w", output, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d thumbnails to %s (%d skipped)\n",
		len(result.Thumbnails), output, len(result.Notices))
	return nil
}

// collectInputs reads each file argument and every .pdf/.zip below each
// directory argument. Files found by walking are named relative to the
// directory so sub/a.pdf and a.pdf stay distinguishable.
func collectInputs(args []string) ([]engine.Input, error) {
	var inputs []engine.Input
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("input not found: %w", err)
		}

		if !info.IsDir() {
			data, err := os.ReadFile(arg)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, engine.Input{Name: filepath.Base(arg), Data: data})
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !wanted(path) {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(arg, path)
			if err != nil {
				rel = d.Name()
			}
			inputs = append(inputs, engine.Input{Name: filepath.ToSlash(rel), Data: data})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("unable to walk %s: %w", arg, err)
		}
	}
	return inputs, nil
}

func wanted(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".zip":
		return true
	}
	return false
}
