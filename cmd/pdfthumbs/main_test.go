package main

import (
	"archive/zip"
	"bytes"
	"image"
	_ "image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/drummonds/pdfthumbs/engine/pdfrenderer"
)

type stubRenderer struct{}

func (stubRenderer) RenderFirstPage(data []byte, dpi float64) (image.Image, int, error) {
	return image.NewNRGBA(image.Rect(0, 0, 612, 792)), 1, nil
}

func (stubRenderer) Close() error { return nil }

func useStubRenderer(t *testing.T) {
	t.Helper()
	previous := newRenderer
	newRenderer = func(kind string) (pdfrenderer.Renderer, error) { return stubRenderer{}, nil }
	t.Cleanup(func() { newRenderer = previous })
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func pdfBytes(label string) []byte {
	data := []byte("%PDF-1.4\n% " + label + "\n")
	return append(data, bytes.Repeat([]byte(" "), 2048)...)
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCollectInputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "docs", "a.pdf"), []byte("a"))
	writeFile(t, filepath.Join(dir, "docs", "sub", "b.PDF"), []byte("b"))
	writeFile(t, filepath.Join(dir, "docs", "notes.txt"), []byte("ignored"))
	writeFile(t, filepath.Join(dir, "docs", "bundle.zip"), []byte("z"))
	writeFile(t, filepath.Join(dir, "single.pdf"), []byte("s"))

	inputs, err := collectInputs([]string{filepath.Join(dir, "docs"), filepath.Join(dir, "single.pdf")})
	if err != nil {
		t.Fatalf("collectInputs failed: %v", err)
	}

	var names []string
	for _, in := range inputs {
		names = append(names, in.Name)
	}
	sort.Strings(names)
	expected := []string{"a.pdf", "bundle.zip", "single.pdf", "sub/b.PDF"}
	if strings.Join(names, ",") != strings.Join(expected, ",") {
		t.Errorf("Expected %v, got %v", expected, names)
	}
}

func TestCollectInputs_Missing(t *testing.T) {
	if _, err := collectInputs([]string{filepath.Join(t.TempDir(), "missing.pdf")}); err == nil {
		t.Error("Expected error for missing input")
	}
}

func TestZipCommand(t *testing.T) {
	useStubRenderer(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "in", "Report A.pdf"), pdfBytes("one"))
	writeFile(t, filepath.Join(dir, "in", "._Report A.pdf"), []byte("x"))
	out := filepath.Join(dir, "thumbs.zip")

	stdout, stderr, err := execute(t, "zip", "-o", out, "--target", "100", filepath.Join(dir, "in"))
	if err != nil {
		t.Fatalf("zip command failed: %v (stderr: %s)", err, stderr)
	}
	if !strings.Contains(stdout, "wrote 1 thumbnails") {
		t.Errorf("Unexpected stdout %q", stdout)
	}
	if !strings.Contains(stderr, "._Report A.pdf") {
		t.Errorf("Expected skip notice for resource fork, got %q", stderr)
	}

	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("Output is not a zip: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 1 || zr.File[0].Name != "Report_A.jpg" {
		t.Errorf("Unexpected entries in output")
	}
}

func TestZipCommand_ShortAxisName(t *testing.T) {
	useStubRenderer(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "wide.pdf"), pdfBytes("wide"))
	out := filepath.Join(dir, "thumbs.zip")

	_, stderr, err := execute(t, "zip", "-o", out, "--axis", "w", "--target", "100", filepath.Join(dir, "wide.pdf"))
	if err != nil {
		t.Fatalf("zip command with --axis w failed: %v (stderr: %s)", err, stderr)
	}

	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("Output is not a zip: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(zr.File))
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("Failed to open entry: %v", err)
	}
	defer rc.Close()
	imgCfg, _, err := image.DecodeConfig(rc)
	if err != nil {
		t.Fatalf("Entry is not an image: %v", err)
	}
	if imgCfg.Width != 100 {
		t.Errorf("Expected width pinned to 100, got %dx%d", imgCfg.Width, imgCfg.Height)
	}
}

func TestXlsxCommand_NothingToWrite(t *testing.T) {
	useStubRenderer(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tiny.pdf"), []byte("%PDF"))
	out := filepath.Join(dir, "thumbs.xlsx")

	_, stderr, err := execute(t, "xlsx", "-o", out, filepath.Join(dir, "tiny.pdf"))
	if err != nil {
		t.Fatalf("Empty batch should not be an error, got %v", err)
	}
	if !strings.Contains(stderr, "nothing to write") {
		t.Errorf("Expected 'nothing to write', got %q", stderr)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("No output file should be created for an empty batch")
	}
}

func TestBatchCommand_Arguments(t *testing.T) {
	useStubRenderer(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.pdf"), pdfBytes("a"))
	writeFile(t, filepath.Join(dir, "bad.yaml"), []byte("targetDimension: -5\n"))

	tests := []struct {
		name string
		args []string
	}{
		{"no inputs", []string{"zip"}},
		{"bad axis", []string{"zip", "--axis", "diagonal", filepath.Join(dir, "a.pdf")}},
		{"bad config file", []string{"zip", "--config", filepath.Join(dir, "bad.yaml"), filepath.Join(dir, "a.pdf")}},
		{"span on zip", []string{"zip", "--span", "2", filepath.Join(dir, "a.pdf")}},
		{"empty directory", []string{"zip", t.TempDir()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, tt.args...); err == nil {
				t.Errorf("Expected error for %v", tt.args)
			}
		})
	}
}
