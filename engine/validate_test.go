package engine

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name    string
		input   Input
		wantErr bool
	}{
		{"valid", Input{Name: "doc.pdf", Data: fakePDF("ok")}, false},
		{"resource fork", Input{Name: "._ghost.pdf", Data: []byte{0}}, true},
		{"resource fork in folder", Input{Name: "docs/._ghost.pdf", Data: fakePDF("fork")}, true},
		{"macos metadata", Input{Name: "__MACOSX/doc.pdf", Data: fakePDF("meta")}, true},
		{"too small", Input{Name: "tiny.pdf", Data: []byte("%PDF-1.4")}, true},
		{"not a pdf", Input{Name: "fake.pdf", Data: bytes.Repeat([]byte{0x89, 'P', 'N', 'G'}, 512)}, true},
		{"backslash path fork", Input{Name: `docs\._ghost.pdf`, Data: fakePDF("fork")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateInput(tt.input, 1024)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateInput(%s) error = %v, wantErr %v", tt.input.Name, err, tt.wantErr)
			}
		})
	}
}

func TestReadPageCount_Garbage(t *testing.T) {
	if pages := readPageCount("garbage.pdf", fakePDF("no xref")); pages != 0 {
		t.Errorf("Expected 0 pages for an unparsable document, got %d", pages)
	}
	if pages := readPageCount("empty.pdf", nil); pages != 0 {
		t.Errorf("Expected 0 pages for no data, got %d", pages)
	}
}

func TestWorkspace_Release(t *testing.T) {
	parent := t.TempDir()
	ws, err := NewWorkspace(parent)
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}
	if filepath.Dir(ws.Dir) != parent {
		t.Errorf("Expected workspace under %s, got %s", parent, ws.Dir)
	}
	if err := os.WriteFile(ws.Path(0, ".jpg"), []byte("x"), 0644); err != nil {
		t.Fatalf("Unable to spool into workspace: %v", err)
	}

	other, err := NewWorkspace(parent)
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}
	if other.Dir == ws.Dir {
		t.Error("Concurrent batches must not share a workspace")
	}

	if err := ws.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(ws.Dir); !os.IsNotExist(err) {
		t.Errorf("Expected workspace to be gone, stat returned %v", err)
	}
	if _, err := os.Stat(other.Dir); err != nil {
		t.Errorf("Releasing one workspace removed another: %v", err)
	}
	other.Release()
}

func TestSweepStaleWorkspaces(t *testing.T) {
	parent := t.TempDir()

	// a crashed batch leaves its directory behind without releasing it
	staleDir, err := os.MkdirTemp(parent, scratchPrefix)
	if err != nil {
		t.Fatalf("Failed to create leftover scratch dir: %v", err)
	}
	stale := &Workspace{Dir: staleDir}
	freshDir, err := os.MkdirTemp(parent, scratchPrefix)
	if err != nil {
		t.Fatalf("Failed to create leftover scratch dir: %v", err)
	}
	fresh := &Workspace{Dir: freshDir}
	unrelated := filepath.Join(parent, "keep-me")
	if err := os.Mkdir(unrelated, 0755); err != nil {
		t.Fatalf("Failed to create unrelated dir: %v", err)
	}

	old := time.Now().Add(-48 * time.Hour)
	for _, dir := range []string{stale.Dir, unrelated} {
		if err := os.Chtimes(dir, old, old); err != nil {
			t.Fatalf("Chtimes failed: %v", err)
		}
	}

	removed, err := SweepStaleWorkspaces(parent, time.Hour)
	if err != nil {
		t.Fatalf("SweepStaleWorkspaces failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 stale workspace removed, got %d", removed)
	}
	if _, err := os.Stat(stale.Dir); !os.IsNotExist(err) {
		t.Error("Stale workspace was not removed")
	}
	if _, err := os.Stat(fresh.Dir); err != nil {
		t.Error("Fresh workspace was removed")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Error("Directory without the scratch prefix was removed")
	}

	if n, err := SweepStaleWorkspaces(filepath.Join(parent, "missing"), time.Hour); err != nil || n != 0 {
		t.Errorf("Expected a missing work dir to be a no-op, got %d %v", n, err)
	}
}

func TestSweepStaleWorkspaces_SkipsLiveWorkspace(t *testing.T) {
	parent := t.TempDir()
	ws, err := NewWorkspace(parent)
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}
	spool := ws.Path(0, ".jpg")
	if err := os.WriteFile(spool, []byte("x"), 0644); err != nil {
		t.Fatalf("Unable to spool into workspace: %v", err)
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(ws.Dir, old, old); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	removed, err := SweepStaleWorkspaces(parent, 0)
	if err != nil {
		t.Fatalf("SweepStaleWorkspaces failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("Expected the running batch's workspace to be kept, %d removed", removed)
	}
	if _, err := os.Stat(spool); err != nil {
		t.Errorf("Spool file of a running batch was removed: %v", err)
	}

	// once released it is no longer protected
	if err := ws.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if isLive(ws.Dir) {
		t.Error("Released workspace is still marked live")
	}
}
