package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// scratchPrefix marks directories created by NewWorkspace so the sweeper
// never touches anything else under WORK_DIR
const scratchPrefix = "pdfthumbs-batch-"

// liveWorkspaces holds the directories of batches still running; the sweeper
// never removes them whatever their age
var liveWorkspaces = struct {
	sync.Mutex
	dirs map[string]bool
}{dirs: make(map[string]bool)}

func workspaceKey(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}

func setLive(dir string, live bool) {
	liveWorkspaces.Lock()
	defer liveWorkspaces.Unlock()
	if live {
		liveWorkspaces.dirs[workspaceKey(dir)] = true
	} else {
		delete(liveWorkspaces.dirs, workspaceKey(dir))
	}
}

func isLive(dir string) bool {
	liveWorkspaces.Lock()
	defer liveWorkspaces.Unlock()
	return liveWorkspaces.dirs[workspaceKey(dir)]
}

// Workspace is the private scratch directory of one batch
type Workspace struct {
	Dir string
}

// NewWorkspace creates a fresh scratch directory under parent
func NewWorkspace(parent string) (*Workspace, error) {
	if parent == "" {
		parent = os.TempDir()
	}
	if err := os.MkdirAll(parent, 0755); err != nil {
		return nil, fmt.Errorf("unable to create work directory %s: %w", parent, err)
	}
	dir, err := os.MkdirTemp(parent, scratchPrefix)
	if err != nil {
		return nil, fmt.Errorf("unable to create scratch directory: %w", err)
	}
	setLive(dir, true)
	return &Workspace{Dir: dir}, nil
}

// Path returns the spool path for the index-th document's image
func (w *Workspace) Path(index int, suffix string) string {
	return filepath.Join(w.Dir, fmt.Sprintf("%05d%s", index, suffix))
}

// Release removes the directory and everything spooled into it
func (w *Workspace) Release() error {
	if w == nil || w.Dir == "" {
		return nil
	}
	defer setLive(w.Dir, false)
	return os.RemoveAll(w.Dir)
}

// SweepStaleWorkspaces removes scratch directories under parent that are
// older than ttl and do not belong to a running batch. Batches clean up
// after themselves, so these are leftovers of a crash.
func SweepStaleWorkspaces(parent string, ttl time.Duration) (int, error) {
	entries, err := os.ReadDir(parent)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-ttl)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), scratchPrefix) {
			continue
		}
		path := filepath.Join(parent, entry.Name())
		if isLive(path) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			Logger.Warn("Unable to stat scratch directory", "name", entry.Name(), "error", err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			Logger.Warn("Unable to remove stale scratch directory", "path", path, "error", err)
			continue
		}
		Logger.Info("Removed stale scratch directory", "path", path, "modified", info.ModTime())
		removed++
	}
	return removed, nil
}
