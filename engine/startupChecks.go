package engine

import (
	"errors"
	"fmt"
	"os"
)

// StartupChecks performs all the checks to make sure everything works
func (serverHandler *ServerHandler) StartupChecks() error {
	if err := workDirectoryChecks(serverHandler.ServerConfig.WorkDir); err != nil {
		return err
	}
	if serverHandler.Renderer == nil {
		Logger.Error("No PDF renderer available", "renderer", serverHandler.ServerConfig.Thumbnails.Renderer)
		return errors.New("no PDF renderer available")
	}
	Logger.Info("PDF renderer ready", "renderer", serverHandler.ServerConfig.Thumbnails.Renderer)

	// leftovers from a previous run are removed straight away
	if removed, err := SweepStaleWorkspaces(serverHandler.ServerConfig.WorkDir, serverHandler.ServerConfig.ScratchTTL); err != nil {
		Logger.Warn("Unable to sweep work directory at startup", "error", err)
	} else if removed > 0 {
		Logger.Info("Removed stale scratch directories at startup", "count", removed)
	}
	return nil
}

// workDirectoryChecks ensures the scratch parent directory exists and is writable
func workDirectoryChecks(workDir string) error {
	if workDir == "" {
		Logger.Warn("Work directory not configured, using system temp directory")
		return nil
	}

	info, err := os.Stat(workDir)
	if err != nil {
		if os.IsNotExist(err) {
			Logger.Info("Creating work directory", "path", workDir)
			if err := os.MkdirAll(workDir, 0755); err != nil {
				Logger.Error("Failed to create work directory", "path", workDir, "error", err)
				return err
			}
			return nil
		}
		Logger.Error("Error checking work directory", "path", workDir, "error", err)
		return err
	}

	if !info.IsDir() {
		Logger.Error("Work path exists but is not a directory", "path", workDir)
		return fmt.Errorf("work path is not a directory: %s", workDir)
	}

	check, err := os.CreateTemp(workDir, ".write-check-")
	if err != nil {
		Logger.Error("Work directory is not writable", "path", workDir, "error", err)
		return fmt.Errorf("work directory is not writable: %w", err)
	}
	check.Close()
	os.Remove(check.Name())

	Logger.Info("Work directory exists", "path", workDir)
	return nil
}
