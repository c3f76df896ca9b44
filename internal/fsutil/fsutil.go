package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ModTime returns the modification time of path, and whether the path exists.
// Any error other than non-existence is treated as "missing" so staleness
// checks fail towards rebuilding.
func ModTime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// Promote moves a freshly built artifact from a staging directory to its
// final path with a rename, so the final path never holds a partial file.
// The staging directory must live on the same filesystem as the destination;
// callers create it next to the final path for that reason.
func Promote(stagedPath, finalPath string) error {
	if _, err := os.Stat(stagedPath); err != nil {
		return fmt.Errorf("staged artifact missing: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(finalPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.Rename(stagedPath, finalPath); err != nil {
		return fmt.Errorf("failed to promote artifact to %s: %w", finalPath, err)
	}
	return nil
}

// StageDir creates a temporary staging directory alongside dir. The caller
// is responsible for removing it.
func StageDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	stage, err := os.MkdirTemp(dir, ".stage-")
	if err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	return stage, nil
}
