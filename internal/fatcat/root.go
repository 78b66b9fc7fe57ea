package fatcat

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

var (
	// ErrRootNotFound is returned by CheckRoot when the root does not exist.
	ErrRootNotFound = errors.New("path does not exist")
	// ErrRootUnreadable is returned by CheckRoot when the root exists but cannot be read.
	ErrRootUnreadable = errors.New("path is not readable")
)

// CheckRoot reports whether path can be scanned. Scan treats an inaccessible
// root like an empty tree, so callers that need to distinguish the two run
// this first.
func CheckRoot(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("accessing path %q: %w", path, ErrRootNotFound)
		}

		return fmt.Errorf("accessing path %q: %w: %w", path, ErrRootUnreadable, err)
	}

	if !info.IsDir() {
		return nil
	}

	dir, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening path %q: %w: %w", path, ErrRootUnreadable, err)
	}
	defer dir.Close()

	if _, err := dir.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading path %q: %w: %w", path, ErrRootUnreadable, err)
	}

	return nil
}
