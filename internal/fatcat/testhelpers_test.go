package fatcat

import (
	"os"
	"path/filepath"
	"testing"
)

// writeSized creates a sparse file of the given logical size.
func writeSized(t *testing.T, path string, size int64) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating directory for %s: %v", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()

	if err := f.Truncate(size); err != nil {
		t.Fatalf("sizing %s: %v", path, err)
	}
}

// createExampleTree builds a tree with files of 50 MB, 150 MB, 600 MB and 2 GB.
func createExampleTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()

	writeSized(t, filepath.Join(root, "a.bin"), int64(50*MB))
	writeSized(t, filepath.Join(root, "sub", "b.bin"), int64(150*MB))
	writeSized(t, filepath.Join(root, "sub", "deeper", "c.bin"), int64(600*MB))
	writeSized(t, filepath.Join(root, "d.bin"), int64(2*GB))

	return root
}

func paths(files []FileRecord) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}

	return out
}
