package fatcat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"
)

func TestScan_ExampleTree(t *testing.T) {
	root := createExampleTree(t)

	result, err := Scan(context.Background(), Options{Path: root, MinSize: 100 * MB}, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := []string{
		filepath.Join(root, "d.bin"),
		filepath.Join(root, "sub", "deeper", "c.bin"),
		filepath.Join(root, "sub", "b.bin"),
	}

	t.Run("ranked files", func(t *testing.T) {
		if got := paths(result.Files); !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("sizes", func(t *testing.T) {
		wantSizes := []uint64{2 * GB, 600 * MB, 150 * MB}
		for i, f := range result.Files {
			if f.Size != wantSizes[i] {
				t.Errorf("file %d: expected size %d, got %d", i, wantSizes[i], f.Size)
			}
		}
	})

	t.Run("counters", func(t *testing.T) {
		if result.Counters.FilesSeen != 4 {
			t.Errorf("expected 4 files seen, got %d", result.Counters.FilesSeen)
		}
		// root, sub, sub/deeper
		if result.Counters.DirsSeen != 3 {
			t.Errorf("expected 3 dirs seen, got %d", result.Counters.DirsSeen)
		}
		if result.Counters.Skipped != 0 {
			t.Errorf("expected 0 skipped, got %d", result.Counters.Skipped)
		}
	})

	t.Run("metadata", func(t *testing.T) {
		if result.MinSize != 100*MB {
			t.Errorf("expected min size %d, got %d", 100*MB, result.MinSize)
		}
		if result.Root != root {
			t.Errorf("expected root %q, got %q", root, result.Root)
		}
	})
}

func TestScan_EmptyDirectory(t *testing.T) {
	root := t.TempDir()

	result, err := Scan(context.Background(), Options{Path: root, MinSize: 100 * MB}, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if result.Counters.FilesSeen != 0 {
		t.Errorf("expected 0 files seen, got %d", result.Counters.FilesSeen)
	}

	if result.Counters.DirsSeen != 1 {
		t.Errorf("expected 1 dir seen (the root), got %d", result.Counters.DirsSeen)
	}

	if len(result.Files) != 0 {
		t.Errorf("expected no files, got %v", paths(result.Files))
	}
}

func TestScan_ZeroThresholdIncludesEmptyFiles(t *testing.T) {
	root := t.TempDir()

	writeSized(t, filepath.Join(root, "empty"), 0)
	writeSized(t, filepath.Join(root, "small"), 10)

	result, err := Scan(context.Background(), Options{Path: root}, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := []string{filepath.Join(root, "small"), filepath.Join(root, "empty")}
	if got := paths(result.Files); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestScan_ThresholdIsInclusive(t *testing.T) {
	root := t.TempDir()

	writeSized(t, filepath.Join(root, "exact"), 4096)
	writeSized(t, filepath.Join(root, "below"), 4095)

	result, err := Scan(context.Background(), Options{Path: root, MinSize: 4096}, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if got := paths(result.Files); !slices.Equal(got, []string{filepath.Join(root, "exact")}) {
		t.Errorf("expected only the exact-size file, got %v", got)
	}
}

func TestScan_CountersIndependentOfThreshold(t *testing.T) {
	root := createExampleTree(t)

	var baseline Counters

	for i, minSize := range []uint64{0, MB, 100 * MB, GB, 10 * TB} {
		result, err := Scan(context.Background(), Options{Path: root, MinSize: minSize}, nil)
		if err != nil {
			t.Fatalf("Scan(%d) failed: %v", minSize, err)
		}

		if i == 0 {
			baseline = result.Counters
		} else if result.Counters != baseline {
			t.Errorf("threshold %d: expected counters %+v, got %+v", minSize, baseline, result.Counters)
		}

		if result.Counters.FilesSeen < uint64(len(result.Files)) {
			t.Errorf("threshold %d: files seen %d below matches %d", minSize, result.Counters.FilesSeen, len(result.Files))
		}

		for _, f := range result.Files {
			if f.Size < minSize {
				t.Errorf("threshold %d: %s has size %d", minSize, f.Path, f.Size)
			}
		}
	}
}

func TestScan_IncludesHiddenEntries(t *testing.T) {
	root := t.TempDir()

	writeSized(t, filepath.Join(root, ".hidden"), 200)
	writeSized(t, filepath.Join(root, ".cache", "blob"), 300)

	result, err := Scan(context.Background(), Options{Path: root, MinSize: 100}, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := []string{filepath.Join(root, ".cache", "blob"), filepath.Join(root, ".hidden")}
	if got := paths(result.Files); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if result.Counters.DirsSeen != 2 {
		t.Errorf("expected 2 dirs seen, got %d", result.Counters.DirsSeen)
	}
}

func TestScan_DoesNotFollowSymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	writeSized(t, filepath.Join(outside, "big"), 1000)
	writeSized(t, filepath.Join(root, "local"), 1000)

	if err := os.Symlink(outside, filepath.Join(root, "link-dir")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	if err := os.Symlink(filepath.Join(root, "local"), filepath.Join(root, "link-file")); err != nil {
		t.Fatalf("creating file symlink: %v", err)
	}

	// cycle back to the root
	if err := os.Symlink(root, filepath.Join(root, "loop")); err != nil {
		t.Fatalf("creating loop symlink: %v", err)
	}

	result, err := Scan(context.Background(), Options{Path: root}, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if got := paths(result.Files); !slices.Equal(got, []string{filepath.Join(root, "local")}) {
		t.Errorf("expected only the local file, got %v", got)
	}

	if result.Counters.FilesSeen != 1 {
		t.Errorf("expected symlinks to be ignored by the file counter, got %d", result.Counters.FilesSeen)
	}

	if result.Counters.DirsSeen != 1 {
		t.Errorf("expected symlinks to be ignored by the dir counter, got %d", result.Counters.DirsSeen)
	}
}

func TestScan_MissingRootIsEmpty(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does-not-exist")

	result, err := Scan(context.Background(), Options{Path: root}, nil)
	if err != nil {
		t.Fatalf("expected no error for a missing root, got %v", err)
	}

	if result.Counters != (Counters{}) {
		t.Errorf("expected zero counters, got %+v", result.Counters)
	}

	if len(result.Files) != 0 {
		t.Errorf("expected no files, got %v", paths(result.Files))
	}
}

func TestScan_RootIsFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "single")
	writeSized(t, root, 2048)

	result, err := Scan(context.Background(), Options{Path: root, MinSize: KB}, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if result.Counters.FilesSeen != 1 || result.Counters.DirsSeen != 0 {
		t.Errorf("expected 1 file and 0 dirs, got %+v", result.Counters)
	}

	if got := paths(result.Files); !slices.Equal(got, []string{root}) {
		t.Errorf("expected [%s], got %v", root, got)
	}
}

func TestScan_UnreadableDirectoryIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}

	root := t.TempDir()
	locked := filepath.Join(root, "locked")

	writeSized(t, filepath.Join(locked, "secret"), 500)
	writeSized(t, filepath.Join(root, "open"), 500)

	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	result, err := Scan(context.Background(), Options{Path: root}, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if got := paths(result.Files); !slices.Equal(got, []string{filepath.Join(root, "open")}) {
		t.Errorf("expected only the readable file, got %v", got)
	}

	if result.Counters.Skipped == 0 {
		t.Error("expected the locked directory to be counted as skipped")
	}
}

func TestScan_Excludes(t *testing.T) {
	root := t.TempDir()

	writeSized(t, filepath.Join(root, "keep", "a"), 100)
	writeSized(t, filepath.Join(root, "node_modules", "b"), 100)
	writeSized(t, filepath.Join(root, "c.log"), 100)

	opts := Options{Path: root, Excludes: []string{`node_modules$`, `\.log$`}}

	result, err := Scan(context.Background(), opts, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if got := paths(result.Files); !slices.Equal(got, []string{filepath.Join(root, "keep", "a")}) {
		t.Errorf("expected only keep/a, got %v", got)
	}

	if result.Counters.FilesSeen != 1 || result.Counters.DirsSeen != 2 {
		t.Errorf("expected excluded entries to be uncounted, got %+v", result.Counters)
	}
}

func TestScan_InvalidExclude(t *testing.T) {
	_, err := Scan(context.Background(), Options{Path: t.TempDir(), Excludes: []string{"("}}, nil)
	if err == nil {
		t.Fatal("expected an error for an invalid pattern")
	}
}

func TestScan_Cancelled(t *testing.T) {
	root := createExampleTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, Options{Path: root}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestScan_Idempotent(t *testing.T) {
	root := createExampleTree(t)

	first, err := Scan(context.Background(), Options{Path: root, MinSize: MB}, nil)
	if err != nil {
		t.Fatalf("first scan failed: %v", err)
	}

	second, err := Scan(context.Background(), Options{Path: root, MinSize: MB}, nil)
	if err != nil {
		t.Fatalf("second scan failed: %v", err)
	}

	if !slices.Equal(first.Files, second.Files) {
		t.Errorf("expected equal results, got %v and %v", first.Files, second.Files)
	}
}

func TestScan_ConcurrentScansAreIndependent(t *testing.T) {
	small := t.TempDir()
	writeSized(t, filepath.Join(small, "only"), 10)

	large := createExampleTree(t)

	var (
		wg      sync.WaitGroup
		results [8]*Result
		errs    [8]error
	)

	for i := range results {
		root := small
		if i%2 == 1 {
			root = large
		}

		wg.Add(1)

		go func() {
			defer wg.Done()

			results[i], errs[i] = Scan(context.Background(), Options{Path: root, Workers: 2}, nil)
		}()
	}

	wg.Wait()

	for i, r := range results {
		if errs[i] != nil {
			t.Fatalf("scan %d failed: %v", i, errs[i])
		}

		wantFiles := uint64(1)
		if i%2 == 1 {
			wantFiles = 4
		}

		if r.Counters.FilesSeen != wantFiles {
			t.Errorf("scan %d: expected %d files seen, got %d", i, wantFiles, r.Counters.FilesSeen)
		}

		if uint64(len(r.Files)) != wantFiles {
			t.Errorf("scan %d: expected %d files, got %d", i, wantFiles, len(r.Files))
		}
	}
}

func TestCollector_StableTies(t *testing.T) {
	c := newCollector(0)
	c.files = []FileRecord{
		{Path: "first", Size: 10},
		{Path: "big", Size: 30},
		{Path: "second", Size: 10},
		{Path: "third", Size: 10},
		{Path: "mid", Size: 20},
	}

	files, _ := c.finalize()

	want := []string{"big", "mid", "first", "second", "third"}
	if got := paths(files); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestStartProgressReporter(t *testing.T) {
	c := newCollector(0)
	c.filesSeen.Add(3)
	c.dirsSeen.Add(2)
	c.matched.Add(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Progress, 1)

	startProgressReporter(ctx, c, func(p Progress) {
		select {
		case got <- p:
		default:
		}
	}, time.Millisecond)

	select {
	case p := <-got:
		want := Progress{Counters: Counters{FilesSeen: 3, DirsSeen: 2}, Matched: 1}
		if p != want {
			t.Errorf("expected %+v, got %+v", want, p)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("progress hook was never called")
	}
}
