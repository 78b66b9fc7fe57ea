package fatcat

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// FileRecord is a single file that met the size threshold.
type FileRecord struct {
	// Path is the root-joined file path.
	Path string `json:"path"`
	// Size is the size in bytes at scan time.
	Size uint64 `json:"size"`
}

// Counters are the traversal totals of one scan.
type Counters struct {
	// FilesSeen is the number of regular files encountered, regardless of size.
	FilesSeen uint64 `json:"files_seen"`
	// DirsSeen is the number of directories encountered, the root included.
	DirsSeen uint64 `json:"dirs_seen"`
	// Skipped is the number of entries that could not be read.
	Skipped uint64 `json:"skipped"`
}

// Progress is a snapshot handed to the progress hook while a scan runs.
type Progress struct {
	Counters

	// Matched is the number of files collected so far.
	Matched uint64
}

// Result is the ranked outcome of one scan.
type Result struct {
	// Root is the scanned path.
	Root string `json:"root"`
	// MinSize is the threshold in force for this scan.
	MinSize uint64 `json:"min_size"`
	// Files holds every match, largest first.
	Files []FileRecord `json:"files"`
	// Counters holds the traversal totals.
	Counters Counters `json:"counters"`
	// Elapsed is the total time taken by the scan.
	Elapsed time.Duration `json:"elapsed"`
}

// Options configures a scan.
type Options struct {
	// Path is the root to scan.
	Path string
	// MinSize is the minimum file size in bytes. Zero matches every file.
	MinSize uint64
	// Excludes contains regex patterns to exclude.
	Excludes []string
	// Workers is the number of traversal goroutines (0 = walker default).
	Workers int
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Logger receives debug output; nil discards it.
	Logger *slog.Logger
}

// collector aggregates one scan's results from concurrent walk callbacks.
// Counters are atomic; appends to files are serialized by mu.
type collector struct {
	minSize uint64

	filesSeen atomic.Uint64
	dirsSeen  atomic.Uint64
	skipped   atomic.Uint64
	matched   atomic.Uint64

	mu    sync.Mutex
	files []FileRecord
}

func newCollector(minSize uint64) *collector {
	return &collector{
		minSize: minSize,
		files:   make([]FileRecord, 0),
	}
}

// add classifies a walked entry.
func (c *collector) add(e Entry) {
	switch e.Kind {
	case KindDir:
		c.dirsSeen.Add(1)
	case KindFile:
		c.filesSeen.Add(1)

		size, err := e.Size()
		if err != nil {
			c.skipped.Add(1)

			return
		}

		if size < c.minSize {
			return
		}

		c.mu.Lock()
		c.files = append(c.files, FileRecord{Path: e.Path, Size: size})
		c.mu.Unlock()
		c.matched.Add(1)
	case KindOther:
	}
}

func (c *collector) counters() Counters {
	return Counters{
		FilesSeen: c.filesSeen.Load(),
		DirsSeen:  c.dirsSeen.Load(),
		Skipped:   c.skipped.Load(),
	}
}

func (c *collector) progress() Progress {
	return Progress{Counters: c.counters(), Matched: c.matched.Load()}
}

// finalize ranks the collected files by size, largest first. Equal sizes
// keep their collection order.
func (c *collector) finalize() ([]FileRecord, Counters) {
	c.mu.Lock()
	defer c.mu.Unlock()

	slices.SortStableFunc(c.files, func(a, b FileRecord) int {
		return cmp.Compare(b.Size, a.Size)
	})

	return c.files, c.counters()
}

// startProgressReporter invokes hook on each tick until ctx is done.
//
//nolint:varnamelen // c is idiomatic for collector
func startProgressReporter(ctx context.Context, c *collector, hook func(Progress), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(c.progress())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Scan walks opt.Path and collects every regular file whose size is at
// least opt.MinSize, ranked largest first.
//
// A missing or unreadable root is not an error: it yields zero counters and
// no files. Use CheckRoot beforehand to tell the two apart. Scan fails only
// on an invalid exclusion pattern or when ctx is cancelled.
//
// Progress snapshots are sent to progressHook if provided. Every call owns
// its own counters, so concurrent scans do not interfere.
func Scan(ctx context.Context, opt Options, progressHook func(Progress)) (*Result, error) {
	log := opt.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	if opt.Path == "" {
		opt.Path = "."
	}

	excludeRegexes := make([]*regexp.Regexp, 0, len(opt.Excludes))

	for _, p := range opt.Excludes {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling exclusion pattern %q: %w", p, err)
		}

		excludeRegexes = append(excludeRegexes, re)
	}

	collector := newCollector(opt.MinSize)

	// Child context so the progress reporter stops with the scan.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startProgressReporter(ctx, collector, progressHook, opt.ProgressInterval)

	log.Debug("scan started", "path", opt.Path, "min_size", opt.MinSize, "excludes", len(excludeRegexes))

	start := time.Now()

	walkOpts := WalkOptions{
		Workers:  opt.Workers,
		Excludes: excludeRegexes,
		Logger:   log,
		OnSkip:   func(string, error) { collector.skipped.Add(1) },
	}

	if err := Walk(ctx, opt.Path, walkOpts, collector.add); err != nil {
		return nil, err
	}

	files, counters := collector.finalize()

	result := &Result{
		Root:     opt.Path,
		MinSize:  opt.MinSize,
		Files:    files,
		Counters: counters,
		Elapsed:  time.Since(start),
	}

	log.Debug("scan finished",
		"path", opt.Path,
		"files_seen", counters.FilesSeen,
		"dirs_seen", counters.DirsSeen,
		"skipped", counters.Skipped,
		"matched", len(files),
		"elapsed", result.Elapsed,
	)

	return result, nil
}
