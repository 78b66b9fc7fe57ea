package fatcat

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/charlievieth/fastwalk"
)

// Kind tags a walked entry.
type Kind int

const (
	// KindOther covers symlinks, devices, sockets and pipes.
	KindOther Kind = iota
	// KindFile is a regular file.
	KindFile
	// KindDir is a directory.
	KindDir
)

// Entry is a single node visited by Walk.
type Entry struct {
	// Path is the root-joined path of the entry.
	Path string
	// Kind tags the entry as file, directory or other.
	Kind Kind

	dirent fs.DirEntry
}

// newEntry classifies a directory entry without following symlinks.
func newEntry(path string, d fs.DirEntry) Entry {
	kind := KindOther

	switch t := d.Type(); {
	case t.IsDir():
		kind = KindDir
	case t.IsRegular():
		kind = KindFile
	}

	return Entry{Path: path, Kind: kind, dirent: d}
}

// Size looks up the entry's size. It fails for entries whose metadata
// can no longer be read.
func (e Entry) Size() (uint64, error) {
	info, err := e.dirent.Info()
	if err != nil {
		return 0, err
	}

	size := info.Size()
	if size < 0 {
		size = 0
	}

	return uint64(size), nil
}

// WalkOptions configures Walk.
type WalkOptions struct {
	// Workers is the number of traversal goroutines (0 = fastwalk default).
	Workers int
	// Excludes are matched against the slash-separated path of every entry below the root.
	Excludes []*regexp.Regexp
	// Logger receives debug output for skipped and excluded entries.
	Logger *slog.Logger
	// OnSkip is called for every entry that errored during traversal.
	OnSkip func(path string, err error)
}

// shouldExcludeByPattern checks if path matches any exclusion regex.
func shouldExcludeByPattern(path string, patterns []*regexp.Regexp) *regexp.Regexp {
	if len(patterns) == 0 {
		return nil
	}

	fPath := filepath.ToSlash(path)

	for _, re := range patterns {
		if re.MatchString(fPath) {
			return re
		}
	}

	return nil
}

// Walk traverses the tree under root and calls fn for every entry,
// the root included. Symbolic links are reported as KindOther and never
// descended into. Hidden entries are included.
//
// fn is called concurrently from multiple goroutines and must be safe for that.
// Entries that cannot be read are skipped. An unreadable or missing root
// produces no entries and no error; the only error returned is ctx.Err()
// after cancellation.
func Walk(ctx context.Context, root string, opt WalkOptions, fn func(Entry)) error {
	log := opt.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	skip := func(path string, err error) {
		log.Debug("skipping entry", "path", path, "error", err)

		if opt.OnSkip != nil {
			opt.OnSkip(path, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	root = filepath.Clean(root)

	info, err := os.Stat(root)
	if err != nil {
		log.Debug("root not accessible", "path", root, "error", err)

		return nil
	}

	fn(newEntry(root, fs.FileInfoToDirEntry(info)))

	if !info.IsDir() {
		return nil
	}

	conf := &fastwalk.Config{
		Follow:     false,
		NumWorkers: opt.Workers,
	}

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			skip(path, err)

			return nil
		}

		if path == root || filepath.Clean(path) == root {
			// reported above
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if re := shouldExcludeByPattern(path, opt.Excludes); re != nil {
			log.Debug("excluding entry", "path", filepath.ToSlash(path), "pattern", re.String())

			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		fn(newEntry(path, d))

		return nil
	})
	if walkErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// fastwalk only fails up front on the root, which was readable a moment ago
		log.Debug("walk aborted", "path", root, "error", walkErr)
	}

	return nil
}
