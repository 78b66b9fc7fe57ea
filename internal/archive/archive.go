// Package archive persists finished scan reports to SQLite.
//
// The archive is an output sink: scans never read it back.
package archive

import (
	"context"
	"time"

	"github.com/idelchi/fatcat/internal/fatcat"
)

// Scan is one archived scan run.
type Scan struct {
	ScanID    string
	Root      string
	MinSize   uint64
	StartedAt time.Time
	Elapsed   time.Duration
	Counters  fatcat.Counters
	Matched   int
	TotalSize uint64
	Dist      fatcat.Distribution
}

// File is one ranked file of an archived scan.
type File struct {
	Rank int
	Path string
	Size uint64
}

// Store defines the interface for persisting scan reports.
type Store interface {
	// Initialize prepares the storage (creates tables, etc.).
	Initialize(ctx context.Context) error

	// Close releases any resources held by the storage.
	Close() error

	// SaveScan stores a scan and all of its ranked files, returning the new scan ID.
	SaveScan(ctx context.Context, startedAt time.Time, result *fatcat.Result, report fatcat.Report) (string, error)

	// ListScans returns the most recent scans first.
	ListScans(ctx context.Context, limit int) ([]Scan, error)

	// GetScan returns a single scan, or nil if it does not exist.
	GetScan(ctx context.Context, scanID string) (*Scan, error)

	// ScanFiles returns the ranked files of a scan, largest first.
	ScanFiles(ctx context.Context, scanID string, limit int) ([]File, error)
}
