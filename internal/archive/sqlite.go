package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/idelchi/fatcat/internal/fatcat"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates if needed) the archive database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()

		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()

		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Initialize creates the database schema.
func (s *SQLiteStore) Initialize(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS scans (
			scan_id TEXT PRIMARY KEY,
			root TEXT NOT NULL,
			min_size INTEGER NOT NULL,
			started_at DATETIME NOT NULL,
			elapsed_ns INTEGER NOT NULL,
			files_seen INTEGER NOT NULL,
			dirs_seen INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			matched INTEGER NOT NULL,
			total_size INTEGER NOT NULL,
			over_1gb INTEGER NOT NULL,
			from_500mb INTEGER NOT NULL,
			from_100mb INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS scan_files (
			scan_id TEXT NOT NULL,
			rank INTEGER NOT NULL,
			path TEXT NOT NULL,
			size INTEGER NOT NULL,
			PRIMARY KEY (scan_id, rank),
			FOREIGN KEY (scan_id) REFERENCES scans(scan_id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_scans_started_at ON scans(started_at);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// toInt64 clamps an unsigned value into SQLite's signed integer range.
func toInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(v)
}

// SaveScan stores a scan and its ranked files in a single transaction.
func (s *SQLiteStore) SaveScan(
	ctx context.Context,
	startedAt time.Time,
	result *fatcat.Result,
	report fatcat.Report,
) (string, error) {
	scanID := uuid.New().String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scans (scan_id, root, min_size, started_at, elapsed_ns, files_seen, dirs_seen, skipped,
		                    matched, total_size, over_1gb, from_500mb, from_100mb)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		scanID,
		result.Root,
		toInt64(result.MinSize),
		startedAt.UTC(),
		int64(result.Elapsed),
		toInt64(result.Counters.FilesSeen),
		toInt64(result.Counters.DirsSeen),
		toInt64(result.Counters.Skipped),
		report.Matched,
		toInt64(report.TotalSize),
		toInt64(report.Distribution.Over1GB),
		toInt64(report.Distribution.From500MB),
		toInt64(report.Distribution.From100MB),
	)
	if err != nil {
		return "", fmt.Errorf("inserting scan record: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO scan_files (scan_id, rank, path, size) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, f := range result.Files {
		if _, err := stmt.ExecContext(ctx, scanID, i+1, f.Path, toInt64(f.Size)); err != nil {
			return "", fmt.Errorf("inserting file %s: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing transaction: %w", err)
	}

	return scanID, nil
}

const scanColumns = `scan_id, root, min_size, started_at, elapsed_ns, files_seen, dirs_seen, skipped,
	matched, total_size, over_1gb, from_500mb, from_100mb`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (Scan, error) {
	var (
		sc                                 Scan
		minSize, elapsed, files, dirs, skp int64
		total, over1, from500, from100     int64
	)

	err := row.Scan(&sc.ScanID, &sc.Root, &minSize, &sc.StartedAt, &elapsed, &files, &dirs, &skp,
		&sc.Matched, &total, &over1, &from500, &from100)
	if err != nil {
		return Scan{}, err
	}

	sc.MinSize = uint64(minSize)
	sc.Elapsed = time.Duration(elapsed)
	sc.Counters = fatcat.Counters{FilesSeen: uint64(files), DirsSeen: uint64(dirs), Skipped: uint64(skp)}
	sc.TotalSize = uint64(total)
	sc.Dist = fatcat.Distribution{Over1GB: uint64(over1), From500MB: uint64(from500), From100MB: uint64(from100)}

	return sc, nil
}

// ListScans returns up to limit scans, most recent first. A non-positive limit returns all.
func (s *SQLiteStore) ListScans(ctx context.Context, limit int) ([]Scan, error) {
	query := `SELECT ` + scanColumns + ` FROM scans ORDER BY started_at DESC`
	args := []any{}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying scans: %w", err)
	}
	defer rows.Close()

	var scans []Scan

	for rows.Next() {
		sc, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		scans = append(scans, sc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return scans, nil
}

// GetScan returns the scan with the given ID, or nil if there is none.
func (s *SQLiteStore) GetScan(ctx context.Context, scanID string) (*Scan, error) {
	sc, err := scanRow(s.db.QueryRowContext(ctx, `SELECT `+scanColumns+` FROM scans WHERE scan_id = ?`, scanID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // Absence is not an error
	}

	if err != nil {
		return nil, fmt.Errorf("querying scan: %w", err)
	}

	return &sc, nil
}

// ScanFiles returns up to limit ranked files of a scan. A non-positive limit returns all.
func (s *SQLiteStore) ScanFiles(ctx context.Context, scanID string, limit int) ([]File, error) {
	query := `SELECT rank, path, size FROM scan_files WHERE scan_id = ? ORDER BY rank ASC`
	args := []any{scanID}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying scan files: %w", err)
	}
	defer rows.Close()

	var files []File

	for rows.Next() {
		var (
			f    File
			size int64
		)

		if err := rows.Scan(&f.Rank, &f.Path, &size); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		f.Size = uint64(size)
		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return files, nil
}
