package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/idelchi/fatcat/internal/archive"
	"github.com/idelchi/fatcat/internal/fatcat"
)

//nolint:funlen // Linear sequence of output steps
func logic(ctx context.Context, version string, s settings, stdout, stderr io.Writer) error {
	log := setupLogger(s.logLevel, s.logFormat, stderr)

	if err := fatcat.CheckRoot(s.path); err != nil {
		return &ExitError{Code: ExitRoot, Err: err}
	}

	table := s.format == "table"

	if table {
		PrintHeader(stdout, version, s.path, s.minSize)
	}

	enableProgress := table && !s.debug && isTerminal(stderr)

	var (
		progressHook func(fatcat.Progress)
		sp           *spinner
	)

	if enableProgress {
		sp = startSpinner(stderr)
		progressHook = sp.Update
	}

	startedAt := time.Now()

	result, err := fatcat.Scan(ctx, fatcat.Options{
		Path:     s.path,
		MinSize:  s.minSize,
		Excludes: s.excludes,
		Workers:  s.workers,
		Logger:   log,
	}, progressHook)

	if sp != nil {
		sp.Stop()
	}

	if err != nil {
		return fmt.Errorf("scanning %s: %w", s.path, err)
	}

	report := fatcat.BuildReport(result, s.top)

	switch s.format {
	case "json":
		if err := PrintJSON(stdout, version, startedAt, result, report); err != nil {
			return err
		}
	case "paths":
		if err := PrintPaths(stdout, report); err != nil {
			return err
		}
	default:
		PrintDone(stdout, result.Elapsed, report)

		if s.verbose {
			PrintStatistics(stdout, report)
		}

		PrintTable(stdout, report)
	}

	// notices go to stdout only when stdout carries the human-readable output
	notices := stderr
	if table {
		notices = stdout
	}

	if s.logFile != "" {
		if err := SaveLog(s.logFile, startedAt, result, report); err != nil {
			return &ExitError{Code: ExitLog, Err: err}
		}

		fmt.Fprintf(notices, "  %s %s\n\n", green.Render("Log saved:"), s.logFile)
	}

	if s.archive != "" {
		scanID, err := saveArchive(ctx, s.archive, startedAt, result, report)
		if err != nil {
			return &ExitError{Code: ExitArchive, Err: err}
		}

		log.Info("scan archived", "db", s.archive, "scan_id", scanID)
		fmt.Fprintf(notices, "  %s %s\n\n", green.Render("Archived:"), scanID)
	}

	return nil
}

// saveArchive stores the scan in the SQLite archive at dbPath.
func saveArchive(
	ctx context.Context,
	dbPath string,
	startedAt time.Time,
	result *fatcat.Result,
	report fatcat.Report,
) (string, error) {
	store, err := archive.NewSQLiteStore(dbPath)
	if err != nil {
		return "", fmt.Errorf("opening archive: %w", err)
	}
	defer store.Close()

	if err := store.Initialize(ctx); err != nil {
		return "", fmt.Errorf("initializing archive: %w", err)
	}

	scanID, err := store.SaveScan(ctx, startedAt, result, report)
	if err != nil {
		return "", fmt.Errorf("archiving scan: %w", err)
	}

	return scanID, nil
}
