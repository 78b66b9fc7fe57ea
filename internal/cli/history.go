package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/fatcat/internal/archive"
	"github.com/idelchi/fatcat/internal/fatcat"
)

func newHistoryCommand(f *flags, stdout io.Writer) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [SCAN-ID]",
		Short: "Show archived scans",
		Long: heredoc.Doc(`
			List scans stored with --archive, most recent first.
			With a SCAN-ID, show the ranked files of that scan.
		`),
		Example: heredoc.Doc(`
			fatcat history --archive ~/.local/share/fatcat/archive.db
			fatcat history 1b4e28ba-2fa1-11d2-883f-0016d3cca427 --limit 50
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *f)
			if err != nil {
				return &ExitError{Code: ExitUsage, Err: err}
			}

			dbPath := cfg.Archive.Path
			if cmd.Flags().Changed("archive") {
				dbPath = f.archive
			}

			if dbPath == "" {
				return exitErrorf(ExitUsage, "no archive configured: use --archive or archive.path")
			}

			store, err := archive.NewSQLiteStore(dbPath)
			if err != nil {
				return &ExitError{Code: ExitArchive, Err: err}
			}
			defer store.Close()

			ctx := cmd.Context()
			if err := store.Initialize(ctx); err != nil {
				return &ExitError{Code: ExitArchive, Err: err}
			}

			if len(args) == 1 {
				err = showScan(ctx, store, args[0], limit, stdout)
			} else {
				err = listScans(ctx, store, limit, stdout)
			}

			if err != nil {
				return &ExitError{Code: ExitArchive, Err: err}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&f.archive, "archive", "", "SQLite archive to read (default: archive.path from config)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of scans or files to show (0 = all)")

	return cmd
}

func listScans(ctx context.Context, store archive.Store, limit int, w io.Writer) error {
	scans, err := store.ListScans(ctx, limit)
	if err != nil {
		return err
	}

	if len(scans) == 0 {
		fmt.Fprintln(w, "No scans archived")

		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCAN ID\tSTARTED\tROOT\tMIN SIZE\tFOUND\tTOTAL\tELAPSED")

	for _, sc := range scans {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%.2fs\n",
			sc.ScanID,
			sc.StartedAt.Local().Format(time.DateTime),
			sc.Root,
			fatcat.FormatSize(sc.MinSize),
			sc.Matched,
			fatcat.FormatSize(sc.TotalSize),
			sc.Elapsed.Seconds(),
		)
	}

	return tw.Flush()
}

func showScan(ctx context.Context, store archive.Store, scanID string, limit int, w io.Writer) error {
	sc, err := store.GetScan(ctx, scanID)
	if err != nil {
		return err
	}

	if sc == nil {
		return fmt.Errorf("scan %q not found", scanID)
	}

	files, err := store.ScanFiles(ctx, scanID, limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Scan Target     : %s\n", sc.Root)
	fmt.Fprintf(w, "Started         : %s\n", sc.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "Min Size        : %s\n", fatcat.FormatSize(sc.MinSize))
	fmt.Fprintf(w, "Files Scanned   : %d\n", sc.Counters.FilesSeen)
	fmt.Fprintf(w, "Dirs Scanned    : %d\n", sc.Counters.DirsSeen)
	fmt.Fprintf(w, "Files Found     : %d\n", sc.Matched)
	fmt.Fprintf(w, "Total Size      : %s\n", fatcat.FormatSize(sc.TotalSize))

	for _, b := range fatcat.Buckets() {
		fmt.Fprintf(w, "%-16s: %d files\n", b, sc.Dist.Count(b))
	}

	fmt.Fprintln(w)

	for _, f := range files {
		fmt.Fprintf(w, "%5d. %12s  %s\n", f.Rank, fatcat.FormatSize(f.Size), f.Path)
	}

	return nil
}
