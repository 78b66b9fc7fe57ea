package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/idelchi/fatcat/internal/fatcat"
)

// WriteLog writes the plain-text scan report. Every matched file is listed,
// not only the top N.
func WriteLog(writer io.Writer, timestamp time.Time, result *fatcat.Result, report fatcat.Report) error {
	w := bufio.NewWriter(writer)

	fmt.Fprintln(w, "FATCAT - Scan Report")
	fmt.Fprintln(w, "====================")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Timestamp       : %s\n", timestamp.Format(time.DateTime))
	fmt.Fprintf(w, "Scan Target     : %s\n", result.Root)
	fmt.Fprintf(w, "Min Size        : %s\n", fatcat.FormatSize(result.MinSize))
	fmt.Fprintf(w, "Files Scanned   : %d\n", report.Counters.FilesSeen)
	fmt.Fprintf(w, "Dirs Scanned    : %d\n", report.Counters.DirsSeen)
	fmt.Fprintf(w, "Files Found     : %d\n", report.Matched)
	fmt.Fprintf(w, "Elapsed Time    : %.2f sec\n", result.Elapsed.Seconds())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total Size      : %s\n", fatcat.FormatSize(report.TotalSize))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Size Distribution")
	fmt.Fprintln(w, "-----------------")

	for _, b := range fatcat.Buckets() {
		fmt.Fprintf(w, "%-16s: %d files\n", b, report.Distribution.Count(b))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "All Files (sorted by size)")
	fmt.Fprintln(w, "--------------------------")

	for i, f := range result.Files {
		fmt.Fprintf(w, "%5d. %12s  %s\n", i+1, fatcat.FormatSize(f.Size), f.Path)
	}

	return w.Flush()
}

// SaveLog writes the scan report to the file at path, replacing it.
func SaveLog(path string, timestamp time.Time, result *fatcat.Result, report fatcat.Report) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}

	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing log file: %w", cerr)
		}
	}()

	if err := WriteLog(file, timestamp, result, report); err != nil {
		return fmt.Errorf("writing log file: %w", err)
	}

	return nil
}
