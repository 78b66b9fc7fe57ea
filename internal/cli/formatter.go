package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/idelchi/fatcat/internal/fatcat"
)

// Box colors.
const (
	colorRed     = lipgloss.Color("1")
	colorGreen   = lipgloss.Color("2")
	colorYellow  = lipgloss.Color("3")
	colorBlue    = lipgloss.Color("4")
	colorMagenta = lipgloss.Color("5")
	colorCyan    = lipgloss.Color("6")
)

// minBoxWidth is the narrowest content width of a box.
const minBoxWidth = 40

//nolint:gochecknoglobals // Shared text styles
var (
	dimmed = lipgloss.NewStyle().Faint(true)
	brand  = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	green  = lipgloss.NewStyle().Foreground(colorGreen)
	cyan   = lipgloss.NewStyle().Foreground(colorCyan)
)

// box draws lines inside a rounded border with the title set into the top edge.
func box(title string, lines []string, color lipgloss.Color) string {
	border := lipgloss.RoundedBorder()
	edge := lipgloss.NewStyle().Foreground(color)

	width := minBoxWidth
	for _, line := range lines {
		width = max(width, lipgloss.Width(line))
	}

	head := " " + title + " "
	fill := max(width+1-lipgloss.Width(head), 0)

	var b strings.Builder

	b.WriteString(edge.Render(border.TopLeft + border.Top))
	b.WriteString(edge.Bold(true).Render(head))
	b.WriteString(edge.Render(strings.Repeat(border.Top, fill) + border.TopRight))
	b.WriteString("\n")

	for _, line := range lines {
		pad := width - lipgloss.Width(line)
		b.WriteString(edge.Render(border.Left) + " " + line + strings.Repeat(" ", pad) + " " + edge.Render(border.Right))
		b.WriteString("\n")
	}

	b.WriteString(edge.Render(border.BottomLeft + strings.Repeat(border.Bottom, width+2) + border.BottomRight))
	b.WriteString("\n")

	return b.String()
}

// PrintHeader prints the banner and the scan parameters.
func PrintHeader(w io.Writer, version, target string, minSize uint64) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", brand.Render("fatcat"), dimmed.Render(version))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s    %s %s\n", dimmed.Render("Target:"), target, dimmed.Render("Min:"), fatcat.FormatSize(minSize))
	fmt.Fprintln(w)
}

// PrintDone prints the one-line scan summary.
func PrintDone(w io.Writer, elapsed time.Duration, report fatcat.Report) {
	fmt.Fprintf(w, "  %s %.2fs  %s %s  %s %s\n",
		green.Render("Done:"), elapsed.Seconds(),
		dimmed.Render("Scanned:"), humanize.Comma(int64(report.Counters.FilesSeen)), //nolint:gosec // File counts fit
		cyan.Render("Found:"), humanize.Comma(int64(report.Matched)),
	)
	fmt.Fprintln(w)
}

// PrintStatistics prints the verbose statistics box.
func PrintStatistics(w io.Writer, report fatcat.Report) {
	lines := []string{
		fmt.Sprintf("Dirs scanned    : %s", humanize.Comma(int64(report.Counters.DirsSeen))), //nolint:gosec // Dir counts fit
		fmt.Sprintf("Total size      : %s", fatcat.FormatSize(report.TotalSize)),
	}

	for _, b := range fatcat.Buckets() {
		lines = append(lines, fmt.Sprintf("%-16s: %d files", b, report.Distribution.Count(b)))
	}

	if report.Counters.Skipped > 0 {
		lines = append(lines, fmt.Sprintf("Skipped         : %d entries", report.Counters.Skipped))
	}

	fmt.Fprint(w, box("Statistics", lines, colorMagenta))
	fmt.Fprintln(w)
}

// PrintTable prints the top files box, or a notice when nothing matched.
func PrintTable(w io.Writer, report fatcat.Report) {
	if report.Matched == 0 {
		fmt.Fprint(w, box("Result", []string{"No files found matching criteria."}, colorYellow))
		fmt.Fprintln(w)

		return
	}

	lines := make([]string, 0, len(report.Top))
	for i, f := range report.Top {
		lines = append(lines, fmt.Sprintf("%3d. %10s  %s", i+1, fatcat.FormatSize(f.Size), f.Path))
	}

	fmt.Fprint(w, box(fmt.Sprintf("Top %d Files", len(report.Top)), lines, colorCyan))
	fmt.Fprintln(w)
}

// PrintPaths prints the top file paths, one per line.
func PrintPaths(w io.Writer, report fatcat.Report) error {
	for _, f := range report.Top {
		if _, err := fmt.Fprintln(w, f.Path); err != nil {
			return err
		}
	}

	return nil
}

// jsonFile is a ranked file in JSON output.
type jsonFile struct {
	Rank      int    `json:"rank"`
	Path      string `json:"path"`
	Size      uint64 `json:"size"`
	SizeHuman string `json:"size_human"`
}

// jsonReport is the JSON output document.
type jsonReport struct {
	Version        string              `json:"version"`
	Timestamp      string              `json:"timestamp"`
	Root           string              `json:"root"`
	MinSize        uint64              `json:"min_size"`
	ElapsedSeconds float64             `json:"elapsed_seconds"`
	Counters       fatcat.Counters     `json:"counters"`
	Matched        int                 `json:"matched"`
	TotalSize      uint64              `json:"total_size"`
	TotalSizeHuman string              `json:"total_size_human"`
	Distribution   fatcat.Distribution `json:"distribution"`
	Top            []jsonFile          `json:"top"`
}

// PrintJSON outputs the report in JSON format.
func PrintJSON(w io.Writer, version string, timestamp time.Time, result *fatcat.Result, report fatcat.Report) error {
	doc := jsonReport{
		Version:        version,
		Timestamp:      timestamp.Format(time.RFC3339),
		Root:           result.Root,
		MinSize:        result.MinSize,
		ElapsedSeconds: result.Elapsed.Seconds(),
		Counters:       report.Counters,
		Matched:        report.Matched,
		TotalSize:      report.TotalSize,
		TotalSizeHuman: fatcat.FormatSize(report.TotalSize),
		Distribution:   report.Distribution,
		Top:            make([]jsonFile, len(report.Top)),
	}

	for i, f := range report.Top {
		doc.Top[i] = jsonFile{Rank: i + 1, Path: f.Path, Size: f.Size, SizeHuman: fatcat.FormatSize(f.Size)}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintError prints err inside an error box. Usage errors are preceded by a usage hint.
func PrintError(w io.Writer, err error, usage bool) {
	fmt.Fprintln(w)

	if usage {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Usage: %s %s\n", brand.Render("fatcat"), dimmed.Render("[PATH] [OPTIONS]"))
		fmt.Fprintf(w, "Try '%s' for help.\n", green.Render("fatcat --help"))
		fmt.Fprintln(w)
	}

	fmt.Fprint(w, box("Error", []string{err.Error()}, colorRed))
	fmt.Fprintln(w)
}
