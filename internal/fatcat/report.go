package fatcat

// Report is the display and logging view of a scan.
type Report struct {
	// Top is the first N files of the ranking.
	Top []FileRecord `json:"top"`
	// Matched is the number of files in the full result.
	Matched int `json:"matched"`
	// TotalSize is the sum of all matched file sizes, not only Top.
	TotalSize uint64 `json:"total_size"`
	// Distribution buckets all matched files.
	Distribution Distribution `json:"distribution"`
	// Counters are passed through from the scan.
	Counters Counters `json:"counters"`
}

// BuildReport derives the report view from a scan result. Top is a prefix
// of result.Files sharing its backing array; it must not be appended to.
// A nil result yields an empty report.
func BuildReport(result *Result, topN uint) Report {
	if result == nil {
		return Report{Top: []FileRecord{}}
	}

	files := result.Files

	n := len(files)
	if uint64(topN) < uint64(n) {
		n = int(topN)
	}

	report := Report{
		Top:      files[:n:n],
		Matched:  len(files),
		Counters: result.Counters,
	}

	for _, f := range files {
		report.TotalSize += f.Size
		report.Distribution.Add(f.Size)
	}

	return report
}
