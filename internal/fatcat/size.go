package fatcat

import "fmt"

// Binary units used by FormatSize.
const (
	KB uint64 = 1024
	MB        = KB * 1024
	GB        = MB * 1024
	TB        = GB * 1024
)

// Bucket edges for the size distribution.
const (
	// Bucket1GBEdge is the lower edge of the ">= 1 GB" bucket (1 GiB).
	Bucket1GBEdge uint64 = 1_073_741_824
	// Bucket500MBEdge is the lower edge of the "500 MB - 1 GB" bucket.
	Bucket500MBEdge uint64 = 524_288_000
	// Bucket100MBEdge is the lower edge of the "100 MB - 500 MB" bucket.
	Bucket100MBEdge uint64 = 104_857_600
)

// FormatSize renders bytes with two decimals in the largest unit that fits.
func FormatSize(bytes uint64) string {
	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.2f TB", float64(bytes)/float64(TB))
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// Bucket is a named size range of the distribution summary.
type Bucket int

const (
	// BucketNone holds everything below Bucket100MBEdge.
	BucketNone Bucket = iota
	// Bucket100MB is [100 MB, 500 MB).
	Bucket100MB
	// Bucket500MB is [500 MB, 1 GB).
	Bucket500MB
	// Bucket1GB is [1 GB, ∞).
	Bucket1GB
)

// String returns the label used in reports.
func (b Bucket) String() string {
	switch b {
	case Bucket1GB:
		return ">= 1 GB"
	case Bucket500MB:
		return "500 MB - 1 GB"
	case Bucket100MB:
		return "100 MB - 500 MB"
	default:
		return "< 100 MB"
	}
}

// Classify returns the bucket a size falls into.
func Classify(size uint64) Bucket {
	switch {
	case size >= Bucket1GBEdge:
		return Bucket1GB
	case size >= Bucket500MBEdge:
		return Bucket500MB
	case size >= Bucket100MBEdge:
		return Bucket100MB
	default:
		return BucketNone
	}
}

// Distribution counts files per bucket. Files below Bucket100MBEdge are not counted.
type Distribution struct {
	// Over1GB counts files in [1 GB, ∞).
	Over1GB uint64 `json:"over_1gb"`
	// From500MB counts files in [500 MB, 1 GB).
	From500MB uint64 `json:"from_500mb_to_1gb"`
	// From100MB counts files in [100 MB, 500 MB).
	From100MB uint64 `json:"from_100mb_to_500mb"`
}

// Add records a single file size.
func (d *Distribution) Add(size uint64) {
	switch Classify(size) {
	case Bucket1GB:
		d.Over1GB++
	case Bucket500MB:
		d.From500MB++
	case Bucket100MB:
		d.From100MB++
	case BucketNone:
	}
}

// Count returns the number of files recorded in bucket b.
func (d Distribution) Count(b Bucket) uint64 {
	switch b {
	case Bucket1GB:
		return d.Over1GB
	case Bucket500MB:
		return d.From500MB
	case Bucket100MB:
		return d.From100MB
	default:
		return 0
	}
}

// Buckets lists the reported buckets from largest to smallest.
func Buckets() []Bucket {
	return []Bucket{Bucket1GB, Bucket500MB, Bucket100MB}
}
