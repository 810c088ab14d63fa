package recompress

import "pdfbinder/internal/common"

// Options holds the quality/size budget for one re-encode
type Options struct {
	MaxDimension int   `json:"max_dimension"`
	JPEGQuality  int   `json:"jpeg_quality"`
	TargetBytes  int64 `json:"target_bytes"`
}

// DefaultOptions returns the default recompression budget
func DefaultOptions() Options {
	return Options{
		MaxDimension: 1200,
		JPEGQuality:  60,
		TargetBytes:  512 * 1024,
	}
}

// Outcome describes the result of recompressing one image
type Outcome struct {
	OriginalSizeBytes   int64       `json:"original_size_bytes"`
	CompressedSizeBytes int64       `json:"compressed_size_bytes"`
	Ratio               float64     `json:"ratio"`
	ResultFile          common.File `json:"result_file"`
}

// ProgressFunc receives fractional progress in [0,100]. Reported values are
// monotonically non-decreasing.
type ProgressFunc func(percent int)
