package common

const (
	// Media types accepted by the intake pipeline
	MediaTypePDF  = "application/pdf"
	MediaTypeJPEG = "image/jpeg"
	MediaTypePNG  = "image/png"

	// SizeBudgetBytes is the maximum post-compression total allowed across
	// all files in one merge.
	SizeBudgetBytes = 7 * 1024 * 1024

	// RecompressThresholdBytes is the size below which an image is embedded
	// as-is instead of being re-encoded.
	RecompressThresholdBytes = 500 * 1024

	// Compression constants
	MaxConcurrencyLimit = 8

	// File operation constants
	DefaultFilePermissions = 0755
)
