package common

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// File is one user-supplied payload moving through the pipeline.
type File struct {
	Name      string    `json:"name"`
	Data      []byte    `json:"data"`
	MediaType string    `json:"media_type"`
	ModTime   time.Time `json:"mod_time"`
}

// Size returns the payload length in bytes.
func (f File) Size() int64 {
	return int64(len(f.Data))
}

// GenerateUUID generates a new UUID string
func GenerateUUID() string {
	return uuid.New().String()
}

// DetectMediaType returns the effective media type for a file, falling back
// to extension sniffing when the declared type is absent or unrecognized.
func DetectMediaType(name, declared string) string {
	switch declared {
	case MediaTypePDF, MediaTypeJPEG, MediaTypePNG:
		return declared
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MediaTypePDF
	case ".jpg", ".jpeg":
		return MediaTypeJPEG
	case ".png":
		return MediaTypePNG
	}

	return declared
}

// IsSupportedMediaType reports whether the pipeline accepts the media type.
func IsSupportedMediaType(mediaType string) bool {
	switch mediaType {
	case MediaTypePDF, MediaTypeJPEG, MediaTypePNG:
		return true
	}
	return false
}

// IsImageMediaType reports whether the media type is a supported raster type.
func IsImageMediaType(mediaType string) bool {
	return mediaType == MediaTypeJPEG || mediaType == MediaTypePNG
}

// FormatFileSize renders a byte count for log and error messages.
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMG"[exp])
}
