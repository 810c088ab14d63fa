package recompress

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/disintegration/imaging"

	"pdfbinder/internal/common"
)

// Recompressor re-encodes raster images under a quality/size budget.
// Results are cached for the lifetime of the instance, keyed by the
// file's name, size and modification time.
type Recompressor struct {
	logger *slog.Logger
	cache  *resultCache
}

// NewRecompressor creates a new recompressor instance
func NewRecompressor(logger *slog.Logger) *Recompressor {
	return &Recompressor{
		logger: logger,
		cache:  newResultCache(),
	}
}

// Recompress re-encodes file and returns the outcome. Files below the
// size threshold are returned unchanged and count as success. Non-image
// inputs are not rejected; callers are expected to pass raster types only.
func (r *Recompressor) Recompress(ctx context.Context, file common.File, options *Options, onProgress ProgressFunc) (Outcome, error) {
	report := monotonicProgress(onProgress)

	if err := ctx.Err(); err != nil {
		return Outcome{}, fmt.Errorf("recompression of %s aborted: %w", file.Name, err)
	}

	key := keyFor(file)
	if outcome, ok := r.cache.get(key); ok {
		r.logger.Debug("recompression cache hit", "file", file.Name, "size", file.Size())
		report(100)
		return outcome, nil
	}

	opts := DefaultOptions()
	if options != nil {
		opts = *options
	}
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = DefaultOptions().MaxDimension
	}
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = DefaultOptions().JPEGQuality
	}

	if file.Size() < common.RecompressThresholdBytes {
		outcome := passThrough(file)
		r.cache.put(key, outcome)
		report(100)
		return outcome, nil
	}

	report(10)

	// The effective type decides the output container; the declared type
	// may be absent or wrong and is corrected by extension sniffing.
	mediaType := common.DetectMediaType(file.Name, file.MediaType)

	img, err := imaging.Decode(bytes.NewReader(file.Data), imaging.AutoOrientation(true))
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to decode image %s: %w", file.Name, err)
	}
	report(40)

	bounds := img.Bounds()
	if bounds.Dx() > opts.MaxDimension || bounds.Dy() > opts.MaxDimension {
		img = imaging.Fit(img, opts.MaxDimension, opts.MaxDimension, imaging.Lanczos)
	}
	report(60)

	var buf bytes.Buffer
	switch mediaType {
	case common.MediaTypePNG:
		err = imaging.Encode(&buf, img, imaging.PNG)
	default:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(opts.JPEGQuality))
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to encode image %s: %w", file.Name, err)
	}

	// One retry at a harsher quality when the advisory target is missed.
	if opts.TargetBytes > 0 && int64(buf.Len()) > opts.TargetBytes &&
		mediaType != common.MediaTypePNG && opts.JPEGQuality > 30 {
		var retry bytes.Buffer
		if err := imaging.Encode(&retry, img, imaging.JPEG, imaging.JPEGQuality(opts.JPEGQuality/2)); err == nil && retry.Len() < buf.Len() {
			buf = retry
		}
	}
	report(90)

	result := file
	result.MediaType = mediaType
	if int64(buf.Len()) < file.Size() {
		result.Data = buf.Bytes()
	}

	outcome := Outcome{
		OriginalSizeBytes:   file.Size(),
		CompressedSizeBytes: result.Size(),
		Ratio:               ratio(file.Size(), result.Size()),
		ResultFile:          result,
	}
	r.cache.put(key, outcome)

	r.logger.Info("recompressed image",
		"file", file.Name,
		"original", common.FormatFileSize(outcome.OriginalSizeBytes),
		"compressed", common.FormatFileSize(outcome.CompressedSizeBytes),
	)

	report(100)
	return outcome, nil
}

// CachedResults returns the number of outcomes held by the cache.
func (r *Recompressor) CachedResults() int {
	return r.cache.size()
}

func passThrough(file common.File) Outcome {
	return Outcome{
		OriginalSizeBytes:   file.Size(),
		CompressedSizeBytes: file.Size(),
		Ratio:               0,
		ResultFile:          file,
	}
}

func ratio(original, compressed int64) float64 {
	if original == 0 {
		return 0
	}
	return float64(original-compressed) / float64(original)
}

// monotonicProgress wraps a progress callback so reported values never
// decrease and stay within [0,100].
func monotonicProgress(onProgress ProgressFunc) ProgressFunc {
	if onProgress == nil {
		return func(int) {}
	}
	last := -1
	return func(percent int) {
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		if percent <= last {
			return
		}
		last = percent
		onProgress(percent)
	}
}
