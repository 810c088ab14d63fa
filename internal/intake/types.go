package intake

import (
	"context"

	"pdfbinder/internal/common"
	"pdfbinder/internal/document"
	"pdfbinder/internal/recompress"
)

// EntryState tracks one entry through the intake state machine.
//
// Every entry starts Unprocessed, passes through Compressing exactly once
// and reaches exactly one terminal state. Non-image files skip the real
// work but still pass through Compressing.
type EntryState string

const (
	StateUnprocessed EntryState = "unprocessed"
	StateCompressing EntryState = "compressing"
	StateCompressed  EntryState = "compressed"
	StateFailed      EntryState = "failed"
)

// Terminal reports whether the state is final.
func (s EntryState) Terminal() bool {
	return s == StateCompressed || s == StateFailed
}

// ManagedEntry is one user-added file under orchestration.
type ManagedEntry struct {
	ID         string      `json:"id"`
	SourceFile common.File `json:"source_file"`
	State      EntryState  `json:"state"`

	// DerivedFile is set only when recompression actually changed the
	// bytes; consumers fall back to SourceFile.
	DerivedFile *common.File `json:"derived_file,omitempty"`

	// Progress is 0-100 and only meaningful while Compressing.
	Progress int `json:"progress"`

	FailureReason string `json:"failure_reason,omitempty"`
}

// EffectiveFile returns the bytes a merge should use for this entry.
func (e ManagedEntry) EffectiveFile() common.File {
	if e.DerivedFile != nil {
		return *e.DerivedFile
	}
	return e.SourceFile
}

// MergePlan is the outcome of a successful PrepareForMerge call.
type MergePlan struct {
	Files       []common.File                         `json:"files"`
	Validations map[string]document.ValidationOutcome `json:"validations"`
	TotalBytes  int64                                 `json:"total_bytes"`
}

// ImageCompressor re-encodes raster images under a size budget.
type ImageCompressor interface {
	Recompress(ctx context.Context, file common.File, options *recompress.Options, onProgress recompress.ProgressFunc) (recompress.Outcome, error)
}

// DocumentValidator inspects PDF payloads.
type DocumentValidator interface {
	Validate(file common.File) document.ValidationOutcome
}

// DocumentAssembler concatenates prepared files into one document.
type DocumentAssembler interface {
	Assemble(files []common.File) ([]byte, error)
}

// MergeRecorder receives the outcome of every successful merge.
type MergeRecorder interface {
	RecordMerge(fileCount int, inputBytes, outputBytes int64) error
}
