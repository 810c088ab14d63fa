package intake

import (
	"errors"
	"fmt"
	"strings"

	"pdfbinder/internal/common"
)

// Intake error types
var (
	ErrNoFiles             = errors.New("no files provided")
	ErrCompressionInFlight = errors.New("compression still in progress")
)

// PasswordProtectedError aggregates every password-protected file found
// during PrepareForMerge. One protected PDF blocks the whole merge.
type PasswordProtectedError struct {
	Files []string
}

func (e *PasswordProtectedError) Error() string {
	return fmt.Sprintf("password protected files cannot be merged: %s", strings.Join(e.Files, ", "))
}

// ValidationError reports the first file that failed PDF validation.
type ValidationError struct {
	File   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("file %s is not a valid PDF: %s", e.File, e.Reason)
}

// BudgetExceededError reports a post-compression total above the limit.
type BudgetExceededError struct {
	TotalBytes int64
	LimitBytes int64
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("combined file size %s exceeds the allowed %s",
		common.FormatFileSize(e.TotalBytes), common.FormatFileSize(e.LimitBytes))
}

// MergeError wraps an assembler failure
type MergeError struct {
	Err error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("failed to assemble output document: %v", e.Err)
}

func (e *MergeError) Unwrap() error {
	return e.Err
}
