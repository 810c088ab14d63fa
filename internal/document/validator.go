package document

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"pdfbinder/internal/common"
)

// Validator inspects PDF payloads for structural validity, password
// protection and descriptive metadata.
type Validator struct {
	logger *slog.Logger
	conf   *model.Configuration
}

// NewValidator creates a new validator instance
func NewValidator(logger *slog.Logger) *Validator {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Validator{
		logger: logger,
		conf:   conf,
	}
}

// Validate performs a full parse of file. It never returns an error; every
// failure mode is encoded in the outcome's Valid/Error fields.
func (v *Validator) Validate(file common.File) ValidationOutcome {
	ctx, err := api.ReadContext(bytes.NewReader(file.Data), v.conf)
	if err == nil {
		err = api.ValidateContext(ctx)
	}

	if err != nil {
		if isPasswordError(err) {
			v.logger.Info("document is password protected", "file", file.Name)
			return ValidationOutcome{
				Valid:            true,
				Encrypted:        true,
				PasswordRequired: true,
				Error:            "password protected",
			}
		}
		v.logger.Warn("document failed validation", "file", file.Name, "error", err)
		return ValidationOutcome{Error: err.Error()}
	}

	return ValidationOutcome{
		Valid:     true,
		PageCount: ctx.PageCount,
		Metadata:  readMetadata(ctx),
	}
}

// isPasswordError matches the codec's encryption/authentication failures.
func isPasswordError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"password", "encrypt", "authenticat"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// readMetadata extracts the Info dictionary best-effort. Missing or
// malformed entries are skipped, not errors.
func readMetadata(ctx *model.Context) *Metadata {
	if ctx.Info == nil {
		return nil
	}

	d, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil || d == nil {
		return nil
	}

	md := &Metadata{}
	if s := d.StringEntry("Title"); s != nil {
		md.Title = *s
	}
	if s := d.StringEntry("Author"); s != nil {
		md.Author = *s
	}
	if s := d.StringEntry("Subject"); s != nil {
		md.Subject = *s
	}
	if s := d.StringEntry("Keywords"); s != nil {
		md.Keywords = *s
	}

	if *md == (Metadata{}) {
		return nil
	}
	return md
}
