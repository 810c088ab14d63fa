package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfbinder/internal/common"
)

func pdfFile(name string, data []byte) common.File {
	return common.File{
		Name:      name,
		Data:      data,
		MediaType: common.MediaTypePDF,
		ModTime:   time.Now(),
	}
}

func TestValidateWellFormedPDF(t *testing.T) {
	v := NewValidator(testLogger())

	outcome := v.Validate(pdfFile("report.pdf", makePDF(t, 3, "Quarterly Report")))

	assert.True(t, outcome.Valid)
	assert.False(t, outcome.Encrypted)
	assert.False(t, outcome.PasswordRequired)
	assert.Equal(t, 3, outcome.PageCount)
	assert.Empty(t, outcome.Error)

	require.NotNil(t, outcome.Metadata)
	assert.Equal(t, "Quarterly Report", outcome.Metadata.Title)
}

func TestValidateMetadataIsOptional(t *testing.T) {
	v := NewValidator(testLogger())

	outcome := v.Validate(pdfFile("plain.pdf", makePDF(t, 1, "")))

	assert.True(t, outcome.Valid)
	assert.Equal(t, 1, outcome.PageCount)
	// Absence of individual metadata fields is tolerated, not an error.
	assert.Empty(t, outcome.Error)
}

func TestValidateMalformedPDF(t *testing.T) {
	v := NewValidator(testLogger())

	outcome := v.Validate(pdfFile("junk.pdf", []byte("this is not a pdf at all")))

	assert.False(t, outcome.Valid)
	assert.False(t, outcome.Encrypted)
	assert.False(t, outcome.PasswordRequired)
	assert.Zero(t, outcome.PageCount)
	assert.Nil(t, outcome.Metadata)
	assert.NotEmpty(t, outcome.Error)
}

func TestValidatePasswordProtectedPDF(t *testing.T) {
	v := NewValidator(testLogger())

	outcome := v.Validate(pdfFile("locked.pdf", makeProtectedPDF(t)))

	// A password-protected PDF is a real, well-formed document; it is
	// reported valid but flagged as requiring a password.
	assert.True(t, outcome.Valid)
	assert.True(t, outcome.Encrypted)
	assert.True(t, outcome.PasswordRequired)
	assert.Equal(t, "password protected", outcome.Error)
	assert.Zero(t, outcome.PageCount)
}

func TestIsPasswordError(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected bool
	}{
		{"password marker", "pdfcpu: please provide the correct password", true},
		{"encryption marker", "cannot decrypt: file is encrypted", true},
		{"authentication marker", "user authentication failed", true},
		{"plain parse failure", "xref table corrupt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isPasswordError(errMsg(tt.message)); got != tt.expected {
				t.Errorf("isPasswordError(%q) = %v, expected %v", tt.message, got, tt.expected)
			}
		})
	}
}

type errMsg string

func (e errMsg) Error() string { return string(e) }
