package document

import "fmt"

// Metadata holds descriptive PDF document information. All fields are
// best-effort; any of them may be empty.
type Metadata struct {
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Keywords string `json:"keywords,omitempty"`
}

// ValidationOutcome describes the result of inspecting one PDF.
//
// PasswordRequired is stronger than Encrypted: it also encodes that the
// document could not be read without a password. A password-protected PDF
// is reported valid; it is a well-formed document that merely cannot be
// opened without a secret.
type ValidationOutcome struct {
	Valid            bool      `json:"valid"`
	Encrypted        bool      `json:"encrypted"`
	PasswordRequired bool      `json:"password_required"`
	PageCount        int       `json:"page_count,omitempty"`
	Metadata         *Metadata `json:"metadata,omitempty"`
	Error            string    `json:"error,omitempty"`
}

// UnsupportedTypeError is returned when intake or assembly encounters a
// media type outside PDF/JPEG/PNG. Both are all-or-nothing, so one
// unsupported file aborts the whole call.
type UnsupportedTypeError struct {
	Name      string
	MediaType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported media type %q for file %s", e.MediaType, e.Name)
}
