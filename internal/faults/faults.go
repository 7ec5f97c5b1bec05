// Package faults defines the error taxonomy for the assessment pipeline.
//
// Raw failure text from the Gemini API, the filesystem, or the JSON recovery
// layer is mapped onto a fixed set of categories, each carrying a canned
// remediation checklist and a default fatality. Classification is best-effort
// substring matching; the ordered table in classify.go is checked top to
// bottom and the first match wins.
package faults

import "strings"

// Category is one entry in the failure taxonomy.
type Category int

const (
	Unknown Category = iota
	Unauthorized
	Forbidden
	NotFound
	Timeout
	FileAccess
	MalformedResponse
	UploadFailed
	QuotaExceeded
)

// String returns the human-readable category name used in logs and reports.
func (c Category) String() string {
	switch c {
	case Unauthorized:
		return "Unauthorized"
	case Forbidden:
		return "Forbidden"
	case NotFound:
		return "NotFound"
	case Timeout:
		return "Timeout"
	case FileAccess:
		return "FileAccess"
	case MalformedResponse:
		return "MalformedResponse"
	case UploadFailed:
		return "UploadFailed"
	case QuotaExceeded:
		return "QuotaExceeded"
	default:
		return "Unknown"
	}
}

// DefaultFatal reports whether failures in this category abandon the
// assessment by default. Call sites may override per Failure: a malformed
// reply after generation is retryable, a missing input file never is.
func (c Category) DefaultFatal() bool {
	switch c {
	case Unauthorized, Forbidden, NotFound, FileAccess, UploadFailed:
		return true
	default:
		return false
	}
}

// Failure is the typed error every pipeline step returns instead of raising.
type Failure struct {
	Category Category
	Title    string // short human heading, e.g. "Video Upload Failed"
	Message  string // detailed cause
	Fatal    bool
}

func (f *Failure) Error() string {
	if f.Title != "" {
		return f.Title + ": " + f.Message
	}
	return f.Message
}

// New builds a Failure with the category's default fatality.
func New(cat Category, title, message string) *Failure {
	return &Failure{Category: cat, Title: title, Message: message, Fatal: cat.DefaultFatal()}
}

// AsFatal marks the failure fatal regardless of the category default.
func (f *Failure) AsFatal() *Failure {
	f.Fatal = true
	return f
}

// AsRecoverable marks the failure non-fatal regardless of the category default.
func (f *Failure) AsRecoverable() *Failure {
	f.Fatal = false
	return f
}

// Format renders the full user-facing message: heading, details, fatality
// banner, then the category's remediation checklist.
func (f *Failure) Format() string {
	var sb strings.Builder
	sb.WriteString(f.Title)
	sb.WriteString("\n\nDetails: ")
	sb.WriteString(f.Message)
	sb.WriteString("\n\n")
	if f.Fatal {
		sb.WriteString("FATAL ERROR: This assessment cannot be completed.\n\n")
	} else {
		sb.WriteString("This error may be recoverable. Please try the steps below.\n\n")
	}
	sb.WriteString(f.Category.Remediation())
	return sb.String()
}

// Summary is the one-line form used in batch outcome listings.
func (f *Failure) Summary() string {
	if f.Title != "" {
		return f.Title
	}
	msg := f.Message
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	if len(msg) > 50 {
		msg = msg[:50]
	}
	return msg
}
