package extract

import (
	"errors"
	"fmt"
)

// Reason classifies an extraction failure.
type Reason string

const (
	ReasonCorrupted           Reason = "corrupted"
	ReasonPasswordProtected   Reason = "password_protected"
	ReasonImageOnly           Reason = "image_only"
	ReasonNotAResume          Reason = "not_a_resume"
	ReasonTooLarge            Reason = "too_large"
	ReasonUnsupportedType     Reason = "unsupported_type"
	ReasonInsufficientContent Reason = "insufficient_content"
	ReasonUnknown             Reason = "unknown"
)

// SupportedFormats names the accepted upload formats for user messages.
const SupportedFormats = "PDF, DOCX, TXT, HTML or Markdown"

var userMessages = map[Reason]string{
	ReasonCorrupted:           "The file appears to be corrupted or has an invalid structure. Please try uploading a different copy of your resume.",
	ReasonPasswordProtected:   "The document is password protected. Please remove the password and try again.",
	ReasonImageOnly:           "The file appears to be a scanned document or image. Please upload a text-based document or convert scanned pages to text.",
	ReasonNotAResume:          "The uploaded file does not appear to be a resume. Please upload a valid resume document.",
	ReasonTooLarge:            "The file is too large. Please upload a smaller file.",
	ReasonUnsupportedType:     "Unsupported file format. Please upload a " + SupportedFormats + " file.",
	ReasonInsufficientContent: "The document contains too little text to analyze. Please ensure it is a text-based resume.",
}

const defaultUserMessage = "Resume analysis failed. Please check your file and try again."

var suggestions = []string{
	"Ensure the file is not corrupted",
	"Convert scanned documents to text-based files",
	"Remove any password protection",
	"Use a standard resume format (" + SupportedFormats + ")",
	"Ensure the document contains sufficient text content",
}

// Error is an extraction failure with a user-facing reason.
type Error struct {
	Reason Reason
	Err    error
	// Limit is the size limit in bytes that a ReasonTooLarge failure hit.
	Limit int64
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("extract: %s", e.Reason)
	}
	return fmt.Sprintf("extract: %s: %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage is the message shown to the uploader.
func (e *Error) UserMessage() string {
	if e.Reason == ReasonTooLarge && e.Limit > 0 {
		return fmt.Sprintf("The file is too large. Please upload a file no larger than %s.", FormatSize(e.Limit))
	}
	return MessageFor(e.Reason)
}

// UserMessageOf returns the user-facing message for err.
func UserMessageOf(err error) string {
	var xe *Error
	if errors.As(err, &xe) {
		return xe.UserMessage()
	}
	return defaultUserMessage
}

// FormatSize renders n bytes as whole MB or KB.
func FormatSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%dKB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// MessageFor returns the user-facing message for reason.
func MessageFor(reason Reason) string {
	if msg, ok := userMessages[reason]; ok {
		return msg
	}
	return defaultUserMessage
}

// ReasonOf returns the reason carried by err, or ReasonUnknown.
func ReasonOf(err error) Reason {
	var xe *Error
	if errors.As(err, &xe) {
		return xe.Reason
	}
	return ReasonUnknown
}

// Suggestions lists generic fixes for a failed extraction.
func Suggestions() []string {
	return append([]string(nil), suggestions...)
}
