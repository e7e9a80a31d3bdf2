// Package service provides the business logic of the SkillBridge API.
package service

import (
	"errors"

	"github.com/skillbridge/skillbridge-api/internal/store"
)

var (
	// ErrNotFound reports a missing record or one owned by someone else.
	ErrNotFound = store.ErrNotFound

	ErrEmptyMessage       = errors.New("message is required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("user already exists with this email")
	ErrWrongPassword      = errors.New("password is incorrect")
	ErrSamePassword       = errors.New("new password must be different from current password")
	ErrUnsupportedFile    = errors.New("unsupported file type")
	ErrFileTooLarge       = errors.New("file too large")
	ErrEmptyFile          = errors.New("file is empty")
)

// FailureKind says which step of an analysis failed.
type FailureKind string

const (
	FailureExtraction  FailureKind = "extraction"
	FailureUnavailable FailureKind = "unavailable"
	FailureAnalyzer    FailureKind = "analyzer"
)

// AnalysisFailure is a failed analysis with a message fit for the user.
type AnalysisFailure struct {
	Kind        FailureKind
	Reason      string
	Message     string
	Suggestions []string
	Err         error
}

func (e *AnalysisFailure) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AnalysisFailure) Unwrap() error { return e.Err }
