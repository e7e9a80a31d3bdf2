// Package extract turns uploaded resume files into plain text and checks
// that the text looks like a resume.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Supported MIME types.
const (
	MIMEPDF      = "application/pdf"
	MIMEDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEText     = "text/plain"
	MIMEHTML     = "text/html"
	MIMEMarkdown = "text/markdown"
)

// Defaults applied by New.
const (
	DefaultMaxBytes    = 10 << 20
	DefaultMinChars    = 50
	DefaultMinKeywords = 2
)

var resumeKeywords = []string{
	"experience", "education", "skills", "work", "job", "position",
	"university", "college", "degree", "certification", "project",
	"responsibilities", "achievements", "employment", "career",
}

// Func extracts text from the raw bytes of one document format.
type Func func(data []byte) (string, error)

// Extractor dispatches documents to a Func by MIME type.
type Extractor struct {
	maxBytes    int64
	minChars    int
	minKeywords int
	funcs       map[string]Func
}

// New returns an extractor for PDF, DOCX, plain text, HTML and Markdown.
// A maxBytes of zero or less uses DefaultMaxBytes.
func New(maxBytes int64) *Extractor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Extractor{
		maxBytes:    maxBytes,
		minChars:    DefaultMinChars,
		minKeywords: DefaultMinKeywords,
		funcs: map[string]Func{
			MIMEPDF:      extractPDF,
			MIMEDOCX:     extractDOCX,
			MIMEText:     extractText,
			MIMEHTML:     extractHTML,
			MIMEMarkdown: extractMarkdown,
		},
	}
}

// WithValidation overrides the minimum length and keyword count Validate
// enforces. Non-positive values keep the current setting.
func (e *Extractor) WithValidation(minChars, minKeywords int) *Extractor {
	if minChars > 0 {
		e.minChars = minChars
	}
	if minKeywords > 0 {
		e.minKeywords = minKeywords
	}
	return e
}

// Register adds or replaces the extractor for mimeType.
func (e *Extractor) Register(mimeType string, fn Func) {
	e.funcs[mimeType] = fn
}

// Supports reports whether mimeType has an extractor.
func (e *Extractor) Supports(mimeType string) bool {
	_, ok := e.funcs[baseType(mimeType)]
	return ok
}

// Detect sniffs the MIME type of data. name is only consulted to tell
// Markdown apart from plain text.
func Detect(data []byte, name string) string {
	mt := mimetype.Detect(data)
	base := baseType(mt.String())
	if base == MIMEText {
		switch strings.ToLower(filepath.Ext(name)) {
		case ".md", ".markdown":
			return MIMEMarkdown
		}
	}
	return base
}

// ExtractFile reads the file at path and extracts its text. An empty
// mimeType is sniffed from the content.
func (e *Extractor) ExtractFile(ctx context.Context, path, mimeType string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", &Error{Reason: ReasonCorrupted, Err: fmt.Errorf("stat %s: %w", path, err)}
	}
	if info.Size() > e.maxBytes {
		return "", &Error{Reason: ReasonTooLarge, Limit: e.maxBytes, Err: fmt.Errorf("file is %d bytes, limit %d", info.Size(), e.maxBytes)}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &Error{Reason: ReasonCorrupted, Err: fmt.Errorf("read %s: %w", path, err)}
	}
	if mimeType == "" || baseType(mimeType) == "application/octet-stream" {
		mimeType = Detect(data, path)
	}
	return e.Extract(data, mimeType)
}

// Extract returns the validated text of data interpreted as mimeType.
func (e *Extractor) Extract(data []byte, mimeType string) (string, error) {
	if int64(len(data)) > e.maxBytes {
		return "", &Error{Reason: ReasonTooLarge, Limit: e.maxBytes, Err: fmt.Errorf("file is %d bytes, limit %d", len(data), e.maxBytes)}
	}
	if len(data) == 0 {
		return "", &Error{Reason: ReasonInsufficientContent, Err: errors.New("file is empty")}
	}

	mimeType = baseType(mimeType)
	fn, ok := e.funcs[mimeType]
	if !ok {
		return "", &Error{Reason: ReasonUnsupportedType, Err: fmt.Errorf("no extractor for %q", mimeType)}
	}

	text, err := fn(data)
	if err != nil {
		var xe *Error
		if errors.As(err, &xe) {
			return "", xe
		}
		return "", &Error{Reason: ReasonCorrupted, Err: err}
	}
	if mimeType == MIMEPDF && strings.TrimSpace(text) == "" {
		return "", &Error{Reason: ReasonImageOnly, Err: errors.New("pdf has no text layer")}
	}
	return e.Validate(text)
}

// Validate trims text and checks it is long enough and mentions enough
// resume keywords.
func (e *Extractor) Validate(text string) (string, error) {
	text = strings.TrimSpace(text)
	if len(text) < e.minChars {
		return "", &Error{
			Reason: ReasonInsufficientContent,
			Err:    fmt.Errorf("extracted %d characters, need %d", len(text), e.minChars),
		}
	}
	if n := KeywordCount(text); n < e.minKeywords {
		return "", &Error{
			Reason: ReasonNotAResume,
			Err:    fmt.Errorf("found %d resume keywords, need %d", n, e.minKeywords),
		}
	}
	return text, nil
}

// KeywordCount is the number of distinct resume keywords present in text.
func KeywordCount(text string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, kw := range resumeKeywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}

func baseType(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
