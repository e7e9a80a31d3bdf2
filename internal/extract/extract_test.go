package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `Jane Doe
Work Experience: Software engineer at Acme, 2019-2024.
Education: BSc Computer Science, Tribhuvan University.
Skills: Go, PostgreSQL, Docker.`

func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractText(t *testing.T) {
	x := New(0)

	got, err := x.Extract([]byte("  "+sampleResume+"\n\n\n\n"), "text/plain; charset=utf-8")

	require.NoError(t, err)
	assert.Equal(t, sampleResume, got)
}

func TestExtractDOCX(t *testing.T) {
	x := New(0)
	data := buildDOCX(t,
		"Jane Doe",
		"Work Experience: Software engineer at Acme, 2019-2024.",
		"Education: BSc Computer Science, Tribhuvan University.",
	)

	got, err := x.Extract(data, MIMEDOCX)

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nWork Experience: Software engineer at Acme, 2019-2024.\nEducation: BSc Computer Science, Tribhuvan University.", got)
}

func TestExtractDOCXMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = New(0).Extract(buf.Bytes(), MIMEDOCX)

	assert.Equal(t, ReasonCorrupted, ReasonOf(err))
}

func TestExtractHTML(t *testing.T) {
	page := `<html><head><style>p{}</style><script>var x = "skills";</script></head><body>
<h1>Jane Doe</h1>
<p>Work experience at Acme building payment systems for five years.</p>
<ul><li>Education: Tribhuvan University</li><li>Skills: Go</li></ul>
</body></html>`

	got, err := New(0).Extract([]byte(page), MIMEHTML)

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nWork experience at Acme building payment systems for five years.\nEducation: Tribhuvan University\nSkills: Go", got)
	assert.NotContains(t, got, "var x")
}

func TestExtractMarkdown(t *testing.T) {
	md := "# Jane Doe\n\n## Experience\n\nBuilt **payment** systems at Acme for five years.\n\n- Education: Tribhuvan University\n- Skills: `Go`\n"

	got, err := New(0).Extract([]byte(md), MIMEMarkdown)

	require.NoError(t, err)
	assert.Contains(t, got, "Jane Doe")
	assert.Contains(t, got, "Built payment systems at Acme for five years.")
	assert.Contains(t, got, "Skills: Go")
	assert.NotContains(t, got, "**")
	assert.NotContains(t, got, "#")
}

func TestExtractFailures(t *testing.T) {
	x := New(64)
	tests := []struct {
		name string
		data []byte
		mime string
		want Reason
	}{
		{"empty", nil, MIMEText, ReasonInsufficientContent},
		{"too large", bytes.Repeat([]byte("a"), 65), MIMEText, ReasonTooLarge},
		{"unsupported", []byte("GIF89a"), "image/gif", ReasonUnsupportedType},
		{"short", []byte("experience skills"), MIMEText, ReasonInsufficientContent},
		{"not a resume", []byte("The quick brown fox jumps over the lazy dog again and again."), MIMEText, ReasonNotAResume},
		{"bad pdf", []byte("%PDF-1.4 this is not really a pdf"), MIMEPDF, ReasonCorrupted},
		{"bad docx", []byte("not a zip archive"), MIMEDOCX, ReasonCorrupted},
		{"bad utf8", []byte{0xff, 0xfe, 0xfd}, MIMEText, ReasonCorrupted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := x.Extract(tt.data, tt.mime)

			require.Error(t, err)
			assert.Equal(t, tt.want, ReasonOf(err))
		})
	}
}

func TestExtractCustomFunc(t *testing.T) {
	x := New(0)
	x.Register("application/x-empty-pdf", func([]byte) (string, error) { return "", nil })

	assert.True(t, x.Supports("application/x-empty-pdf; v=1"))
	_, err := x.Extract([]byte("x"), "application/x-empty-pdf")
	assert.Equal(t, ReasonInsufficientContent, ReasonOf(err))
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.md")
	require.NoError(t, os.WriteFile(path, []byte("# Resume\n\n"+sampleResume), 0o600))

	got, err := New(0).ExtractFile(context.Background(), path, "")

	require.NoError(t, err)
	assert.Contains(t, got, "Work Experience")

	_, err = New(0).ExtractFile(context.Background(), filepath.Join(dir, "missing.pdf"), MIMEPDF)
	assert.Equal(t, ReasonCorrupted, ReasonOf(err))
}

func TestDetect(t *testing.T) {
	assert.Equal(t, MIMEMarkdown, Detect([]byte("# Title\n\nbody"), "cv.md"))
	assert.Equal(t, MIMEText, Detect([]byte("plain words"), "cv.txt"))
	assert.Equal(t, MIMEPDF, Detect([]byte("%PDF-1.7\n"), "cv.pdf"))
	assert.Equal(t, MIMEHTML, Detect([]byte("<html><body>x</body></html>"), "cv.html"))
}

func TestErrorMessages(t *testing.T) {
	err := &Error{Reason: ReasonPasswordProtected}

	assert.Equal(t, "The document is password protected. Please remove the password and try again.", err.UserMessage())
	assert.Equal(t, defaultUserMessage, MessageFor(ReasonUnknown))
	assert.Equal(t, ReasonUnknown, ReasonOf(assert.AnError))
	assert.Len(t, Suggestions(), 5)
}

func TestMessagesAreFormatNeutral(t *testing.T) {
	for reason, msg := range userMessages {
		assert.NotContains(t, msg, "PDF file", reason)
		assert.NotContains(t, msg, "10MB", reason)
	}
	assert.Contains(t, MessageFor(ReasonUnsupportedType), "HTML")
	assert.Contains(t, MessageFor(ReasonUnsupportedType), "Markdown")
}

func TestTooLargeMessageUsesLimit(t *testing.T) {
	x := New(5 << 20)

	_, err := x.Extract(make([]byte, 5<<20+1), MIMEText)

	var xe *Error
	require.ErrorAs(t, err, &xe)
	assert.Equal(t, ReasonTooLarge, xe.Reason)
	assert.Equal(t, "The file is too large. Please upload a file no larger than 5MB.", UserMessageOf(err))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "5MB", FormatSize(5<<20))
	assert.Equal(t, "1.5MB", FormatSize(3<<19))
	assert.Equal(t, "64KB", FormatSize(64<<10))
	assert.Equal(t, "12 bytes", FormatSize(12))
}

func TestKeywordCount(t *testing.T) {
	assert.Equal(t, 0, KeywordCount("nothing here"))
	assert.Equal(t, 3, KeywordCount("EXPERIENCE, education and Skills"))
}
