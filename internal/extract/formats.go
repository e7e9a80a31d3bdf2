package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	spaceRun = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	blankRun = regexp.MustCompile(`\n{3,}`)
)

// tidy collapses horizontal whitespace and runs of blank lines.
func tidy(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = spaceRun.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(blankRun.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

func extractPDF(data []byte) (out string, err error) {
	// The pdf reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Reason: ReasonCorrupted, Err: fmt.Errorf("pdf: %v", r)}
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", pdfError(err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", pdfError(err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", pdfError(err)
	}
	return tidy(string(b)), nil
}

func pdfError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "password") || strings.Contains(msg, "encrypt") {
		return &Error{Reason: ReasonPasswordProtected, Err: err}
	}
	return &Error{Reason: ReasonCorrupted, Err: err}
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &Error{Reason: ReasonCorrupted, Err: fmt.Errorf("docx: %w", err)}
	}
	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", &Error{Reason: ReasonCorrupted, Err: errors.New("docx: missing word/document.xml")}
	}

	rc, err := doc.Open()
	if err != nil {
		return "", &Error{Reason: ReasonCorrupted, Err: fmt.Errorf("docx: %w", err)}
	}
	defer rc.Close()

	var b strings.Builder
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", &Error{Reason: ReasonCorrupted, Err: fmt.Errorf("docx: %w", err)}
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				var v string
				if err := dec.DecodeElement(&v, &el); err != nil {
					return "", &Error{Reason: ReasonCorrupted, Err: fmt.Errorf("docx: %w", err)}
				}
				b.WriteString(v)
			case "tab":
				b.WriteByte(' ')
			case "br":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			if el.Name.Local == "p" {
				b.WriteByte('\n')
			}
		}
	}
	return tidy(b.String()), nil
}

func extractText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", &Error{Reason: ReasonCorrupted, Err: errors.New("text is not valid UTF-8")}
	}
	return tidy(string(data)), nil
}

func extractHTML(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", &Error{Reason: ReasonCorrupted, Err: fmt.Errorf("html: %w", err)}
	}
	doc.Find("script, style, noscript").Remove()

	var b strings.Builder
	doc.Find("body").Find("h1, h2, h3, h4, h5, h6, p, li, td, th, dt, dd, pre, blockquote").Each(func(_ int, s *goquery.Selection) {
		// Nested blocks are visited on their own.
		if s.Find("p, li, td, th, dt, dd").Length() > 0 {
			return
		}
		b.WriteString(s.Text())
		b.WriteByte('\n')
	})
	if strings.TrimSpace(b.String()) == "" {
		b.WriteString(doc.Find("body").Text())
	}
	return tidy(b.String()), nil
}

func extractMarkdown(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", &Error{Reason: ReasonCorrupted, Err: errors.New("markdown is not valid UTF-8")}
	}
	root := goldmark.New().Parser().Parse(text.NewReader(data))

	var b strings.Builder
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				b.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(data))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.CodeSpan:
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					b.Write(t.Segment.Value(data))
				}
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(data))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", &Error{Reason: ReasonCorrupted, Err: fmt.Errorf("markdown: %w", err)}
	}
	return tidy(b.String()), nil
}
