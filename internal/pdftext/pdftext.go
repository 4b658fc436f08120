// Package pdftext extracts visual text lines from PDF documents.
//
// Glyphs are read with their page coordinates, grouped into lines by
// baseline and joined left to right. Horizontal gaps wider than a fraction of
// the font size become a single space, which is how table columns end up
// separated in the extracted line.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dslipak/pdf"
)

// ErrUnreadable is returned when the input is not a PDF the reader can decode.
var ErrUnreadable = errors.New("unreadable PDF")

// Document is the extracted text of a PDF.
type Document struct {
	Pages []Page
}

// Page holds the lines of one page, top to bottom.
type Page struct {
	Number int // 1-based
	Lines  []string
}

// LineCount returns the total number of non-empty lines across all pages.
func (d *Document) LineCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Lines)
	}
	return n
}

// Text returns every line of the document joined by newlines.
func (d *Document) Text() string {
	var b strings.Builder
	for _, p := range d.Pages {
		for _, l := range p.Lines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Read extracts a Document from a PDF byte stream.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return ReadBytes(data)
}

// ReadBytes extracts a Document from PDF bytes.
func ReadBytes(data []byte) (doc *Document, err error) {
	// The PDF reader panics on some malformed objects and content streams.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	rd, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	n := rd.NumPage()
	if n <= 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrUnreadable)
	}

	doc = &Document{Pages: make([]Page, 0, n)}
	for i := 1; i <= n; i++ {
		p := rd.Page(i)
		if p.V.IsNull() {
			return nil, fmt.Errorf("%w: page %d missing", ErrUnreadable, i)
		}
		doc.Pages = append(doc.Pages, Page{
			Number: i,
			Lines:  groupLines(fromContent(p.Content().Text)),
		})
	}
	return doc, nil
}

func fromContent(texts []pdf.Text) []glyph {
	glyphs := make([]glyph, 0, len(texts))
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		glyphs = append(glyphs, glyph{
			X:    t.X,
			Y:    t.Y,
			W:    t.W,
			Size: t.FontSize,
			S:    t.S,
		})
	}
	return glyphs
}
