package statement

import (
	"errors"
	"fmt"

	"github.com/cleared-dev/stmtconv/internal/pdftext"
)

var (
	// ErrUnreadable means the input could not be decoded as a PDF.
	ErrUnreadable = pdftext.ErrUnreadable
	// ErrLayoutNotRecognized means no transaction table was found.
	ErrLayoutNotRecognized = errors.New("layout not recognized")
	// ErrFieldCoercion means a transaction row had a date or amount that could not be parsed.
	ErrFieldCoercion = errors.New("field coercion failure")
)

// Kind classifies a ParseError.
type Kind string

const (
	KindUnreadable Kind = "unreadable"
	KindLayout     Kind = "layout"
	KindField      Kind = "field"
)

// ParseError is the single terminal failure for a document.
type ParseError struct {
	Kind Kind
	Page int    // 1-based, 0 when not tied to a page
	Line int    // 1-based line within the page, 0 when not tied to a line
	Text string // offending line, if any
	Err  error
}

func (e *ParseError) Error() string {
	if e.Page > 0 && e.Line > 0 {
		return fmt.Sprintf("page %d, line %d: %v (line: %q)", e.Page, e.Line, e.Err, e.Text)
	}
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

func unreadable(err error) *ParseError {
	return &ParseError{Kind: KindUnreadable, Err: err}
}

func layoutError(format string, args ...any) *ParseError {
	return &ParseError{
		Kind: KindLayout,
		Err:  fmt.Errorf("%w: %s", ErrLayoutNotRecognized, fmt.Sprintf(format, args...)),
	}
}

func fieldError(page, line int, text string, err error) *ParseError {
	return &ParseError{
		Kind: KindField,
		Page: page,
		Line: line,
		Text: text,
		Err:  fmt.Errorf("%w: %v", ErrFieldCoercion, err),
	}
}
