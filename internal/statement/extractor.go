// Package statement extracts transaction records from bank statement PDFs.
//
// Extraction is a single pass over the text lines of the document: a line
// that starts with a date opens a transaction, the first amount found closes
// its description, and lines without a date extend the open transaction.
package statement

import (
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/cleared-dev/stmtconv/internal/model"
	"github.com/cleared-dev/stmtconv/internal/pdftext"
)

// Options tunes extraction. The zero value is usable.
type Options struct {
	// Layout forces a registered layout by name. Empty means auto-detect.
	Layout string
	// YearHint is the year of the first dates printed without one; a
	// December to January wrap moves later rows into the next year. Zero means
	// infer the closing year from the file name, then the document text, then
	// the clock, and date the rows before a wrap one year earlier.
	YearHint      int
	PositiveHints []string
	NegativeHints []string
	// Now is the clock used as the last resort for the year. Defaults to time.Now.
	Now func() time.Time
}

// Statement is the result of a successful extraction.
type Statement struct {
	Layout       string
	Pages        int
	Transactions []model.Transaction
	// Skipped counts dated rows dropped because no amount was found for them.
	Skipped int
}

// Extractor converts statement PDFs into transactions. It holds no mutable
// state and is safe for concurrent use.
type Extractor struct {
	layouts *Registry
	opts    Options
}

// NewExtractor creates an Extractor. A nil registry means DefaultRegistry.
func NewExtractor(layouts *Registry, opts Options) *Extractor {
	if layouts == nil {
		layouts = DefaultRegistry()
	}
	if opts.PositiveHints == nil {
		opts.PositiveHints = DefaultPositiveHints
	}
	if opts.NegativeHints == nil {
		opts.NegativeHints = DefaultNegativeHints
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Extractor{layouts: layouts, opts: opts}
}

// Layouts returns the registry the extractor selects layouts from.
func (e *Extractor) Layouts() *Registry { return e.layouts }

// WithOptions returns a copy of the extractor using opts merged over its own:
// non-zero Layout and YearHint in opts replace the current ones.
func (e *Extractor) WithOptions(opts Options) *Extractor {
	merged := e.opts
	if opts.Layout != "" {
		merged.Layout = opts.Layout
	}
	if opts.YearHint != 0 {
		merged.YearHint = opts.YearHint
	}
	return &Extractor{layouts: e.layouts, opts: merged}
}

// Extract reads a PDF from r and returns its transactions in print order.
// name is the source file name, used only as a year hint; it may be empty.
func (e *Extractor) Extract(r io.Reader, name string) (*Statement, error) {
	doc, err := pdftext.Read(r)
	if err != nil {
		return nil, unreadable(err)
	}
	return e.ParseDocument(doc, name)
}

// ParseDocument parses an already extracted document.
func (e *Extractor) ParseDocument(doc *pdftext.Document, name string) (*Statement, error) {
	layout, err := e.selectLayout(doc)
	if err != nil {
		return nil, err
	}

	rows, header := countRows(doc, layout)
	if rows == 0 && !header {
		return nil, layoutError("no transaction table found in %d page(s)", len(doc.Pages))
	}

	year, closing := e.yearHint(doc, name)
	rp := &rowParser{
		layout:      layout,
		hints:       newSignHints(e.opts.PositiveHints, e.opts.NegativeHints),
		yearHint:    year,
		closingYear: closing,
	}
	if err := rp.parse(doc); err != nil {
		return nil, err
	}

	txns := rp.txns
	if txns == nil {
		txns = []model.Transaction{}
	}
	return &Statement{
		Layout:       layout.Name(),
		Pages:        len(doc.Pages),
		Transactions: txns,
		Skipped:      rp.skipped,
	}, nil
}

// selectLayout returns the forced layout, or the one with the most dated rows.
func (e *Extractor) selectLayout(doc *pdftext.Document) (Layout, error) {
	if e.opts.Layout != "" {
		l := e.layouts.Get(e.opts.Layout)
		if l == nil {
			return nil, layoutError("unknown layout %q", e.opts.Layout)
		}
		return l, nil
	}

	all := e.layouts.All()
	if len(all) == 0 {
		return nil, layoutError("no layouts registered")
	}
	best, bestRows := all[0], 0
	for _, l := range all {
		if n, _ := countRows(doc, l); n > bestRows {
			best, bestRows = l, n
		}
	}
	return best, nil
}

// yearHint returns the year for yearless dates and whether it is the
// statement's closing year rather than its opening year.
func (e *Extractor) yearHint(doc *pdftext.Document, name string) (int, bool) {
	if e.opts.YearHint > 0 {
		return e.opts.YearHint, false
	}
	if y := YearHintFromName(name); y > 0 {
		return y, true
	}
	if y := yearHintFromText(doc.Text()); y > 0 {
		return y, true
	}
	return e.opts.Now().Year(), true
}

var (
	headerDate   = regexp.MustCompile(`(?i)\bdate\b`)
	headerColumn = regexp.MustCompile(`(?i)\b(description|details|amount|balance|deposits?|withdrawals?|debits?|credits?)\b`)
)

// isTableHeader reports whether line names a date column and at least two
// other columns, so "Statement date 01/31 Ending balance" is not a header.
func isTableHeader(line string) bool {
	if !headerDate.MatchString(line) {
		return false
	}
	seen := make(map[string]bool)
	for _, m := range headerColumn.FindAllString(line, -1) {
		seen[strings.TrimSuffix(strings.ToLower(m), "s")] = true
	}
	return len(seen) >= 2
}

// countRows returns the number of lines that start a row in layout, and
// whether a table header line was seen.
func countRows(doc *pdftext.Document, layout Layout) (rows int, header bool) {
	for _, p := range doc.Pages {
		for _, raw := range p.Lines {
			line := cleanLine(raw)
			if _, _, ok := layout.SplitDate(line); ok {
				rows++
				continue
			}
			if isTableHeader(line) {
				header = true
			}
		}
	}
	return rows, header
}
