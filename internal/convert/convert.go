// Package convert ties extraction, reconciliation and export together for
// the CLI and the web server.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cleared-dev/stmtconv/internal/export"
	"github.com/cleared-dev/stmtconv/internal/logging"
	"github.com/cleared-dev/stmtconv/internal/statement"
)

// Request describes one conversion.
type Request struct {
	// Name is the source file name, used as a year hint.
	Name   string
	Format export.Format
	// Layout and Year override the service defaults when set.
	Layout string
	Year   int
}

// Result is a finished conversion. Data holds the complete encoded output.
type Result struct {
	Statement *statement.Statement
	Format    export.Format
	Data      []byte
	Issues    []statement.BalanceIssue
	Elapsed   time.Duration
}

// Service converts statement PDFs. It is safe for concurrent use.
type Service struct {
	extractor *statement.Extractor
	logger    *slog.Logger
	strict    bool
}

// New creates a Service. With strict set, balance mismatches fail the conversion.
func New(ex *statement.Extractor, logger *slog.Logger, strict bool) *Service {
	if ex == nil {
		ex = statement.NewExtractor(nil, statement.Options{})
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{extractor: ex, logger: logger, strict: strict}
}

// Extractor returns the underlying extractor.
func (s *Service) Extractor() *statement.Extractor { return s.extractor }

// Convert parses src and encodes it. No bytes are returned unless every step succeeded.
func (s *Service) Convert(ctx context.Context, src io.Reader, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Format == "" {
		req.Format = export.CSV
	}
	start := time.Now()
	log := s.logger.With("file", req.Name)

	ex := s.extractor.WithOptions(statement.Options{Layout: req.Layout, YearHint: req.Year})
	st, err := ex.Extract(src, req.Name)
	if err != nil {
		log.Warn("statement rejected", "error", err)
		return nil, err
	}
	if st.Skipped > 0 {
		log.Warn("dropped rows without an amount", "count", st.Skipped)
	}

	issues := statement.CheckBalances(st.Transactions)
	for _, issue := range issues {
		log.Warn("running balance mismatch", "row", issue.Index+1, "expected", issue.Expected.StringFixed(2),
			"printed", issue.Printed.StringFixed(2))
	}
	if s.strict && len(issues) > 0 {
		return nil, fmt.Errorf("%w: %d row(s), first: %v", statement.ErrBalanceMismatch, len(issues), issues[0])
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, req.Format, st.Transactions); err != nil {
		return nil, err
	}

	res := &Result{
		Statement: st,
		Format:    req.Format,
		Data:      buf.Bytes(),
		Issues:    issues,
		Elapsed:   time.Since(start),
	}
	log.Info("statement converted", "layout", st.Layout, "pages", st.Pages,
		"rows", len(st.Transactions), "format", req.Format, "duration", res.Elapsed)
	return res, nil
}

// IsParseError reports whether err is a document-level rejection rather than
// an internal failure.
func IsParseError(err error) bool {
	var perr *statement.ParseError
	return errors.As(err, &perr) || errors.Is(err, statement.ErrBalanceMismatch)
}
