// Package export encodes transactions as CSV or XLSX.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/stmtconv/internal/model"
)

// Format is an output file format.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// Header is the column header shared by all formats.
var Header = []string{"date", "description", "amount", "balance"}

const dateFormat = "2006-01-02"

// ParseFormat returns the format named s, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, XLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want csv or xlsx)", s)
	}
}

// FormatFromPath picks the format from a file extension, defaulting to CSV.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return XLSX
	}
	return CSV
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string { return "." + string(f) }

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Write encodes txns in format f.
func Write(w io.Writer, f Format, txns []model.Transaction) error {
	switch f {
	case CSV:
		return WriteCSV(w, txns)
	case XLSX:
		return WriteXLSX(w, txns)
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}
