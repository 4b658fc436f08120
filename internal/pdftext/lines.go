package pdftext

import (
	"math"
	"sort"
	"strings"
)

// glyph is a positioned run of text, usually one character.
type glyph struct {
	X, Y float64
	W    float64 // advance width, zero when the font has no metrics
	Size float64
	S    string
}

const (
	// Glyphs whose baselines differ by less than this share a line (fraction of font size).
	baselineTolerance = 0.35
	// A horizontal gap wider than this starts a new word (fraction of font size).
	wordGap = 0.15
	// Fallback when the font size is not known.
	defaultSize = 10
)

// groupLines orders glyphs into visual lines, top of page first.
func groupLines(glyphs []glyph) []string {
	if len(glyphs) == 0 {
		return nil
	}

	// PDF y grows upward. Stable so equal positions keep content-stream order.
	sorted := make([]glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var rows [][]glyph
	var row []glyph
	rowY := sorted[0].Y
	for _, g := range sorted {
		if len(row) > 0 && math.Abs(g.Y-rowY) > baselineTolerance*size(g) {
			rows = append(rows, row)
			row = nil
			rowY = g.Y
		}
		row = append(row, g)
	}
	rows = append(rows, row)

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		if l := joinRow(r); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func joinRow(row []glyph) string {
	sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

	var b strings.Builder
	var prev *glyph
	for i := range row {
		g := &row[i]
		if strings.TrimSpace(g.S) == "" {
			writeSpace(&b)
			prev = g
			continue
		}
		if prev != nil && g.X-(prev.X+prev.W) > wordGap*size(*g) {
			writeSpace(&b)
		}
		b.WriteString(g.S)
		prev = g
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func writeSpace(b *strings.Builder) {
	s := b.String()
	if s != "" && !strings.HasSuffix(s, " ") {
		b.WriteByte(' ')
	}
}

func size(g glyph) float64 {
	if g.Size <= 0 {
		return defaultSize
	}
	return g.Size
}
