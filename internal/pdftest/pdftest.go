// Package pdftest builds small, valid single-font PDF documents for tests.
//
// Each page is a list of rows laid out top to bottom. A row is a list of cells;
// cells are placed at fixed column offsets so that extraction sees the same
// gaps a real statement table has.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// Row is one visual line of a page, split into table cells.
type Row []string

// Page is a sequence of rows.
type Page []Row

const (
	pageWidth  = 612
	pageHeight = 792
	fontSize   = 10
	leading    = 14
	topMargin  = 50
	// Courier advances every glyph by 600/1000 em.
	glyphWidth = 600
)

// columnX holds the x offset of each cell index. Cells beyond the table reuse the last gap.
var columnX = []int{40, 120, 330, 430, 520}

// Lines returns a page where every line is a single cell.
func Lines(lines ...string) Page {
	p := make(Page, len(lines))
	for i, l := range lines {
		p[i] = Row{l}
	}
	return p
}

// Build renders pages into PDF bytes.
func Build(pages ...Page) []byte {
	if len(pages) == 0 {
		pages = []Page{{}}
	}

	// Object numbering: 1 catalog, 2 page tree, 3 font, then page/content pairs.
	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	objects = append(objects, fontObject())

	for i, p := range pages {
		contentNum := 5 + 2*i
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			pageWidth, pageHeight, contentNum))
		stream := contentStream(p)
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func fontObject() string {
	widths := make([]string, 0, 95)
	for c := 32; c <= 126; c++ {
		widths = append(widths, fmt.Sprint(glyphWidth))
	}
	return fmt.Sprintf(
		"<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>",
		strings.Join(widths, " "))
}

func contentStream(p Page) string {
	var b strings.Builder
	for i, row := range p {
		y := pageHeight - topMargin - i*leading
		for j, cell := range row {
			if cell == "" {
				continue
			}
			fmt.Fprintf(&b, "BT /F1 %d Tf 1 0 0 1 %d %d Tm (%s) Tj ET\n", fontSize, cellX(j), y, escape(cell))
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func cellX(i int) int {
	if i < len(columnX) {
		return columnX[i]
	}
	last := columnX[len(columnX)-1]
	return last + (i-len(columnX)+1)*80
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
