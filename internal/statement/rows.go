package statement

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtconv/internal/model"
	"github.com/cleared-dev/stmtconv/internal/pdftext"
)

// pending is a transaction being assembled from one or more lines.
type pending struct {
	date      time.Time
	desc      []string
	amount    decimal.Decimal
	balance   decimal.NullDecimal
	hasAmount bool
}

func (p *pending) description() string {
	return strings.Join(strings.Fields(strings.Join(p.desc, " ")), " ")
}

// rowParser walks a document line by line and assembles transactions.
type rowParser struct {
	layout      Layout
	hints       signHints
	yearHint    int
	closingYear bool

	txns    []model.Transaction
	skipped int
	cur     *pending
}

func (rp *rowParser) parse(doc *pdftext.Document) error {
	years := newYearTracker(rp.startYear(doc))
	for _, page := range doc.Pages {
		for i, raw := range page.Lines {
			line := cleanLine(raw)
			if line == "" {
				continue
			}
			if err := rp.parseLine(line, years); err != nil {
				return fieldError(page.Number, i+1, raw, err)
			}
		}
		rp.flush()
	}
	return nil
}

func (rp *rowParser) parseLine(line string, years *yearTracker) error {
	if rawDate, rest, ok := rp.layout.SplitDate(line); ok {
		rp.flush()
		date, err := rp.parseDate(rawDate, years)
		if err != nil {
			return err
		}
		rp.cur = &pending{date: date}
		return rp.startRow(rest)
	}

	if rp.cur == nil {
		return nil
	}
	if rp.cur.hasAmount {
		rp.cur.desc = append(rp.cur.desc, line)
		return nil
	}

	tokens := findMoney(line)
	if len(tokens) == 0 {
		rp.cur.desc = append(rp.cur.desc, line)
		return nil
	}
	if prefix := trimSeparators(line[:tokens[0].Start]); prefix != "" {
		rp.cur.desc = append(rp.cur.desc, prefix)
	}
	if err := rp.setAmounts(tokens); err != nil {
		return err
	}
	// An amount on its own line closes the row; later lines belong to no one.
	rp.flush()
	return nil
}

// startRow handles the text after the date on a row's first line.
func (rp *rowParser) startRow(rest string) error {
	tokens := findMoney(rest)
	if len(tokens) == 0 {
		rp.cur.desc = append(rp.cur.desc, rest)
		return nil
	}
	rp.cur.desc = append(rp.cur.desc, trimSeparators(rest[:tokens[0].Start]))
	return rp.setAmounts(tokens)
}

// setAmounts reads the amount and, when printed, the running balance.
func (rp *rowParser) setAmounts(tokens []moneyToken) error {
	amt, err := parseMoney(tokens[0].Raw)
	if err != nil {
		return err
	}
	rp.cur.amount = rp.hints.apply(amt, rp.cur.description())
	rp.cur.hasAmount = true

	if len(tokens) > 1 {
		bal, err := parseMoney(tokens[1].Raw)
		if err != nil {
			return err
		}
		rp.cur.balance = decimal.NewNullDecimal(bal.Signed())
	}
	return nil
}

// anyLeapYear lets a yearless date such as "02/29" parse before its real year is known.
const anyLeapYear = 2000

func (rp *rowParser) parseDate(raw string, years *yearTracker) (time.Time, error) {
	shape, hasYear, err := rp.layout.ParseDate(raw, anyLeapYear)
	if err != nil {
		return time.Time{}, err
	}
	if hasYear {
		years.observe(shape.Year(), int(shape.Month()))
		return shape, nil
	}
	date, _, err := rp.layout.ParseDate(raw, years.forMonth(int(shape.Month())))
	return date, err
}

// startYear returns the year of the first yearless row. A closing-year hint
// is moved back by the number of year-end wraps before the first row that
// prints its own year, so the last rows land on the hint.
func (rp *rowParser) startYear(doc *pdftext.Document) int {
	if !rp.closingYear {
		return rp.yearHint
	}
	wraps := newYearTracker(0)
	for _, page := range doc.Pages {
		for _, raw := range page.Lines {
			rawDate, _, ok := rp.layout.SplitDate(cleanLine(raw))
			if !ok {
				continue
			}
			shape, hasYear, err := rp.layout.ParseDate(rawDate, anyLeapYear)
			if err != nil {
				continue
			}
			if hasYear {
				return rp.yearHint - wraps.year
			}
			wraps.forMonth(int(shape.Month()))
		}
	}
	return rp.yearHint - wraps.year
}

// flush emits the open row if it has an amount, otherwise counts it as skipped.
func (rp *rowParser) flush() {
	if rp.cur == nil {
		return
	}
	if rp.cur.hasAmount {
		rp.txns = append(rp.txns, model.Transaction{
			Date:        rp.cur.date,
			Description: rp.cur.description(),
			Amount:      rp.cur.amount,
			Balance:     rp.cur.balance,
		})
	} else {
		rp.skipped++
	}
	rp.cur = nil
}

// trimSeparators drops the spaces and commas or semicolons left between a
// description and its amount.
func trimSeparators(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ",; \t")
}

// cleanLine trims the line and drops marker glyphs some statements print after amounts.
func cleanLine(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '⧫', '♦', '◆':
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
