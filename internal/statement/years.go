package statement

import (
	"path/filepath"
	"regexp"
	"strconv"
)

var (
	fourDigitYear = regexp.MustCompile(`(20\d{2})`)
	sixDigitRun   = regexp.MustCompile(`(\d{6})`)
)

// YearHintFromName guesses the statement year from a file name such as
// "2025-06-06.pdf" or "083125 WellsFargo.pdf" (MMDDYY). Returns 0 when none is found.
func YearHintFromName(name string) int {
	if name == "" {
		return 0
	}
	base := filepath.Base(name)
	if m := fourDigitYear.FindString(base); m != "" {
		y, _ := strconv.Atoi(m)
		return y
	}
	if m := sixDigitRun.FindString(base); m != "" {
		yy, _ := strconv.Atoi(m[4:])
		return 2000 + yy
	}
	return 0
}

// statementPeriod matches a printed period such as "12/01/2024 to 01/31/2025"
// or "December 1, 2024 - January 31, 2025".
var statementPeriod = regexp.MustCompile(`(?i)(?:\d{1,2}/\d{1,2}/|[a-z]+\.? \d{1,2},? )(20\d{2})\s*(?:-|–|to|through|thru)\s*(?:\d{1,2}/\d{1,2}/|[a-z]+\.? \d{1,2},? )(20\d{2})\b`)

// yearHintFromText returns the closing year of a printed statement period,
// else the first 20xx year printed in the document, or 0.
func yearHintFromText(text string) int {
	if m := statementPeriod.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[2])
		return y
	}
	loc := fourDigitYear.FindStringIndex(text)
	for loc != nil {
		start, end := loc[0], loc[1]
		// Skip years glued to other digits, such as account or reference numbers.
		if (start == 0 || !isDigit(text[start-1])) && (end == len(text) || !isDigit(text[end])) {
			y, _ := strconv.Atoi(text[start:end])
			return y
		}
		next := fourDigitYear.FindStringIndex(text[end:])
		if next == nil {
			break
		}
		loc = []int{end + next[0], end + next[1]}
	}
	return 0
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// yearTracker infers years for dates printed without one, across a document.
type yearTracker struct {
	year      int
	prevMonth int
}

func newYearTracker(hint int) *yearTracker {
	return &yearTracker{year: hint}
}

// observe records a date that printed its own year.
func (y *yearTracker) observe(year, month int) {
	y.year = year
	y.prevMonth = month
}

// forMonth returns the year to use for a yearless date in month, advancing
// the year when the statement wraps from November/December into January/February.
func (y *yearTracker) forMonth(month int) int {
	if y.prevMonth >= 11 && month <= 2 {
		y.year++
	}
	y.prevMonth = month
	return y.year
}
