package statement

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Default sign hints, checked against the lowercased description when an
// amount carries no explicit sign. Negative hints win.
var (
	DefaultPositiveHints = []string{"deposit", "payment", "credit", "refund"}
	DefaultNegativeHints = []string{"purchase", "withdrawal", "fee", "debit"}
)

// moneyPattern matches "-$1,234.56", "$ 4.50", "(4.50)", "4.50-", "4.50 CR".
var moneyPattern = regexp.MustCompile(`\(?-?(?:\$\s?)?\d[\d,]*\.\d{2}\)?(?:-|\s?(?:CR|DR)\b)?`)

// moneyToken is one amount found in a line.
type moneyToken struct {
	Start, End int // byte offsets in the line
	Raw        string
}

// findMoney returns amounts in line, skipping digits glued to letters or further digits
// such as reference numbers.
func findMoney(line string) []moneyToken {
	var tokens []moneyToken
	for _, loc := range moneyPattern.FindAllStringIndex(line, -1) {
		start, end := loc[0], loc[1]
		if start > 0 {
			prev := rune(line[start-1])
			if unicode.IsLetter(prev) || unicode.IsDigit(prev) || prev == '.' {
				continue
			}
		}
		if end < len(line) {
			next := rune(line[end])
			if unicode.IsDigit(next) || unicode.IsLetter(next) {
				continue
			}
		}
		tokens = append(tokens, moneyToken{Start: start, End: end, Raw: line[start:end]})
	}
	return tokens
}

// money is a parsed amount with its printed sign.
type money struct {
	Value    decimal.Decimal // absolute value
	Negative bool
	Explicit bool // sign was printed (minus, parentheses, CR or DR)
}

func parseMoney(raw string) (money, error) {
	s := strings.TrimSpace(raw)
	var m money

	upper := strings.ToUpper(s)
	switch {
	case strings.HasSuffix(upper, "DR"):
		m.Negative, m.Explicit = true, true
	case strings.HasSuffix(upper, "CR"):
		m.Explicit = true
	}
	if strings.Contains(s, "-") || (strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")) {
		m.Negative, m.Explicit = true, true
	}

	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' {
			return r
		}
		return -1
	}, s)
	v, err := decimal.NewFromString(digits)
	if err != nil {
		return money{}, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	m.Value = v
	return m, nil
}

// Signed returns the amount with its printed sign applied.
func (m money) Signed() decimal.Decimal {
	if m.Negative {
		return m.Value.Neg()
	}
	return m.Value
}

// signHints decides the direction of unsigned amounts from description keywords.
type signHints struct {
	positive []string
	negative []string
}

func newSignHints(positive, negative []string) signHints {
	lower := func(in []string) []string {
		out := make([]string, 0, len(in))
		for _, s := range in {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return signHints{positive: lower(positive), negative: lower(negative)}
}

// apply returns the signed transaction amount for m given the row's description.
func (h signHints) apply(m money, description string) decimal.Decimal {
	if m.Explicit {
		return m.Signed()
	}
	desc := strings.ToLower(description)
	for _, k := range h.negative {
		if strings.Contains(desc, k) {
			return m.Value.Neg()
		}
	}
	for _, k := range h.positive {
		if strings.Contains(desc, k) {
			return m.Value
		}
	}
	return m.Value
}
