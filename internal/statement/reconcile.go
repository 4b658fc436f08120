package statement

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtconv/internal/model"
)

// ErrBalanceMismatch is returned by callers that treat balance issues as fatal.
var ErrBalanceMismatch = errors.New("running balance mismatch")

// BalanceIssue describes a row whose printed running balance does not follow
// from the previous balance and the row's amount.
type BalanceIssue struct {
	Index    int // 0-based position in the transaction list
	Date     time.Time
	Expected decimal.Decimal
	Printed  decimal.Decimal
}

func (e BalanceIssue) Error() string {
	return fmt.Sprintf("row %d [%s]: expected balance %s, statement prints %s",
		e.Index+1, e.Date.Format("2006-01-02"), e.Expected.StringFixed(2), e.Printed.StringFixed(2))
}

// CheckBalances verifies prev.Balance + cur.Amount == cur.Balance for every
// pair of consecutive rows that both print a balance.
func CheckBalances(txns []model.Transaction) []BalanceIssue {
	var issues []BalanceIssue
	for i := 1; i < len(txns); i++ {
		prev, cur := txns[i-1], txns[i]
		if !prev.HasBalance() || !cur.HasBalance() {
			continue
		}
		expected := prev.Balance.Decimal.Add(cur.Amount)
		if !expected.Equal(cur.Balance.Decimal) {
			issues = append(issues, BalanceIssue{
				Index:    i,
				Date:     cur.Date,
				Expected: expected,
				Printed:  cur.Balance.Decimal,
			})
		}
	}
	return issues
}
