package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one row of a bank statement's transaction table.
type Transaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal     // negative = debit, positive = credit
	Balance     decimal.NullDecimal // running balance, Valid=false when not printed
}

// HasBalance reports whether the statement printed a running balance for the row.
func (t Transaction) HasBalance() bool { return t.Balance.Valid }
