package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/cleared-dev/stmtconv/internal/model"
)

// Row is one CSV line. Values are preformatted so output is byte-stable.
type Row struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
	Balance     string `csv:"balance"`
}

// NewRow formats a transaction for CSV output.
func NewRow(t model.Transaction) Row {
	r := Row{
		Date:        t.Date.Format(dateFormat),
		Description: t.Description,
		Amount:      t.Amount.StringFixed(2),
	}
	if t.HasBalance() {
		r.Balance = t.Balance.Decimal.StringFixed(2)
	}
	return r
}

// Rows formats all transactions, preserving order.
func Rows(txns []model.Transaction) []Row {
	rows := make([]Row, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, NewRow(t))
	}
	return rows
}

// WriteCSV writes the header and one line per transaction. An empty list
// produces the header only.
func WriteCSV(w io.Writer, txns []model.Transaction) error {
	if err := gocsv.Marshal(Rows(txns), w); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}
