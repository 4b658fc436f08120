package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/stmtconv/internal/model"
)

// SheetName is the worksheet holding the transactions.
const SheetName = "Transactions"

// numFmtFixed2 is the built-in "0.00" number format.
const numFmtFixed2 = 2

// WriteXLSX writes a workbook with a single Transactions sheet.
func WriteXLSX(w io.Writer, txns []model.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range txns {
		row := []any{t.Date.Format(dateFormat), t.Description, t.Amount.InexactFloat64(), nil}
		if t.HasBalance() {
			row[3] = t.Balance.Decimal.InexactFloat64()
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if len(txns) > 0 {
		style, err := f.NewStyle(&excelize.Style{NumFmt: numFmtFixed2})
		if err != nil {
			return fmt.Errorf("creating number style: %w", err)
		}
		last := fmt.Sprintf("D%d", len(txns)+1)
		if err := f.SetCellStyle(SheetName, "C2", last, style); err != nil {
			return fmt.Errorf("styling amounts: %w", err)
		}
	}
	if err := f.SetColWidth(SheetName, "B", "B", 48); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing XLSX: %w", err)
	}
	return nil
}
