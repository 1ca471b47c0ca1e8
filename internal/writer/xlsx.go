package writer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	transactionsSheet = "Transactions"
	categoriesSheet   = "Categories"
)

var categoryColumns = []string{"Category", "Total", "Transactions", "Top Merchants"}

// XLSXWriter writes a workbook with a Transactions sheet and a Categories
// summary sheet.
type XLSXWriter struct {
	Resolver Resolver
}

// Write encodes the workbook to out.
func (w *XLSXWriter) Write(out io.Writer, export *Export) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(categoriesSheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	var rows [][]interface{}
	for _, txn := range export.Transactions {
		res := resolve(w.Resolver, txn.Description)
		rows = append(rows, []interface{}{
			txn.Date,
			txn.Description,
			amountCell(txn.Debit.InexactFloat64()),
			amountCell(txn.Credit.InexactFloat64()),
			res.Category,
			res.Merchant,
		})
	}
	if err := writeTable(f, transactionsSheet, columns, rows, bold, 2); err != nil {
		return err
	}

	rows = rows[:0]
	for _, b := range export.Categories {
		var merchants string
		for i, m := range b.TopMerchants {
			if i > 0 {
				merchants += ", "
			}
			merchants += fmt.Sprintf("%s (%s)", m.Name, m.Amount.StringFixed(2))
		}
		rows = append(rows, []interface{}{
			b.Category,
			b.TotalAmount.InexactFloat64(),
			b.TransactionCount,
			merchants,
		})
	}
	if err := writeTable(f, categoriesSheet, categoryColumns, rows, bold, 4); err != nil {
		return err
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

// amountCell leaves zero amounts blank, matching the CSV output.
func amountCell(v float64) interface{} {
	if v == 0 {
		return ""
	}
	return v
}

// writeTable fills sheet with a bold header row and the given rows. The
// 1-based wideCol holds free text and gets a wider column.
func writeTable(f *excelize.File, sheet string, header []string, rows [][]interface{}, headerStyle, wideCol int) error {
	for i, name := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("failed to write %s header: %w", sheet, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, r+1, err)
		}
	}

	for i, name := range header {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := float64(len(name) + 4)
		if width < 12 {
			width = 12
		}
		if i+1 == wideCol {
			width = 60
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}
