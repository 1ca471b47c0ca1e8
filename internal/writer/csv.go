package writer

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVWriter writes one row per transaction.
type CSVWriter struct {
	// Resolver fills the Category and Merchant columns; nil leaves them empty.
	Resolver Resolver
}

// Write writes transactions in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, export *Export) error {
	cw := csv.NewWriter(out)

	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range export.Transactions {
		res := resolve(w.Resolver, txn.Description)
		row := []string{
			txn.Date,
			txn.Description,
			formatAmount(txn.Debit),
			formatAmount(txn.Credit),
			res.Category,
			res.Merchant,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
