// Package writer exports analyzed transactions to spreadsheet formats.
package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/classifier"
	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Export is the data written to an output file.
type Export struct {
	Transactions []models.Transaction
	Categories   []models.CategoryBucket
}

// Resolver labels a transaction description with category and merchant.
type Resolver interface {
	Resolve(description string) classifier.Resolution
}

// Writer encodes an export.
type Writer interface {
	Write(out io.Writer, export *Export) error
}

// ForPath picks the writer matching the file extension of path.
func ForPath(path string, r Resolver) (Writer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return &CSVWriter{Resolver: r}, nil
	case ".xlsx":
		return &XLSXWriter{Resolver: r}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q: use .csv or .xlsx", filepath.Ext(path))
	}
}

// WriteToFile writes the export to path with the writer for its extension.
func WriteToFile(path string, r Resolver, export *Export) error {
	w, err := ForPath(path, r)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	if err := w.Write(f, export); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var columns = []string{"Date", "Description", "Debit", "Credit", "Category", "Merchant"}

func resolve(r Resolver, description string) classifier.Resolution {
	if r == nil {
		return classifier.Resolution{}
	}
	return r.Resolve(description)
}

func formatAmount(amount decimal.Decimal) string {
	if amount.IsZero() {
		return ""
	}
	return amount.StringFixed(2)
}
