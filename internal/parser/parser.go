package parser

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Parser defines the interface for bank statement parsers.
type Parser interface {
	// Parse takes raw text from PDF pages and returns structured statement data.
	Parse(pages []string) (*models.StatementInfo, error)
	// BankName returns the human-readable bank name.
	BankName() string
}

// Format identifies a supported statement layout.
type Format string

// FormatPostbank is the German Postbank current-account statement.
const FormatPostbank Format = "postbank"

// New returns the parser for the given statement format.
func New(format Format) (Parser, error) {
	switch Format(strings.ToLower(string(format))) {
	case FormatPostbank, "":
		return NewPostbankParser(), nil
	default:
		return nil, fmt.Errorf("unsupported statement format: %q", format)
	}
}
