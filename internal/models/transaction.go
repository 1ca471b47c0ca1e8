package models

import "github.com/shopspring/decimal"

// Transaction represents a single booked line of a bank statement.
// Records are created by the parser and treated as read-only afterwards.
type Transaction struct {
	Date        string          `json:"date"` // YYYY-MM-DD
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"` // not populated by the parser
}

// IsDebit reports whether the transaction moved money out of the account.
func (t Transaction) IsDebit() bool {
	return t.Debit.IsPositive()
}

// IsCredit reports whether the transaction moved money into the account.
func (t Transaction) IsCredit() bool {
	return t.Credit.IsPositive()
}

// Line dispositions recorded in DebugLine.Result.
const (
	LineHeader      = "header"
	LineYear        = "year"
	LineDescription = "description"
	LineBoilerplate = "boilerplate"
	LineNoise       = "noise"
	LineDropped     = "dropped"
)

// DebugLine captures what the parser did with each input line.
type DebugLine struct {
	Page    int    `json:"page"`
	LineNum int    `json:"lineNum"`
	Text    string `json:"text"`
	Result  string `json:"result"`
}

// StatementInfo holds everything the parser recovered from one document.
type StatementInfo struct {
	Transactions []Transaction
	DebugLines   []DebugLine
	// SkippedLines counts non-empty lines that contributed to no record.
	SkippedLines int
}
