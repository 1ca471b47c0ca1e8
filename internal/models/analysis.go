package models

import "github.com/shopspring/decimal"

// MerchantAmount is a merchant's subtotal within a category.
type MerchantAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// CategoryBucket aggregates the expenses that resolved to one category.
type CategoryBucket struct {
	Category         string           `json:"category"`
	TotalAmount      decimal.Decimal  `json:"totalAmount"`
	TransactionCount int              `json:"transactionCount"`
	TopMerchants     []MerchantAmount `json:"topMerchants"`
}

// ChartPoint is one step of the cumulative series.
type ChartPoint struct {
	Date              string          `json:"date"`
	CumulativeDebits  decimal.Decimal `json:"debits"`
	CumulativeCredits decimal.Decimal `json:"credits"`
}

// RankedTransaction is an entry in the top expenses or top revenues list.
type RankedTransaction struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
}

// AnalysisResult is the summary computed for one statement.
type AnalysisResult struct {
	TotalDebits        decimal.Decimal     `json:"totalDebits"`
	TotalCredits       decimal.Decimal     `json:"totalCredits"`
	TopExpenses        []RankedTransaction `json:"topExpenses"`
	TopRevenues        []RankedTransaction `json:"topRevenues"`
	ChartData          []ChartPoint        `json:"chartData"`
	SpendingByCategory []CategoryBucket    `json:"spendingByCategory"`
}

// DocumentResult is the outcome of analyzing a single uploaded document.
type DocumentResult struct {
	FileName  string
	PageCount int
	Info      *StatementInfo
	Analysis  AnalysisResult
}

// SkippedDocument records why a document produced no result.
type SkippedDocument struct {
	FileName string `json:"fileName"`
	Reason   string `json:"reason"`
}

// BatchResult holds the results for every document of one request, in input order.
type BatchResult struct {
	ID      string
	Results []DocumentResult
	Skipped []SkippedDocument
}
