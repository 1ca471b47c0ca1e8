// Package report converts analysis results into the JSON documents served
// by the API and printed by the CLI. Amounts become JSON numbers.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// MessageComplete is the message of a successful batch.
const MessageComplete = "Analysis complete"

type Ranked struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
}

type ChartPoint struct {
	Date    string  `json:"date"`
	Debits  float64 `json:"debits"`
	Credits float64 `json:"credits"`
}

type Merchant struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type Category struct {
	Category         string     `json:"category"`
	TotalAmount      float64    `json:"totalAmount"`
	TransactionCount int        `json:"transactionCount"`
	TopMerchants     []Merchant `json:"topMerchants"`
}

// FileReport is the summary of one analyzed document.
type FileReport struct {
	FileName           string       `json:"fileName"`
	TransactionCount   int          `json:"transactionCount"`
	TotalDebits        float64      `json:"totalDebits"`
	TotalCredits       float64      `json:"totalCredits"`
	TopExpenses        []Ranked     `json:"topExpenses"`
	TopRevenues        []Ranked     `json:"topRevenues"`
	ChartData          []ChartPoint `json:"chartData"`
	SpendingByCategory []Category   `json:"spendingByCategory"`
}

// BatchReport is the response to one analyze request.
type BatchReport struct {
	Message        string                   `json:"message"`
	BatchID        string                   `json:"batchId"`
	FilesProcessed int                      `json:"filesProcessed"`
	Results        []FileReport             `json:"results"`
	Skipped        []models.SkippedDocument `json:"skipped"`
}

func amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// NewFileReport flattens a document result.
func NewFileReport(res models.DocumentResult) FileReport {
	a := res.Analysis
	r := FileReport{
		FileName:           res.FileName,
		TotalDebits:        amount(a.TotalDebits),
		TotalCredits:       amount(a.TotalCredits),
		TopExpenses:        ranked(a.TopExpenses),
		TopRevenues:        ranked(a.TopRevenues),
		ChartData:          make([]ChartPoint, 0, len(a.ChartData)),
		SpendingByCategory: make([]Category, 0, len(a.SpendingByCategory)),
	}
	if res.Info != nil {
		r.TransactionCount = len(res.Info.Transactions)
	}

	for _, p := range a.ChartData {
		r.ChartData = append(r.ChartData, ChartPoint{
			Date:    p.Date,
			Debits:  amount(p.CumulativeDebits),
			Credits: amount(p.CumulativeCredits),
		})
	}
	for _, b := range a.SpendingByCategory {
		c := Category{
			Category:         b.Category,
			TotalAmount:      amount(b.TotalAmount),
			TransactionCount: b.TransactionCount,
			TopMerchants:     make([]Merchant, 0, len(b.TopMerchants)),
		}
		for _, m := range b.TopMerchants {
			c.TopMerchants = append(c.TopMerchants, Merchant{Name: m.Name, Amount: amount(m.Amount)})
		}
		r.SpendingByCategory = append(r.SpendingByCategory, c)
	}
	return r
}

func ranked(list []models.RankedTransaction) []Ranked {
	out := make([]Ranked, 0, len(list))
	for _, t := range list {
		out = append(out, Ranked{Description: t.Description, Amount: amount(t.Amount), Date: t.Date})
	}
	return out
}

// NewBatchReport flattens a batch result.
func NewBatchReport(batch *models.BatchResult) BatchReport {
	r := BatchReport{
		Message: MessageComplete,
		BatchID: batch.ID,
		Results: make([]FileReport, 0, len(batch.Results)),
		Skipped: batch.Skipped,
	}
	if r.Skipped == nil {
		r.Skipped = []models.SkippedDocument{}
	}
	for _, res := range batch.Results {
		r.Results = append(r.Results, NewFileReport(res))
	}
	r.FilesProcessed = len(r.Results)
	return r
}
