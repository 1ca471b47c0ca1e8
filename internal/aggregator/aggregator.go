// Package aggregator computes the summary analytics of a parsed statement.
package aggregator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// MaxRanked bounds the top expenses and top revenues lists.
const MaxRanked = 3

// CategoryClassifier produces the spend-by-category breakdown.
type CategoryClassifier interface {
	Classify(transactions []models.Transaction) []models.CategoryBucket
}

// Aggregator computes totals, rankings and the cumulative series.
type Aggregator struct {
	classifier CategoryClassifier
}

// New returns an aggregator that delegates category analysis to c.
func New(c CategoryClassifier) *Aggregator {
	return &Aggregator{classifier: c}
}

// Analyze summarizes the transactions. Empty input yields zero totals and
// empty lists.
func (a *Aggregator) Analyze(transactions []models.Transaction) models.AnalysisResult {
	totalDebits, totalCredits := decimal.Zero, decimal.Zero
	for _, txn := range transactions {
		totalDebits = totalDebits.Add(txn.Debit)
		totalCredits = totalCredits.Add(txn.Credit)
	}

	spending := a.classifier.Classify(transactions)
	if spending == nil {
		spending = []models.CategoryBucket{}
	}

	return models.AnalysisResult{
		TotalDebits:        totalDebits.Round(2),
		TotalCredits:       totalCredits.Round(2),
		TopExpenses:        topN(transactions, debitAmount, MaxRanked),
		TopRevenues:        topN(transactions, creditAmount, MaxRanked),
		ChartData:          CumulativeSeries(transactions),
		SpendingByCategory: spending,
	}
}

func debitAmount(t models.Transaction) decimal.Decimal  { return t.Debit }
func creditAmount(t models.Transaction) decimal.Decimal { return t.Credit }

// topN returns the n largest positive amounts, keeping input order on ties.
func topN(transactions []models.Transaction, amount func(models.Transaction) decimal.Decimal, n int) []models.RankedTransaction {
	ranked := []models.RankedTransaction{}
	for _, txn := range transactions {
		if v := amount(txn); v.IsPositive() {
			ranked = append(ranked, models.RankedTransaction{
				Description: txn.Description,
				Amount:      v,
				Date:        txn.Date,
			})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amount.GreaterThan(ranked[j].Amount)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// CumulativeSeries sums debits and credits per date and returns running
// totals in ascending date order. Transactions without a date are ignored.
func CumulativeSeries(transactions []models.Transaction) []models.ChartPoint {
	type daily struct {
		debits, credits decimal.Decimal
	}
	byDate := make(map[string]*daily)
	var dates []string

	for _, txn := range transactions {
		if txn.Date == "" {
			continue
		}
		d, ok := byDate[txn.Date]
		if !ok {
			d = &daily{}
			byDate[txn.Date] = d
			dates = append(dates, txn.Date)
		}
		d.debits = d.debits.Add(txn.Debit)
		d.credits = d.credits.Add(txn.Credit)
	}
	sort.Strings(dates)

	points := make([]models.ChartPoint, 0, len(dates))
	runDebits, runCredits := decimal.Zero, decimal.Zero
	for _, date := range dates {
		runDebits = runDebits.Add(byDate[date].debits).Round(2)
		runCredits = runCredits.Add(byDate[date].credits).Round(2)
		points = append(points, models.ChartPoint{
			Date:              date,
			CumulativeDebits:  runDebits,
			CumulativeCredits: runCredits,
		})
	}
	return points
}
