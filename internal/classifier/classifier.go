// Package classifier groups expenses into category and merchant buckets
// using ordered keyword rules.
package classifier

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

const (
	// MaxCategories bounds the number of buckets returned by Classify.
	MaxCategories = 5
	// MaxMerchants bounds the merchants listed per bucket.
	MaxMerchants = 5
)

// Resolution is the category and merchant assigned to one description.
type Resolution struct {
	Category string
	Merchant string
}

type compiledCategory struct {
	keyword  string
	category string
	card     bool
}

// Classifier assigns categories and merchants. It holds only immutable rule
// tables and is safe for concurrent use.
type Classifier struct {
	rules      *Rules
	categories []compiledCategory
	card       []MerchantMatcher
	entity     []MerchantMatcher
}

// New builds a classifier from a validated rule set.
func New(rules *Rules) (*Classifier, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	c := &Classifier{rules: rules}
	for _, rule := range rules.Categories {
		c.categories = append(c.categories, compiledCategory{
			keyword:  strings.ToLower(rule.Keyword),
			category: rule.Category,
			card:     rule.Merchants == MerchantStrategyCard,
		})
	}

	c.card = []MerchantMatcher{aliasMatcher(rules.CardMerchants)}
	for _, p := range rules.CardExtractors {
		c.card = append(c.card, captureMatcher(regexp.MustCompile(p)))
	}
	c.entity = []MerchantMatcher{entityMatcher(rules.Entities), firstWord}

	return c, nil
}

// NewDefault builds a classifier from the embedded rule set.
func NewDefault() (*Classifier, error) {
	rules, err := DefaultRules()
	if err != nil {
		return nil, err
	}
	return New(rules)
}

// Resolve determines the category and merchant of a description.
func (c *Classifier) Resolve(description string) Resolution {
	category, card := c.category(description)

	if card {
		if name, ok := firstMatch(description, c.card); ok {
			return Resolution{Category: category, Merchant: name}
		}
		return Resolution{Category: category, Merchant: c.rules.OtherMerchant}
	}
	if name, ok := firstMatch(description, c.entity); ok {
		return Resolution{Category: category, Merchant: name}
	}
	return Resolution{Category: category, Merchant: c.rules.UnknownMerchant}
}

func (c *Classifier) category(description string) (string, bool) {
	lower := strings.ToLower(description)
	for _, rule := range c.categories {
		if strings.Contains(lower, rule.keyword) {
			return rule.category, rule.card
		}
	}
	return c.rules.DefaultCategory, false
}

// bucket accumulates one category; merchants keep first-seen order.
type bucket struct {
	category  string
	total     decimal.Decimal
	count     int
	merchants []models.MerchantAmount
	index     map[string]int
}

func (b *bucket) add(merchant string, amount decimal.Decimal) {
	b.total = b.total.Add(amount)
	b.count++
	if i, ok := b.index[merchant]; ok {
		b.merchants[i].Amount = b.merchants[i].Amount.Add(amount)
		return
	}
	b.index[merchant] = len(b.merchants)
	b.merchants = append(b.merchants, models.MerchantAmount{Name: merchant, Amount: amount})
}

// Classify buckets the debit transactions by category and returns the top
// categories by total amount. Credits are ignored.
func (c *Classifier) Classify(transactions []models.Transaction) []models.CategoryBucket {
	var order []*bucket
	byName := make(map[string]*bucket)

	for _, txn := range transactions {
		if !txn.IsDebit() {
			continue
		}
		res := c.Resolve(txn.Description)

		b, ok := byName[res.Category]
		if !ok {
			b = &bucket{category: res.Category, index: make(map[string]int)}
			byName[res.Category] = b
			order = append(order, b)
		}
		b.add(res.Merchant, txn.Debit)
	}

	result := make([]models.CategoryBucket, 0, len(order))
	for _, b := range order {
		merchants := b.merchants
		sort.SliceStable(merchants, func(i, j int) bool {
			return merchants[i].Amount.GreaterThan(merchants[j].Amount)
		})
		if len(merchants) > MaxMerchants {
			merchants = merchants[:MaxMerchants]
		}
		result = append(result, models.CategoryBucket{
			Category:         b.category,
			TotalAmount:      b.total.Round(2),
			TransactionCount: b.count,
			TopMerchants:     merchants,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalAmount.GreaterThan(result[j].TotalAmount)
	})
	if len(result) > MaxCategories {
		result = result[:MaxCategories]
	}
	return result
}
