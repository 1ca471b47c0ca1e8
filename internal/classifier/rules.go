package classifier

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// MerchantStrategyCard selects the card-payment merchant chain for a category.
const MerchantStrategyCard = "card"

// CategoryRule maps a description keyword to a category.
type CategoryRule struct {
	Keyword  string `yaml:"keyword"`
	Category string `yaml:"category"`
	// Merchants selects how merchants are resolved; empty means the entity allow-list.
	Merchants string `yaml:"merchants"`
}

// MerchantAlias maps a description substring to a canonical merchant name.
type MerchantAlias struct {
	Match string `yaml:"match"`
	Name  string `yaml:"name"`
}

// Rules holds the ordered, data-driven classification tables.
type Rules struct {
	DefaultCategory string          `yaml:"default_category"`
	UnknownMerchant string          `yaml:"unknown_merchant"`
	OtherMerchant   string          `yaml:"other_merchant"`
	Categories      []CategoryRule  `yaml:"categories"`
	Entities        []string        `yaml:"entities"`
	CardMerchants   []MerchantAlias `yaml:"card_merchants"`
	CardExtractors  []string        `yaml:"card_extractors"`
}

// DefaultRules returns the rule set shipped with the binary.
func DefaultRules() (*Rules, error) {
	return ParseRules(defaultRules)
}

// LoadRules reads a rule set from a YAML file.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %q: %w", path, err)
	}
	return ParseRules(data)
}

// ParseRules decodes and validates a YAML rule set.
func ParseRules(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate reports every problem found in the rule set.
func (r *Rules) Validate() error {
	var errs []error

	if strings.TrimSpace(r.DefaultCategory) == "" {
		errs = append(errs, errors.New("default_category must not be empty"))
	}
	if strings.TrimSpace(r.UnknownMerchant) == "" {
		errs = append(errs, errors.New("unknown_merchant must not be empty"))
	}
	if strings.TrimSpace(r.OtherMerchant) == "" {
		errs = append(errs, errors.New("other_merchant must not be empty"))
	}
	for i, c := range r.Categories {
		if c.Keyword == "" || c.Category == "" {
			errs = append(errs, fmt.Errorf("categories[%d]: keyword and category are required", i))
		}
		if c.Merchants != "" && c.Merchants != MerchantStrategyCard {
			errs = append(errs, fmt.Errorf("categories[%d]: unknown merchants strategy %q", i, c.Merchants))
		}
	}
	for i, m := range r.CardMerchants {
		if m.Match == "" || m.Name == "" {
			errs = append(errs, fmt.Errorf("card_merchants[%d]: match and name are required", i))
		}
	}
	for i, p := range r.CardExtractors {
		re, err := regexp.Compile(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("card_extractors[%d]: %w", i, err))
			continue
		}
		if re.NumSubexp() < 1 {
			errs = append(errs, fmt.Errorf("card_extractors[%d]: pattern needs a capture group", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid classification rules: %w", errors.Join(errs...))
	}
	return nil
}
