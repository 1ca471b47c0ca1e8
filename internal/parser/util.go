package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Line patterns of the Postbank statement layout.
var (
	// "01.07. 01.07. Kartenzahlung -45,30": booking date, value date, remainder
	headerPattern = regexp.MustCompile(`^(\d{2})\.(\d{2})\. (\d{2})\.(\d{2})\. (.+)$`)
	// Start of a header line, used to end a description
	headerStartPattern = regexp.MustCompile(`^\d{2}\.\d{2}\. \d{2}\.\d{2}\.`)
	// "2023 2023 Verwendungszweck/Kundenreferenz ..."
	yearPattern = regexp.MustCompile(`^(\d{4}) (\d{4}) (.+)$`)
	// Signed German amount: "-1.234,56", "+50,00", "12,00"
	amountPattern = regexp.MustCompile(`([+-]?)(\d{1,3}(?:\.\d{3})*,\d{2})`)
)

// parseAmount converts a German formatted amount like "1.234,56" to a decimal.
// A leading sign is ignored; the caller decides the direction.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "+-")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// extractAmount finds the first signed amount in text. A "+" sign marks a
// credit; "-" or no sign marks a debit.
func extractAmount(text string) (debit, credit decimal.Decimal, ok bool) {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, decimal.Zero, false
	}
	amount, err := parseAmount(m[2])
	if err != nil {
		return decimal.Zero, decimal.Zero, false
	}
	if m[1] == "+" {
		return decimal.Zero, amount, true
	}
	return amount, decimal.Zero, true
}

// stripAmounts removes every amount-shaped substring from s.
func stripAmounts(s string) string {
	return amountPattern.ReplaceAllString(s, "")
}

// composeDate builds an ISO date from the day-first stamp parts.
// It reports false for dates that do not exist in the calendar.
func composeDate(year, month, day string) (string, bool) {
	iso := year + "-" + month + "-" + day
	if _, err := time.Parse(time.DateOnly, iso); err != nil {
		return "", false
	}
	return iso, true
}

// cleanDescription joins the collected fragments, removes amounts and
// collapses runs of whitespace.
func cleanDescription(parts []string) string {
	joined := stripAmounts(strings.Join(parts, " "))
	return strings.Join(strings.Fields(joined), " ")
}

// normalizeLine cleans up common PDF extraction artifacts.
func normalizeLine(line string) string {
	line = strings.ReplaceAll(line, "\u200B", "")
	line = strings.ReplaceAll(line, "\u00A0", " ")
	line = strings.TrimRight(line, "\r")
	return strings.TrimSpace(line)
}

// truncate shortens long lines for debug display.
func truncate(line string, max int) string {
	r := []rune(line)
	if len(r) <= max {
		return line
	}
	return string(r[:max]) + "..."
}
