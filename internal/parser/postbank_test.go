package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

func TestPostbankParser_Parse(t *testing.T) {
	p := NewPostbankParser()

	pages := []string{
		`Postbank Giro plus
Kontoauszug 7/2023
Buchung Wert Vorgang/Buchungsinformation Soll Haben
01.07. 01.07. Kartenzahlung -45,30
2023 2023 Verwendungszweck/Kundenreferenz LIDL DIENSTL 1234
Referenz 1234567890`,
		`02.07. 02.07. Gutschrift +1.000,00
2023 2023 Lohn/Gehalt ACME GmbH
Auszug 7 Seite 2 von 2`,
	}

	info, err := p.Parse(pages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(info.Transactions) != 2 {
		t.Fatalf("transactions: got %d, want 2", len(info.Transactions))
	}

	txn := info.Transactions[0]
	if txn.Date != "2023-07-01" {
		t.Errorf("txn[0].Date: got %q, want %q", txn.Date, "2023-07-01")
	}
	if !txn.Debit.Equal(decimal.RequireFromString("45.30")) {
		t.Errorf("txn[0].Debit: got %s, want 45.30", txn.Debit)
	}
	if !txn.Credit.IsZero() {
		t.Errorf("txn[0].Credit: got %s, want 0", txn.Credit)
	}
	want := "Kartenzahlung Verwendungszweck/Kundenreferenz LIDL DIENSTL 1234 Referenz 1234567890"
	if txn.Description != want {
		t.Errorf("txn[0].Description: got %q, want %q", txn.Description, want)
	}

	txn = info.Transactions[1]
	if txn.Date != "2023-07-02" {
		t.Errorf("txn[1].Date: got %q, want %q", txn.Date, "2023-07-02")
	}
	if !txn.Credit.Equal(decimal.RequireFromString("1000")) {
		t.Errorf("txn[1].Credit: got %s, want 1000.00", txn.Credit)
	}
	if !txn.Debit.IsZero() {
		t.Errorf("txn[1].Debit: got %s, want 0", txn.Debit)
	}
	if txn.Description != "Gutschrift Lohn/Gehalt ACME GmbH" {
		t.Errorf("txn[1].Description: got %q", txn.Description)
	}

	// Three header lines on page 1 and the footer on page 2.
	if info.SkippedLines != 4 {
		t.Errorf("skipped lines: got %d, want 4", info.SkippedLines)
	}
}

func TestPostbankParser_AmountDirection(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantDebit  string
		wantCredit string
	}{
		{"negative is debit", "05.07. 05.07. Lastschrift -12,00", "12", "0"},
		{"positive is credit", "05.07. 05.07. Gutschrift +50,00", "0", "50"},
		{"unsigned is debit", "05.07. 05.07. Lastschrift 19,99", "19.99", "0"},
		{"thousands separator", "05.07. 05.07. Überweisung -1.234,56", "1234.56", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := NewPostbankParser().Parse([]string{tt.header + "\n2023 2023 Text"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(info.Transactions) != 1 {
				t.Fatalf("transactions: got %d, want 1", len(info.Transactions))
			}
			txn := info.Transactions[0]
			if !txn.Debit.Equal(decimal.RequireFromString(tt.wantDebit)) {
				t.Errorf("debit: got %s, want %s", txn.Debit, tt.wantDebit)
			}
			if !txn.Credit.Equal(decimal.RequireFromString(tt.wantCredit)) {
				t.Errorf("credit: got %s, want %s", txn.Credit, tt.wantCredit)
			}
		})
	}
}

func TestPostbankParser_HeaderWithoutYearIsNoise(t *testing.T) {
	page := `01.07. 01.07. Kartenzahlung -45,30
kein Jahr
02.07. 02.07. Lastschrift -9,99
2023 2023 Netflix International`

	info, err := NewPostbankParser().Parse([]string{page})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info.Transactions) != 1 {
		t.Fatalf("transactions: got %d, want 1", len(info.Transactions))
	}
	if info.Transactions[0].Date != "2023-07-02" {
		t.Errorf("date: got %q, want %q", info.Transactions[0].Date, "2023-07-02")
	}
	if info.Transactions[0].Description != "Lastschrift Netflix International" {
		t.Errorf("description: got %q", info.Transactions[0].Description)
	}
}

func TestPostbankParser_HeaderOnLastLine(t *testing.T) {
	info, err := NewPostbankParser().Parse([]string{"01.07. 01.07. Kartenzahlung -45,30"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info.Transactions) != 0 {
		t.Fatalf("transactions: got %d, want 0", len(info.Transactions))
	}
	if info.SkippedLines != 1 {
		t.Errorf("skipped lines: got %d, want 1", info.SkippedLines)
	}
}

func TestPostbankParser_LookaheadLimit(t *testing.T) {
	lines := []string{"03.07. 03.07. Dauerauftrag -500,00", "2023 2023 Miete"}
	for n := 2; n <= 12; n++ {
		lines = append(lines, fmt.Sprintf("Zeile %d", n))
	}

	info, err := NewPostbankParser().Parse([]string{strings.Join(lines, "\n")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info.Transactions) != 1 {
		t.Fatalf("transactions: got %d, want 1", len(info.Transactions))
	}

	desc := info.Transactions[0].Description
	if !strings.HasSuffix(desc, "Zeile 10") {
		t.Errorf("description should end at line offset 10, got %q", desc)
	}
	if strings.Contains(desc, "Zeile 11") {
		t.Errorf("description exceeded lookahead: %q", desc)
	}
	if info.SkippedLines != 2 {
		t.Errorf("skipped lines: got %d, want 2", info.SkippedLines)
	}
}

func TestPostbankParser_CustomLookahead(t *testing.T) {
	p := &PostbankParser{MaxLookahead: 3}
	page := "03.07. 03.07. Dauerauftrag -500,00\n2023 2023 Miete\nA\nB\nC"

	info, err := p.Parse([]string{page})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info.Transactions) != 1 {
		t.Fatalf("transactions: got %d, want 1", len(info.Transactions))
	}
	if got := info.Transactions[0].Description; got != "Dauerauftrag Miete A B" {
		t.Errorf("description: got %q, want %q", got, "Dauerauftrag Miete A B")
	}
}

func TestPostbankParser_StopsAtNextHeader(t *testing.T) {
	page := `01.07. 01.07. Kartenzahlung -10,00
2023 2023 REWE Markt
Filiale 42
01.07. 01.07. Kartenzahlung -20,00
2023 2023 EDEKA`

	info, err := NewPostbankParser().Parse([]string{page})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info.Transactions) != 2 {
		t.Fatalf("transactions: got %d, want 2", len(info.Transactions))
	}
	if got := info.Transactions[0].Description; got != "Kartenzahlung REWE Markt Filiale 42" {
		t.Errorf("txn[0].Description: got %q", got)
	}
	if got := info.Transactions[1].Description; got != "Kartenzahlung EDEKA" {
		t.Errorf("txn[1].Description: got %q", got)
	}
}

func TestPostbankParser_DropsIncompleteSpans(t *testing.T) {
	tests := []struct {
		name string
		page string
	}{
		{"no amount", "01.07. 01.07. Kartenzahlung\n2023 2023 LIDL"},
		{"zero amount", "01.07. 01.07. Kartenzahlung 0,00\n2023 2023 LIDL"},
		{"only amount", "01.07. 01.07. -45,30\n2023 2023 45,30"},
		{"impossible date", "31.02. 31.02. Kartenzahlung -45,30\n2023 2023 LIDL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := NewPostbankParser().Parse([]string{tt.page})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(info.Transactions) != 0 {
				t.Fatalf("transactions: got %d, want 0", len(info.Transactions))
			}
			for _, dl := range info.DebugLines {
				if dl.Result != models.LineDropped {
					t.Errorf("line %d: got result %q, want %q", dl.LineNum, dl.Result, models.LineDropped)
				}
			}
			if info.SkippedLines != 2 {
				t.Errorf("skipped lines: got %d, want 2", info.SkippedLines)
			}
		})
	}
}

func TestPostbankParser_PagesAreIndependent(t *testing.T) {
	pages := []string{
		"01.07. 01.07. Kartenzahlung -45,30",
		"2023 2023 LIDL",
	}

	info, err := NewPostbankParser().Parse(pages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info.Transactions) != 0 {
		t.Fatalf("transactions: got %d, want 0 (no stitching across pages)", len(info.Transactions))
	}
}

func TestPostbankParser_RecordInvariants(t *testing.T) {
	page := `01.07. 01.07. Kartenzahlung -45,30
2023 2023 LIDL
02.07. 02.07. Gutschrift +12,00
2023 2023 Erstattung
03.07. 03.07. Kartenzahlung 0,00
2023 2023 Storno
04.07. 04.07. -1,00
2023 2023 -1,00`

	info, err := NewPostbankParser().Parse([]string{page, "", "\n\n"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info.Transactions) != 2 {
		t.Fatalf("transactions: got %d, want 2", len(info.Transactions))
	}
	for i, txn := range info.Transactions {
		if txn.Debit.IsNegative() || txn.Credit.IsNegative() {
			t.Errorf("txn[%d]: negative amount debit=%s credit=%s", i, txn.Debit, txn.Credit)
		}
		if !txn.Debit.IsPositive() && !txn.Credit.IsPositive() {
			t.Errorf("txn[%d]: both amounts zero", i)
		}
		if txn.Description == "" {
			t.Errorf("txn[%d]: empty description", i)
		}
		if !txn.Balance.IsZero() {
			t.Errorf("txn[%d]: balance should not be populated, got %s", i, txn.Balance)
		}
	}
}

func TestPostbankParser_YearLineNeedsText(t *testing.T) {
	info, err := NewPostbankParser().Parse([]string{"01.07. 01.07. Kartenzahlung -45,30\n2023 2023"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info.Transactions) != 0 {
		t.Fatalf("transactions: got %d, want 0", len(info.Transactions))
	}
	if info.SkippedLines != 2 {
		t.Errorf("skipped lines: got %d, want 2", info.SkippedLines)
	}
}
