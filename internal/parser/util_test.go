package parser

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"45,30", "45.30", false},
		{"1.234,56", "1234.56", false},
		{"1.234.567,89", "1234567.89", false},
		{"-12,00", "12.00", false},
		{"+50,00", "50.00", false},
		{"0,00", "0", false},
		{"", "0", false},
		{" 25,99 ", "25.99", false},
		{"abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.expected)) {
				t.Errorf("got %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		input      string
		wantDebit  string
		wantCredit string
		wantOK     bool
	}{
		{"Kartenzahlung -12,00", "12", "0", true},
		{"Gutschrift +50,00", "0", "50", true},
		{"Lastschrift 1.234,56", "1234.56", "0", true},
		{"SEPA Überweisung -1.000,00 Ref 3,50", "1000", "0", true},
		{"Kartenzahlung ohne Betrag", "0", "0", false},
		{"Betrag 12.5", "0", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			debit, credit, ok := extractAmount(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if !debit.Equal(decimal.RequireFromString(tt.wantDebit)) {
				t.Errorf("debit: got %s, want %s", debit, tt.wantDebit)
			}
			if !credit.Equal(decimal.RequireFromString(tt.wantCredit)) {
				t.Errorf("credit: got %s, want %s", credit, tt.wantCredit)
			}
		})
	}
}

func TestComposeDate(t *testing.T) {
	tests := []struct {
		year, month, day string
		expected         string
		ok               bool
	}{
		{"2023", "07", "01", "2023-07-01", true},
		{"2024", "02", "29", "2024-02-29", true},
		{"2023", "02", "29", "", false},
		{"2023", "13", "01", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.year+tt.month+tt.day, func(t *testing.T) {
			got, ok := composeDate(tt.year, tt.month, tt.day)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		name     string
		parts    []string
		expected string
	}{
		{"removes signed amount", []string{"Kartenzahlung -45,30", "LIDL"}, "Kartenzahlung LIDL"},
		{"removes every amount", []string{"Miete 1.200,00 +3,00", "Nebenkosten 50,00"}, "Miete Nebenkosten"},
		{"collapses whitespace", []string{"  Gutschrift   ", "Lohn\tGehalt"}, "Gutschrift Lohn Gehalt"},
		{"only amounts", []string{"-45,30"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleanDescription(tt.parts)
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestHeaderAndYearPatterns(t *testing.T) {
	tests := []struct {
		input      string
		wantHeader bool
		wantYear   bool
	}{
		{"01.07. 01.07. Kartenzahlung -45,30", true, false},
		{"01.07. 02.07.", false, false},
		{"1.07. 01.07. Kartenzahlung", false, false},
		{"2023 2023 Verwendungszweck", false, true},
		{"2023 2023", false, false},
		{"2023 Verwendungszweck", false, false},
		{"Kontoauszug Juli 2023", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := headerPattern.MatchString(tt.input); got != tt.wantHeader {
				t.Errorf("header: got %v, want %v", got, tt.wantHeader)
			}
			if got := yearPattern.MatchString(tt.input); got != tt.wantYear {
				t.Errorf("year: got %v, want %v", got, tt.wantYear)
			}
		})
	}
}
