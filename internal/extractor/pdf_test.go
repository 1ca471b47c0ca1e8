package extractor

import (
	"context"
	"strings"
	"testing"
)

const samplePage = `Postbank Kontoauszug Seite 1
01.07. 01.07. Kartenzahlung -45,30
2023 2023 Verwendungszweck/Kundenreferenz LIDL DIENSTL 1234`

func TestIsReadable(t *testing.T) {
	e := NewPDFExtractor()

	tests := []struct {
		name  string
		pages []string
		want  bool
	}{
		{"statement text", []string{samplePage}, true},
		{"too short", []string{"Kontoauszug"}, false},
		{"no statement words", []string{strings.Repeat("lorem ipsum dolor ", 10)}, false},
		{"garbage glyphs", []string{strings.Repeat("ÿþýüĀāĂă", 20) + " konto"}, false},
		{"umlauts count as readable", []string{strings.Repeat("Überweisung Gebühr Straße ", 5)}, true},
		{"empty pages", []string{"", "  "}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.isReadable(tt.pages); got != tt.want {
				t.Errorf("isReadable() = %v, want %v (quality %.2f)", got, tt.want, textQuality(tt.pages))
			}
		})
	}
}

func TestTextQuality(t *testing.T) {
	if q := textQuality(nil); q != 0 {
		t.Errorf("empty input: got %v, want 0", q)
	}
	if q := textQuality([]string{"Saldo 1.234,56 €"}); q != 1 {
		t.Errorf("plain statement text: got %v, want 1", q)
	}
	if q := textQuality([]string{"ĀĀ"}); q != 0 {
		t.Errorf("foreign glyphs: got %v, want 0", q)
	}
}

func TestExtractPages_InvalidInput(t *testing.T) {
	e := NewPDFExtractor()

	inputs := map[string][]byte{
		"empty":     nil,
		"not a pdf": []byte("Kontoauszug als Text, kein PDF"),
		"truncated": []byte("%PDF-1.4\n1 0 obj\n<<"),
	}
	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			pages, err := e.ExtractPages(context.Background(), data)
			if err == nil {
				t.Fatalf("expected error, got %d pages", len(pages))
			}
			if pages != nil {
				t.Errorf("expected nil pages on error, got %v", pages)
			}
		})
	}
}

func TestPDFExtractor_ImplementsPageExtractor(t *testing.T) {
	var _ PageExtractor = NewPDFExtractor()
}
