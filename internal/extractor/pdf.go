// Package extractor turns statement PDFs into per-page plain text.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadable is returned when no extraction method produced usable text.
var ErrUnreadable = errors.New("no readable text could be extracted from PDF")

// PageExtractor returns the text of each page of a document, in page order.
type PageExtractor interface {
	ExtractPages(ctx context.Context, data []byte) ([]string, error)
}

// PDFExtractor extracts text with github.com/ledongthuc/pdf. It tries row
// grouping first, then coordinate-based reconstruction, then font-aware
// plain text, and keeps the first result that looks like a statement.
type PDFExtractor struct {
	// MinChars is the least amount of non-blank text a readable result holds.
	MinChars int
	// MinQuality is the lowest acceptable share of ordinary characters.
	MinQuality float64
}

// NewPDFExtractor returns an extractor with the default readability limits.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{MinChars: 50, MinQuality: 0.6}
}

type method struct {
	name    string
	extract func(r *pdf.Reader, numPages int) []string
}

var methods = []method{
	{"rows", extractByRow},
	{"content", extractByContent},
	{"plain", extractByPagePlainText},
}

// ExtractPages implements PageExtractor. The returned slice has one entry per
// page; pages without text are empty strings.
func (e *PDFExtractor) ExtractPages(ctx context.Context, data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	for _, m := range methods {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages = m.extract(r, numPages)
		if e.isReadable(pages) {
			return pages, nil
		}
	}
	return nil, ErrUnreadable
}

// isReadable requires enough text, mostly ordinary characters, and at
// least one word every statement carries.
func (e *PDFExtractor) isReadable(pages []string) bool {
	if totalTextLen(pages) <= e.MinChars {
		return false
	}
	if textQuality(pages) <= e.MinQuality {
		return false
	}
	return containsStatementWords(pages)
}

// statementWords appear on practically every German bank statement.
var statementWords = []string{
	"kontoauszug", "auszug", "konto", "saldo", "buchung", "wert",
	"betrag", "datum", "lastschrift", "gutschrift", "überweisung",
	"kartenzahlung", "iban", "bic", "seite", "postbank",
	"balance", "account", "statement",
}

func containsStatementWords(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range statementWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

const readablePunct = ".,-/:;()'\"€$%&@#!?+=*"

// textQuality is the share of letters, digits, whitespace and common
// punctuation. Letters are limited to ASCII and German umlauts since
// identity-encoded fonts tend to decode to arbitrary accented glyphs.
func textQuality(pages []string) float64 {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			switch {
			case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r)):
				readable++
			case strings.ContainsRune("äöüÄÖÜß", r), strings.ContainsRune(readablePunct, r):
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

func extractByRow(r *pdf.Reader, numPages int) []string {
	pages := make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				words = append(words, word.S)
			}
			if line := strings.TrimSpace(strings.Join(words, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages[i-1] = strings.Join(lines, "\n")
	}
	return pages
}

// extractByContent rebuilds rows from the raw text objects: pieces are
// grouped by rounded Y (top to bottom) and ordered by X.
func extractByContent(r *pdf.Reader, numPages int) []string {
	type piece struct {
		x float64
		s string
	}

	pages := make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()

		rows := make(map[int][]piece)
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			y := int(math.Round(t.Y))
			rows[y] = append(rows[y], piece{x: t.X, s: t.S})
		}

		ys := make([]int, 0, len(rows))
		for y := range rows {
			ys = append(ys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(ys)))

		var lines []string
		for _, y := range ys {
			items := rows[y]
			sort.Slice(items, func(a, b int) bool { return items[a].x < items[b].x })

			var sb strings.Builder
			for j, item := range items {
				// Wide gaps separate columns.
				if j > 0 && item.x-items[j-1].x > 15 {
					sb.WriteString(" ")
				}
				sb.WriteString(item.s)
			}
			if line := strings.TrimSpace(sb.String()); line != "" {
				lines = append(lines, line)
			}
		}
		pages[i-1] = strings.Join(lines, "\n")
	}
	return pages
}

func extractByPagePlainText(r *pdf.Reader, numPages int) []string {
	pages := make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			f := page.Font(name)
			fonts[name] = &f
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		pages[i-1] = strings.TrimSpace(text)
	}
	return pages
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}
