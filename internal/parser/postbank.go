package parser

import (
	"strings"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// PostbankParser handles German Postbank account statements.
//
// Every booking spans at least two lines:
//
//	01.07. 01.07. Kartenzahlung -45,30
//	2023 2023 Verwendungszweck/Kundenreferenz LIDL DIENSTL
//	... further description lines ...
//
// The first line carries booking date, value date and the signed amount, the
// second repeats the year of both dates. Description lines follow until the
// next booking starts or the lookahead limit is reached. Pages are parsed
// independently; a booking cut by a page break ends at the page break.
type PostbankParser struct {
	// MaxLookahead is the furthest line, counted from the header line,
	// that may still belong to the description.
	MaxLookahead int
	// BoilerplatePrefixes mark footer lines that are dropped from descriptions.
	BoilerplatePrefixes []string
}

// DefaultMaxLookahead is the description lookahead used by NewPostbankParser.
const DefaultMaxLookahead = 10

// NewPostbankParser returns a parser with the standard Postbank settings.
func NewPostbankParser() *PostbankParser {
	return &PostbankParser{
		MaxLookahead:        DefaultMaxLookahead,
		BoilerplatePrefixes: []string{"Auszug"},
	}
}

func (p *PostbankParser) BankName() string {
	return "Postbank"
}

type scanState int

const (
	seekingHeader scanState = iota
	accumulatingDescription
)

// candidate is a booking whose header and year line have been seen.
type candidate struct {
	start       int
	year        string
	day, month  string
	amountText  string
	parts       []string
	debugOffset int
}

func (p *PostbankParser) Parse(pages []string) (*models.StatementInfo, error) {
	info := &models.StatementInfo{}
	for i, page := range pages {
		p.parsePage(i+1, page, info)
	}
	return info, nil
}

func (p *PostbankParser) parsePage(pageNum int, page string, info *models.StatementInfo) {
	lines := strings.Split(page, "\n")
	state := seekingHeader
	var cur *candidate

	i := 0
	for i < len(lines) {
		line := normalizeLine(lines[i])

		switch state {
		case seekingHeader:
			hm := headerPattern.FindStringSubmatch(line)
			if hm == nil {
				p.note(info, pageNum, i, line, models.LineNoise)
				i++
				continue
			}
			var ym []string
			if i+1 < len(lines) {
				ym = yearPattern.FindStringSubmatch(normalizeLine(lines[i+1]))
			}
			if ym == nil {
				// A header without its year line is noise; only this line is consumed.
				p.note(info, pageNum, i, line, models.LineNoise)
				i++
				continue
			}

			cur = &candidate{
				start:       i,
				year:        ym[1],
				day:         hm[1],
				month:       hm[2],
				amountText:  hm[5],
				parts:       []string{hm[5]},
				debugOffset: len(info.DebugLines),
			}
			cur.parts = append(cur.parts, ym[3])
			p.note(info, pageNum, i, line, models.LineHeader)
			p.note(info, pageNum, i+1, normalizeLine(lines[i+1]), models.LineYear)
			state = accumulatingDescription
			i += 2

		case accumulatingDescription:
			if headerStartPattern.MatchString(line) || i-cur.start > p.lookahead() {
				// The current line is not consumed; it is rescanned for a header.
				p.finish(cur, info)
				cur = nil
				state = seekingHeader
				continue
			}
			switch {
			case line == "":
			case p.isBoilerplate(line):
				p.note(info, pageNum, i, line, models.LineBoilerplate)
			default:
				cur.parts = append(cur.parts, line)
				p.note(info, pageNum, i, line, models.LineDescription)
			}
			i++
		}
	}

	if state == accumulatingDescription {
		p.finish(cur, info)
	}
}

// finish emits the candidate as a transaction, or drops the whole span when
// it has no usable amount, date or description.
func (p *PostbankParser) finish(c *candidate, info *models.StatementInfo) {
	debit, credit, found := extractAmount(c.amountText)
	date, validDate := composeDate(c.year, c.month, c.day)
	description := cleanDescription(c.parts)

	if !found || !validDate || description == "" || (!debit.IsPositive() && !credit.IsPositive()) {
		for k := c.debugOffset; k < len(info.DebugLines); k++ {
			if info.DebugLines[k].Result == models.LineBoilerplate {
				continue
			}
			info.DebugLines[k].Result = models.LineDropped
			info.SkippedLines++
		}
		return
	}

	info.Transactions = append(info.Transactions, models.Transaction{
		Date:        date,
		Description: description,
		Debit:       debit,
		Credit:      credit,
	})
}

func (p *PostbankParser) note(info *models.StatementInfo, pageNum, idx int, line, result string) {
	if line == "" {
		return
	}
	if result == models.LineNoise || result == models.LineBoilerplate {
		info.SkippedLines++
	}
	info.DebugLines = append(info.DebugLines, models.DebugLine{
		Page:    pageNum,
		LineNum: idx + 1,
		Text:    truncate(line, 120),
		Result:  result,
	})
}

func (p *PostbankParser) lookahead() int {
	if p.MaxLookahead <= 0 {
		return DefaultMaxLookahead
	}
	return p.MaxLookahead
}

func (p *PostbankParser) isBoilerplate(line string) bool {
	for _, prefix := range p.BoilerplatePrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
