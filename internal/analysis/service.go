// Package analysis runs documents through extraction, parsing and
// aggregation, one batch at a time.
package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/insightdelivered/statement-analyzer/internal/aggregator"
	"github.com/insightdelivered/statement-analyzer/internal/classifier"
	"github.com/insightdelivered/statement-analyzer/internal/extractor"
	"github.com/insightdelivered/statement-analyzer/internal/models"
	"github.com/insightdelivered/statement-analyzer/internal/parser"
)

var (
	// ErrExtraction wraps failures to obtain page text from a document.
	ErrExtraction = errors.New("text extraction failed")
	// ErrNoTransactions is returned for documents without any transaction.
	ErrNoTransactions = errors.New("no transactions found")
)

// Document is one uploaded statement.
type Document struct {
	FileName string
	Data     []byte
}

// Service analyzes statements. All collaborators are read-only after
// construction, so one Service may serve concurrent requests.
type Service struct {
	Extractor   extractor.PageExtractor
	Parser      parser.Parser
	Aggregator  *aggregator.Aggregator
	Concurrency int
	Logger      zerolog.Logger
}

// NewService wires the PDF extractor and the Postbank parser to an
// aggregator backed by c.
func NewService(c *classifier.Classifier, concurrency int, log zerolog.Logger) *Service {
	return &Service{
		Extractor:   extractor.NewPDFExtractor(),
		Parser:      parser.NewPostbankParser(),
		Aggregator:  aggregator.New(c),
		Concurrency: concurrency,
		Logger:      log,
	}
}

// AnalyzePages parses already extracted page text and summarizes it.
func (s *Service) AnalyzePages(fileName string, pages []string) (*models.DocumentResult, error) {
	info, err := s.Parser.Parse(pages)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", fileName, err)
	}
	if len(info.Transactions) == 0 {
		return nil, fmt.Errorf("%s: %w", fileName, ErrNoTransactions)
	}

	return &models.DocumentResult{
		FileName:  fileName,
		PageCount: len(pages),
		Info:      info,
		Analysis:  s.Aggregator.Analyze(info.Transactions),
	}, nil
}

// AnalyzeDocument extracts and analyzes a single document.
func (s *Service) AnalyzeDocument(ctx context.Context, doc Document) (*models.DocumentResult, error) {
	pages, err := s.Extractor.ExtractPages(ctx, doc.Data)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%s: %w: %w", doc.FileName, ErrExtraction, err)
	}
	return s.AnalyzePages(doc.FileName, pages)
}

// AnalyzeDocuments analyzes the documents concurrently. A document that
// fails or holds no transactions is reported in Skipped and does not affect
// the others. Results keep input order. The only error returned is the
// cancellation of ctx.
func (s *Service) AnalyzeDocuments(ctx context.Context, docs []Document) (*models.BatchResult, error) {
	batch := &models.BatchResult{
		ID:      uuid.NewString(),
		Results: []models.DocumentResult{},
		Skipped: []models.SkippedDocument{},
	}
	log := s.Logger.With().Str("batch_id", batch.ID).Logger()

	results := make([]*models.DocumentResult, len(docs))
	failures := make([]error, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit())
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.AnalyzeDocument(gctx, doc)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				failures[i] = err
				log.Warn().Err(err).Str("file", doc.FileName).Msg("document skipped")
				return nil
			}
			results[i] = res
			log.Info().
				Str("file", doc.FileName).
				Int("pages", res.PageCount).
				Int("transactions", len(res.Info.Transactions)).
				Int("skipped_lines", res.Info.SkippedLines).
				Msg("document analyzed")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, doc := range docs {
		switch {
		case results[i] != nil:
			batch.Results = append(batch.Results, *results[i])
		case failures[i] != nil:
			batch.Skipped = append(batch.Skipped, models.SkippedDocument{
				FileName: doc.FileName,
				Reason:   failures[i].Error(),
			})
		}
	}

	log.Info().
		Int("documents", len(docs)).
		Int("analyzed", len(batch.Results)).
		Int("skipped", len(batch.Skipped)).
		Msg("batch complete")
	return batch, nil
}

func (s *Service) limit() int {
	if s.Concurrency < 1 {
		return 1
	}
	return s.Concurrency
}
