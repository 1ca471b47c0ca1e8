package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-analyzer/internal/analysis"
	"github.com/insightdelivered/statement-analyzer/internal/api"
	"github.com/insightdelivered/statement-analyzer/internal/classifier"
	"github.com/insightdelivered/statement-analyzer/internal/config"
	"github.com/insightdelivered/statement-analyzer/internal/logger"
	"github.com/insightdelivered/statement-analyzer/internal/models"
	"github.com/insightdelivered/statement-analyzer/internal/report"
	"github.com/insightdelivered/statement-analyzer/internal/writer"
)

const version = "1.0.0"

func main() {
	// CLI flags
	jsonFlag := flag.Bool("json", false, "Print the analysis as JSON instead of a summary")
	exportFlag := flag.String("export", "", "Write all transactions to a .csv or .xlsx file")
	serveFlag := flag.Bool("serve", false, "Start the HTTP API instead of analyzing files")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Bank Statement Analyzer
by Insight Delivered

Reads Postbank account statement PDFs and reports totals, top expenses and
revenues, a cumulative cash-flow series and spending by category.

Usage:
  statement-analyzer [flags] <statement.pdf> [statement2.pdf ...]
  statement-analyzer -serve

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Summarize one statement
  statement-analyzer juli.pdf

  # Machine-readable output for several months
  statement-analyzer -json juni.pdf juli.pdf

  # Export every transaction with its category
  statement-analyzer -export buchungen.xlsx juni.pdf juli.pdf

  # Run the API (configured through the environment or .env)
  statement-analyzer -serve
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("statement-analyzer v%s\n", version)
		os.Exit(0)
	}

	if *helpFlag || (!*serveFlag && flag.NArg() == 0) {
		flag.Usage()
		os.Exit(0)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fatalf("%v\n", err)
	}

	log := logger.NewForEnvironment(cfg.Environment, cfg.LogLevel)
	if !*serveFlag {
		// Keep stdout clean for the report.
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)
	}

	c, err := newClassifier(cfg)
	if err != nil {
		fatalf("%v\n", err)
	}
	svc := analysis.NewService(c, cfg.AnalyzeConcurrency, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *serveFlag {
		app := api.NewApp(&api.Handler{Service: svc, Config: cfg, Logger: log, Version: version})
		if err := api.Serve(ctx, app, cfg.Addr(), log); err != nil {
			log.Fatal().Err(err).Msg("Server stopped")
		}
		return
	}

	if err := run(ctx, svc, c, flag.Args(), *jsonFlag, *exportFlag); err != nil {
		fatalf("Error: %v\n", err)
	}
}

func newClassifier(cfg *config.Config) (*classifier.Classifier, error) {
	if cfg.RulesFile == "" {
		return classifier.NewDefault()
	}
	rules, err := classifier.LoadRules(cfg.RulesFile)
	if err != nil {
		return nil, err
	}
	return classifier.New(rules)
}

func run(ctx context.Context, svc *analysis.Service, c *classifier.Classifier, inputFiles []string, asJSON bool, exportPath string) error {
	docs := make([]analysis.Document, 0, len(inputFiles))
	for _, inputPath := range inputFiles {
		doc, err := readDocument(inputPath)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	batch, err := svc.AnalyzeDocuments(ctx, docs)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report.NewBatchReport(batch)); err != nil {
			return fmt.Errorf("JSON output failed: %w", err)
		}
	} else {
		printSummary(batch)
	}

	if exportPath != "" {
		var all []models.Transaction
		for _, res := range batch.Results {
			all = append(all, res.Info.Transactions...)
		}
		export := &writer.Export{Transactions: all, Categories: c.Classify(all)}
		if err := writer.WriteToFile(exportPath, c, export); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		if !asJSON {
			fmt.Printf("Exported %d transaction(s) to %s\n", len(all), exportPath)
		}
	}

	if len(batch.Results) == 0 {
		return fmt.Errorf("no valid transactions found in %d file(s)", len(docs))
	}
	return nil
}

func readDocument(inputPath string) (analysis.Document, error) {
	if ext := strings.ToLower(filepath.Ext(inputPath)); ext != ".pdf" {
		return analysis.Document{}, fmt.Errorf("expected .pdf file, got %q", inputPath)
	}
	data, err := os.ReadFile(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return analysis.Document{}, fmt.Errorf("input file not found: %s", inputPath)
		}
		return analysis.Document{}, err
	}
	return analysis.Document{FileName: filepath.Base(inputPath), Data: data}, nil
}

func printSummary(batch *models.BatchResult) {
	for _, res := range batch.Results {
		a := res.Analysis
		fmt.Printf("%s\n", res.FileName)
		fmt.Printf("  Pages: %d, transactions: %d, skipped lines: %d\n",
			res.PageCount, len(res.Info.Transactions), res.Info.SkippedLines)
		fmt.Printf("  Total debits:  %12s\n", a.TotalDebits.StringFixed(2))
		fmt.Printf("  Total credits: %12s\n", a.TotalCredits.StringFixed(2))

		printRanked("Top expenses", a.TopExpenses)
		printRanked("Top revenues", a.TopRevenues)

		if len(a.SpendingByCategory) > 0 {
			fmt.Println("  Spending by category:")
			for _, b := range a.SpendingByCategory {
				fmt.Printf("    %-16s %10s  (%d)\n", b.Category, b.TotalAmount.StringFixed(2), b.TransactionCount)
				for _, m := range b.TopMerchants {
					fmt.Printf("      %-24s %10s\n", m.Name, m.Amount.StringFixed(2))
				}
			}
		}
		fmt.Println()
	}

	for _, s := range batch.Skipped {
		fmt.Printf("Skipped %s: %s\n", s.FileName, s.Reason)
	}
}

func printRanked(title string, list []models.RankedTransaction) {
	if len(list) == 0 {
		return
	}
	fmt.Printf("  %s:\n", title)
	for _, t := range list {
		fmt.Printf("    %s  %10s  %s\n", t.Date, t.Amount.StringFixed(2), t.Description)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
