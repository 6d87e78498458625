package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/phontan/ai-spend-tracker/internal/scanning"
	"github.com/phontan/ai-spend-tracker/internal/statement"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	fs := ff.NewFlagSet("ai-spend")
	var (
		inputDir    = fs.StringLong("input", "./statements", "Directory of statement page images (or PDFs with --render-pdfs)")
		pagesDir    = fs.StringLong("pages", "", "Directory for rendered page images (defaults to <input>/pages when rendering)")
		renderPDFs  = fs.BoolLong("render-pdfs", "Render PDFs in the input directory to page images first")
		outputDir   = fs.StringLong("output", "./output", "Directory for exported files")
		dbPath      = fs.StringLong("db", "ai-spend.db", "Ledger database file path")
		rulesPath   = fs.StringLong("rules", "", "YAML file with ordered classification rules (built-in rules if empty)")
		scannerType = fs.StringLong("scanner", "gemini", "Scanner type: 'gemini' or 'ollama'")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL   = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = fs.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, qwen2-vl)")
		workers     = fs.IntLong("workers", 2, "Extraction worker pool size")
		minInterval = fs.DurationLong("min-interval", time.Second, "Global minimum delay between extraction calls")
		pageTimeout = fs.DurationLong("page-timeout", 120*time.Second, "Per-page extraction timeout")
		appendMode  = fs.BoolLong("append", "Append to the ledger instead of rebuilding per document")
		currency    = fs.StringLong("currency", "THB", "Currency label for exports and the summary")
		ledgerCSV   = fs.StringLong("ledger-csv", "all_transactions.csv", "Full ledger CSV filename (empty to skip)")
		aiCSV       = fs.StringLong("ai-csv", "ai_transactions.csv", "Classified transactions CSV filename (empty to skip)")
		sheetsCSV   = fs.StringLong("sheets-csv", "ai_transactions_for_sheets.csv", "Google-Sheets import CSV filename (empty to skip)")
		summaryXLSX = fs.StringLong("xlsx", "ai_spend_summary.xlsx", "Summary workbook filename (empty to skip)")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("AI_SPEND"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional first step: rasterize PDF statements into page images.
	scanDir := *inputDir
	if *renderPDFs {
		dir := *pagesDir
		if dir == "" {
			dir = *inputDir + "/pages"
		}
		slog.Info("Rendering PDF statements...", "input", *inputDir, "pages", dir)
		written, err := scanning.RenderDirectory(*inputDir, dir)
		if err != nil {
			slog.Error("Failed to render PDFs", "error", err)
			os.Exit(1)
		}
		slog.Info("Rendered page images", "count", written)
		scanDir = dir
	}

	slog.Info("Opening ledger database...", "path", *dbPath)
	store, err := statement.NewBoltLedger(*dbPath)
	if err != nil {
		slog.Error("Failed to open ledger database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	var scanner scanning.Scanner
	switch *scannerType {
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini scanner...", "model", *geminiModel)
		scanner, err = scanning.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama scanner...", "url", *ollamaURL, "model", *ollamaModel)
		scanner, err = scanning.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid scanner type", "type", *scannerType, "valid", "gemini or ollama")
		os.Exit(1)
	}
	defer scanner.Close()

	rules := statement.DefaultRules()
	if *rulesPath != "" {
		rules, err = statement.LoadRules(*rulesPath)
		if err != nil {
			slog.Error("Failed to load classification rules", "path", *rulesPath, "error", err)
			os.Exit(1)
		}
	}
	classifier, err := statement.NewClassifier(rules)
	if err != nil {
		slog.Error("Failed to compile classification rules", "error", err)
		os.Exit(1)
	}

	storage, err := statement.NewLocalStorage(*outputDir)
	if err != nil {
		slog.Error("Failed to initialize output storage", "error", err)
		os.Exit(1)
	}

	service := statement.NewService(store, scanner, storage, classifier, statement.Options{
		Workers:       *workers,
		MinInterval:   *minInterval,
		PageTimeout:   *pageTimeout,
		Append:        *appendMode,
		Currency:      *currency,
		LedgerCSV:     *ledgerCSV,
		ClassifiedCSV: *aiCSV,
		SheetsCSV:     *sheetsCSV,
		SummaryXLSX:   *summaryXLSX,
	})

	report, err := service.Run(ctx, scanDir)
	if err != nil {
		var noInput *statement.NoInputError
		if errors.As(err, &noInput) {
			slog.Error("No statement pages to process", "dir", noInput.Dir)
		} else {
			slog.Error("Pipeline run failed", "error", err)
		}
		os.Exit(1)
	}

	fmt.Print(report.SummaryTable(*currency))
	fmt.Println()
	fmt.Print(report.CountsTable())
}
