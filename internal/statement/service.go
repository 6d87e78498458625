package statement

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/phontan/ai-spend-tracker/internal/scanning"
)

// Options configures a pipeline run.
type Options struct {
	Workers     int           // bounded extraction worker pool size
	MinInterval time.Duration // global minimum delay between extraction calls
	PageTimeout time.Duration // per-page extraction deadline
	Append      bool          // append to the ledger instead of rebuilding per document
	Currency    string

	// Output filenames; an empty name skips that export.
	LedgerCSV     string
	ClassifiedCSV string
	SheetsCSV     string
	SummaryXLSX   string
}

func (o Options) withDefaults() Options {
	if o.Workers < 1 {
		o.Workers = 2
	}
	if o.PageTimeout <= 0 {
		o.PageTimeout = 120 * time.Second
	}
	if o.Currency == "" {
		o.Currency = "THB"
	}
	return o
}

// Service runs the extraction-and-classification pipeline.
type Service struct {
	store      LedgerStore
	scanner    scanning.Scanner
	storage    Storage
	classifier *Classifier
	limiter    *scanning.Limiter
	opts       Options
}

// NewService creates a pipeline Service.
func NewService(store LedgerStore, scanner scanning.Scanner, storage Storage, classifier *Classifier, opts Options) *Service {
	opts = opts.withDefaults()
	return &Service{
		store:      store,
		scanner:    scanner,
		storage:    storage,
		classifier: classifier,
		limiter:    scanning.NewLimiter(opts.MinInterval),
		opts:       opts,
	}
}

// pageResult holds the outcome for one page; exactly one of records or err is
// meaningful.
type pageResult struct {
	records []TransactionRecord
	err     error
}

// Run processes every page image in inputDir: extract, parse, rebuild the
// ledger, classify, aggregate, export. Per-page extraction failures are
// reported as warnings and never abort the run; only the absence of any input
// pages is an error.
func (s *Service) Run(ctx context.Context, inputDir string) (*RunReport, error) {
	pages, err := EnumeratePages(inputDir)
	if err != nil {
		return nil, err
	}

	report := NewRunReport()
	report.PagesProcessed = len(pages)

	slog.Info("Processing statement pages", "run", report.RunID, "pages", len(pages))

	results := s.extractAll(ctx, pages)

	for i, page := range pages {
		result := results[i]
		if result.err != nil {
			failure := &ExtractionFailure{Page: page.Key, Err: result.err}
			report.PagesFailed++
			report.addWarning(page.Key, result.err)
			slog.Warn("Page extraction failed", "document", page.Key.DocumentID, "page", page.Key.PageNumber, "error", failure.Err)
			continue
		}
		if len(result.records) == 0 {
			report.PagesEmpty++
			continue
		}
		report.RecordsParsed += len(result.records)
	}

	if err := s.updateLedger(pages, results); err != nil {
		return nil, fmt.Errorf("updating ledger: %w", err)
	}

	ledger, err := s.store.AllRecords()
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	classified := s.classify(ledger, report)
	report.Summaries, report.Grand = Summarize(classified)
	report.RecordsClassified = len(classified)

	if err := s.export(ledger, classified, report); err != nil {
		return nil, err
	}

	return report, nil
}

// extractAll runs the extraction adapter over all pages with a bounded worker
// pool. Results are collected per page index, so ledger order never depends
// on worker scheduling.
func (s *Service) extractAll(ctx context.Context, pages []Page) []pageResult {
	results := make([]pageResult, len(pages))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.extractPage(ctx, pages[i])
			}
		}()
	}

	for i := range pages {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func (s *Service) extractPage(ctx context.Context, page Page) pageResult {
	data, err := os.ReadFile(page.Path)
	if err != nil {
		return pageResult{err: fmt.Errorf("reading page image: %w", err)}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return pageResult{err: err}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.PageTimeout)
	defer cancel()

	text, err := s.scanner.ExtractPage(callCtx, data, page.ContentType)
	if err != nil {
		return pageResult{err: err}
	}

	return pageResult{records: ParseExtraction(page.Key, text)}
}

// updateLedger writes this run's records into the store, one document at a
// time. In rebuild mode (the default) each document's records replace
// whatever a previous run stored, so re-running over the same input is
// idempotent. Failed pages contribute no records but do not block their
// document's successful pages.
func (s *Service) updateLedger(pages []Page, results []pageResult) error {
	var order []string
	byDocument := make(map[string][]TransactionRecord)

	// pages are sorted by PageKey, so per-document slices come out in page
	// order with intra-page order preserved.
	for i, page := range pages {
		id := page.Key.DocumentID
		if _, seen := byDocument[id]; !seen {
			order = append(order, id)
			byDocument[id] = nil
		}
		byDocument[id] = append(byDocument[id], results[i].records...)
	}

	for _, id := range order {
		var err error
		if s.opts.Append {
			err = s.store.AppendDocument(id, byDocument[id])
		} else {
			err = s.store.ReplaceDocument(id, byDocument[id])
		}
		if err != nil {
			return fmt.Errorf("storing document %s: %w", id, err)
		}
	}

	return nil
}

// classify tags every ledger record and keeps the ones belonging to a vendor
// category with a positive amount. Negative amounts are credits or refunds
// and stay out of the spend report.
func (s *Service) classify(ledger []TransactionRecord, report *RunReport) []ClassifiedRecord {
	var classified []ClassifiedRecord
	for _, record := range ledger {
		category := s.classifier.Classify(record.Description)
		if category == CategoryOther {
			continue
		}
		if record.Amount.Sign() <= 0 {
			report.RecordsExcludedBySign++
			continue
		}
		classified = append(classified, ClassifiedRecord{TransactionRecord: record, Category: category})
	}
	return classified
}

func (s *Service) export(ledger []TransactionRecord, classified []ClassifiedRecord, report *RunReport) error {
	exporter := NewExporter(s.storage, s.opts.Currency)

	if s.opts.LedgerCSV != "" {
		if err := exporter.WriteLedgerCSV(s.opts.LedgerCSV, ledger); err != nil {
			return err
		}
	}
	if s.opts.ClassifiedCSV != "" {
		if err := exporter.WriteClassifiedCSV(s.opts.ClassifiedCSV, classified); err != nil {
			return err
		}
	}
	if s.opts.SheetsCSV != "" {
		if err := exporter.WriteSheetsCSV(s.opts.SheetsCSV, classified); err != nil {
			return err
		}
	}
	if s.opts.SummaryXLSX != "" {
		if err := exporter.WriteSummaryXLSX(s.opts.SummaryXLSX, classified, report.Summaries, report.Grand); err != nil {
			return err
		}
	}

	return nil
}
