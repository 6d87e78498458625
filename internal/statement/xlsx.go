package statement

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WriteSummaryXLSX writes a workbook with the classified records on one sheet
// and the per-category summary on another.
func (e *Exporter) WriteSummaryXLSX(filename string, records []ClassifiedRecord, summaries []CategorySummary, grand Summary) error {
	f := excelize.NewFile()

	const recordsSheet = "Transactions"
	const summarySheet = "Summary"

	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}

	write := func(sheet string, col, row int, value any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Statement ID", "Page", "Transaction Date", "Posting Date", "Description", "Service", e.amountHeader()}
	for i, h := range headers {
		if err := write(recordsSheet, i+1, 1, h); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, r := range records {
		row := i + 2
		values := []any{
			r.Page.DocumentID,
			r.Page.PageNumber,
			r.TransactionDate,
			r.PostingDate,
			r.Description,
			string(r.Category),
			r.Amount.InexactFloat64(),
		}
		for col, v := range values {
			if err := write(recordsSheet, col+1, row, v); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
		}
	}

	summaryHeaders := []string{"Service", "Transactions", fmt.Sprintf("Total (%s)", e.currency)}
	for i, h := range summaryHeaders {
		if err := write(summarySheet, i+1, 1, h); err != nil {
			return fmt.Errorf("writing summary header: %w", err)
		}
	}

	row := 2
	for _, s := range summaries {
		values := []any{string(s.Category), s.Count, s.Total.InexactFloat64()}
		for col, v := range values {
			if err := write(summarySheet, col+1, row, v); err != nil {
				return fmt.Errorf("writing summary row: %w", err)
			}
		}
		row++
	}
	totals := []any{"TOTAL", grand.Count, grand.Total.InexactFloat64()}
	for col, v := range totals {
		if err := write(summarySheet, col+1, row, v); err != nil {
			return fmt.Errorf("writing totals row: %w", err)
		}
	}

	_ = f.SetColWidth(recordsSheet, "A", "A", 14)
	_ = f.SetColWidth(recordsSheet, "C", "D", 14)
	_ = f.SetColWidth(recordsSheet, "E", "E", 48)
	_ = f.SetColWidth(recordsSheet, "F", "F", 20)
	_ = f.SetColWidth(summarySheet, "A", "A", 24)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}

	if _, err := e.storage.Save(filename, buf.Bytes()); err != nil {
		return fmt.Errorf("saving xlsx: %w", err)
	}
	return nil
}
