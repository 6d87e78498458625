package statement

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"time"
)

// Exporter serializes ledger and classification results through a Storage.
type Exporter struct {
	storage  Storage
	currency string
}

// NewExporter creates an Exporter writing through storage. The currency label
// only affects column headers, not values.
func NewExporter(storage Storage, currency string) *Exporter {
	return &Exporter{storage: storage, currency: currency}
}

// WriteLedgerCSV writes the full transaction ledger.
func (e *Exporter) WriteLedgerCSV(filename string, records []TransactionRecord) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Statement ID", "Page", "Transaction Date", "Posting Date", "Description", e.amountHeader()}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.Page.DocumentID,
			fmt.Sprintf("%d", r.Page.PageNumber),
			r.TransactionDate,
			r.PostingDate,
			r.Description,
			r.Amount.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	if _, err := e.storage.Save(filename, buf.Bytes()); err != nil {
		return fmt.Errorf("saving ledger csv: %w", err)
	}
	return nil
}

// WriteClassifiedCSV writes the classified subset with its service column.
func (e *Exporter) WriteClassifiedCSV(filename string, records []ClassifiedRecord) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Statement ID", "Page", "Transaction Date", "Posting Date", "Description", "Service", e.amountHeader()}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.Page.DocumentID,
			fmt.Sprintf("%d", r.Page.PageNumber),
			r.TransactionDate,
			r.PostingDate,
			r.Description,
			string(r.Category),
			r.Amount.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	if _, err := e.storage.Save(filename, buf.Bytes()); err != nil {
		return fmt.Errorf("saving classified csv: %w", err)
	}
	return nil
}

// ledgerDateLayout is DD/MM/YY as it appears on the statements.
const ledgerDateLayout = "02/01/06"

// WriteSheetsCSV writes the Google-Sheets import layout: localized headers,
// month helper column, fixed quantity of 1 and total = amount, sorted by
// transaction date. The file starts with a UTF-8 BOM so spreadsheet apps
// detect the encoding.
func (e *Exporter) WriteSheetsCSV(filename string, records []ClassifiedRecord) error {
	type sheetRow struct {
		record ClassifiedRecord
		date   time.Time
	}

	rows := make([]sheetRow, 0, len(records))
	for _, r := range records {
		date, err := time.Parse(ledgerDateLayout, r.TransactionDate)
		if err != nil {
			// no date means no month column value; skip the row
			continue
		}
		rows = append(rows, sheetRow{record: r, date: date})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].date.Before(rows[j].date)
	})

	var buf bytes.Buffer
	buf.WriteString("\uFEFF")
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"วันที่", "month(hide)", "รายการ", "ราคา", "จำนวน", "รวม"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, row := range rows {
		amount := row.record.Amount.StringFixed(2)
		record := []string{
			row.record.TransactionDate,
			row.date.Month().String(),
			string(row.record.Category),
			amount,
			"1",
			amount,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	if _, err := e.storage.Save(filename, buf.Bytes()); err != nil {
		return fmt.Errorf("saving sheets csv: %w", err)
	}
	return nil
}

func (e *Exporter) amountHeader() string {
	if e.currency == "" {
		return "Amount"
	}
	return fmt.Sprintf("Amount (%s)", e.currency)
}
