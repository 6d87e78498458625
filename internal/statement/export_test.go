package statement

import (
	"bytes"
	"encoding/csv"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
)

var _ = Describe("Exporter", func() {
	var (
		storage  *mockStorage
		exporter *Exporter
	)

	BeforeEach(func() {
		storage = newMockStorage()
		exporter = NewExporter(storage, "THB")
	})

	Describe("WriteLedgerCSV", func() {
		It("should write a header row and one row per record", func() {
			records := []TransactionRecord{
				ledgerRecord("2025-01-15", 1, "Payment-KTB Internet", "-8851.33"),
				ledgerRecord("2025-01-15", 2, "SHOPEE BANGKOK TH", "199.00"),
			}
			Expect(exporter.WriteLedgerCSV("all_transactions.csv", records)).To(Succeed())

			data, err := storage.Get("all_transactions.csv")
			Expect(err).NotTo(HaveOccurred())

			rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(3))
			Expect(rows[0]).To(Equal([]string{"Statement ID", "Page", "Transaction Date", "Posting Date", "Description", "Amount (THB)"}))
			Expect(rows[1]).To(Equal([]string{"2025-01-15", "1", "15/01/25", "16/01/25", "Payment-KTB Internet", "-8851.33"}))
			Expect(rows[2][5]).To(Equal("199.00"))
		})

		It("should quote fields containing commas", func() {
			records := []TransactionRecord{
				ledgerRecord("2025-01-15", 1, "OPENROUTER, INC OPENROUTER.AIUS", "191.91"),
			}
			Expect(exporter.WriteLedgerCSV("all_transactions.csv", records)).To(Succeed())

			data, err := storage.Get("all_transactions.csv")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"OPENROUTER, INC OPENROUTER.AIUS"`))
		})
	})

	Describe("WriteClassifiedCSV", func() {
		It("should include the service column", func() {
			records := []ClassifiedRecord{
				{
					TransactionRecord: ledgerRecord("2025-01-15", 1, "OPENROUTER AI SERVICES", "120.50"),
					Category:          "OpenRouter AI",
				},
			}
			Expect(exporter.WriteClassifiedCSV("ai_transactions.csv", records)).To(Succeed())

			data, err := storage.Get("ai_transactions.csv")
			Expect(err).NotTo(HaveOccurred())

			rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(rows[0]).To(Equal([]string{"Statement ID", "Page", "Transaction Date", "Posting Date", "Description", "Service", "Amount (THB)"}))
			Expect(rows[1][5]).To(Equal("OpenRouter AI"))
		})
	})

	Describe("WriteSheetsCSV", func() {
		sheetRecord := func(date, category, amount string) ClassifiedRecord {
			r := ledgerRecord("2025-01-15", 1, category, amount)
			r.TransactionDate = date
			return ClassifiedRecord{TransactionRecord: r, Category: Category(category)}
		}

		It("should start with a UTF-8 BOM", func() {
			Expect(exporter.WriteSheetsCSV("sheets.csv", nil)).To(Succeed())

			data, err := storage.Get("sheets.csv")
			Expect(err).NotTo(HaveOccurred())
			Expect(bytes.HasPrefix(data, []byte("\xef\xbb\xbf"))).To(BeTrue())
		})

		It("should write the localized header", func() {
			Expect(exporter.WriteSheetsCSV("sheets.csv", nil)).To(Succeed())

			data, err := storage.Get("sheets.csv")
			Expect(err).NotTo(HaveOccurred())

			content := strings.TrimPrefix(string(data), "\uFEFF")
			rows, err := csv.NewReader(strings.NewReader(content)).ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(rows[0]).To(Equal([]string{"วันที่", "month(hide)", "รายการ", "ราคา", "จำนวน", "รวม"}))
		})

		It("should sort rows by transaction date and fill the month column", func() {
			records := []ClassifiedRecord{
				sheetRecord("01/09/25", "OpenRouter AI", "191.91"),
				sheetRecord("19/05/25", "Anthropic AI", "182.70"),
			}
			Expect(exporter.WriteSheetsCSV("sheets.csv", records)).To(Succeed())

			data, err := storage.Get("sheets.csv")
			Expect(err).NotTo(HaveOccurred())

			content := strings.TrimPrefix(string(data), "\uFEFF")
			rows, err := csv.NewReader(strings.NewReader(content)).ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(3))
			Expect(rows[1]).To(Equal([]string{"19/05/25", "May", "Anthropic AI", "182.70", "1", "182.70"}))
			Expect(rows[2]).To(Equal([]string{"01/09/25", "September", "OpenRouter AI", "191.91", "1", "191.91"}))
		})

		It("should drop rows whose date cannot be parsed", func() {
			r := sheetRecord("99/99/99", "OpenRouter AI", "191.91")
			Expect(exporter.WriteSheetsCSV("sheets.csv", []ClassifiedRecord{r})).To(Succeed())

			data, err := storage.Get("sheets.csv")
			Expect(err).NotTo(HaveOccurred())

			content := strings.TrimPrefix(string(data), "\uFEFF")
			rows, err := csv.NewReader(strings.NewReader(content)).ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
		})
	})

	Describe("WriteSummaryXLSX", func() {
		It("should write both sheets with records and totals", func() {
			records := []ClassifiedRecord{
				{
					TransactionRecord: ledgerRecord("2025-01-15", 1, "OPENROUTER AI SERVICES", "120.50"),
					Category:          "OpenRouter AI",
				},
			}
			summaries, grand := Summarize(records)
			Expect(exporter.WriteSummaryXLSX("summary.xlsx", records, summaries, grand)).To(Succeed())

			data, err := storage.Get("summary.xlsx")
			Expect(err).NotTo(HaveOccurred())

			f, err := excelize.OpenReader(bytes.NewReader(data))
			Expect(err).NotTo(HaveOccurred())
			defer f.Close()

			desc, err := f.GetCellValue("Transactions", "E2")
			Expect(err).NotTo(HaveOccurred())
			Expect(desc).To(Equal("OPENROUTER AI SERVICES"))

			total, err := f.GetCellValue("Summary", "A3")
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal("TOTAL"))
		})
	})
})
