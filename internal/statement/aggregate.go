package statement

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Summarize groups classified records by category and computes per-category
// counts and totals plus the grand total. Summaries are sorted by total
// descending, ties broken by category name ascending, so the output is
// reproducible across runs.
func Summarize(records []ClassifiedRecord) ([]CategorySummary, Summary) {
	byCategory := make(map[Category]*CategorySummary)
	grand := Summary{Total: decimal.Zero}

	for _, record := range records {
		summary, ok := byCategory[record.Category]
		if !ok {
			summary = &CategorySummary{Category: record.Category, Total: decimal.Zero}
			byCategory[record.Category] = summary
		}
		summary.Count++
		summary.Total = summary.Total.Add(record.Amount)
		grand.Count++
		grand.Total = grand.Total.Add(record.Amount)
	}

	summaries := make([]CategorySummary, 0, len(byCategory))
	for _, summary := range byCategory {
		summaries = append(summaries, *summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		cmp := summaries[i].Total.Cmp(summaries[j].Total)
		if cmp != 0 {
			return cmp > 0
		}
		return summaries[i].Category < summaries[j].Category
	})

	return summaries, grand
}
