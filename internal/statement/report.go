package statement

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Warning records a non-fatal per-page condition for the run report.
type Warning struct {
	Page    PageKey `json:"page"`
	Message string  `json:"message"`
}

// RunReport is the terminal report of one pipeline run.
type RunReport struct {
	RunID string `json:"run_id"`

	PagesProcessed        int `json:"pages_processed"`
	PagesEmpty            int `json:"pages_empty"`
	PagesFailed           int `json:"pages_failed"`
	RecordsParsed         int `json:"records_parsed"`
	RecordsClassified     int `json:"records_classified"`
	RecordsExcludedBySign int `json:"records_excluded_by_sign"`

	Warnings []Warning `json:"warnings,omitempty"`

	Summaries []CategorySummary `json:"summaries"`
	Grand     Summary           `json:"grand"`
}

// NewRunReport creates an empty report with a fresh run ID.
func NewRunReport() *RunReport {
	return &RunReport{RunID: uuid.NewString()}
}

func (r *RunReport) addWarning(page PageKey, err error) {
	r.Warnings = append(r.Warnings, Warning{Page: page, Message: err.Error()})
}

const reportWidth = 70

// SummaryTable renders the human-readable spend summary, one line per
// category sorted by total descending, followed by a totals line.
func (r *RunReport) SummaryTable(currency string) string {
	var b strings.Builder

	rule := strings.Repeat("=", reportWidth)
	b.WriteString(rule + "\n")
	b.WriteString("AI TRANSACTION SUMMARY\n")
	b.WriteString(rule + "\n\n")

	for _, s := range r.Summaries {
		fmt.Fprintf(&b, "%s %3d txns  %12s %s\n", padDots(string(s.Category), 50), s.Count, groupAmount(s.Total), currency)
	}

	b.WriteString("\n" + strings.Repeat("-", reportWidth) + "\n")
	fmt.Fprintf(&b, "%s %3d txns  %12s %s\n", padDots("TOTAL", 50), r.Grand.Count, groupAmount(r.Grand.Total), currency)
	b.WriteString(rule + "\n")

	return b.String()
}

// CountsTable renders the processing counters of the run.
func (r *RunReport) CountsTable() string {
	var b strings.Builder

	fmt.Fprintf(&b, "run %s\n", r.RunID)
	fmt.Fprintf(&b, "  pages processed:          %d\n", r.PagesProcessed)
	fmt.Fprintf(&b, "  pages with no records:    %d\n", r.PagesEmpty)
	fmt.Fprintf(&b, "  pages failed extraction:  %d\n", r.PagesFailed)
	fmt.Fprintf(&b, "  records parsed:           %d\n", r.RecordsParsed)
	fmt.Fprintf(&b, "  records classified:       %d\n", r.RecordsClassified)
	fmt.Fprintf(&b, "  records excluded by sign: %d\n", r.RecordsExcludedBySign)

	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "  warning: %s page %d: %s\n", w.Page.DocumentID, w.Page.PageNumber, w.Message)
	}

	return b.String()
}

func padDots(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(".", width-len(s))
}

// groupAmount formats a decimal with two places and thousands separators,
// e.g. -8851.33 -> "-8,851.33".
func groupAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	return sign + strings.Join(groups, ",") + "." + fracPart
}
