package statement

import "github.com/shopspring/decimal"

// TransactionRecord is one parsed line from a statement page. Records are
// immutable once produced by the parser.
type TransactionRecord struct {
	Page            PageKey         `json:"page"`
	TransactionDate string          `json:"transaction_date"` // DD/MM/YY
	PostingDate     string          `json:"posting_date"`     // DD/MM/YY
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"` // positive = expense, negative = credit/refund
}

// Category is a vendor category assigned by the classifier.
type Category string

// CategoryOther is assigned to records that match no classification rule.
const CategoryOther Category = "Other"

// ClassifiedRecord is a TransactionRecord with its classification result.
type ClassifiedRecord struct {
	TransactionRecord
	Category Category `json:"category"`
}

// CategorySummary aggregates the classified records of a single category.
type CategorySummary struct {
	Category Category        `json:"category"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
}

// Summary holds the grand totals across all included categories.
type Summary struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}
