package scanning

import (
	"context"
	"regexp"
	"strings"
)

// Scanner defines the interface for per-page transaction extraction. The
// returned text is the model's raw pipe-delimited output (or the
// NO_TRANSACTIONS sentinel); parsing it is the caller's concern.
type Scanner interface {
	// ExtractPage analyzes one statement page image and returns the raw
	// extraction text. The call is bounded by ctx.
	ExtractPage(ctx context.Context, imageData []byte, contentType string) (string, error)

	// Close closes the scanner and releases resources
	Close() error
}

// extractionPrompt is the shared instruction used by all model providers.
const extractionPrompt = `Extract all transaction data from this credit card statement image.

If this page contains a transaction list, extract each transaction with:
- Transaction Date (Trans. Date)
- Posting Date (Posting Date)
- Description
- Amount

Return format (one per line):
DD/MM/YY|DD/MM/YY|DESCRIPTION|AMOUNT

Example:
07/01/25|07/01/25|Payment-KTB Internet|-8,851.33
18/12/24|20/12/24|SHOPEE BANGKOK TH|199.00

If this page contains only payment slip information (no transactions), return only: NO_TRANSACTIONS

Only return transaction lines or NO_TRANSACTIONS, no other text, no markdown, no code blocks.`

var fencePattern = regexp.MustCompile("(?m)^```[a-zA-Z0-9]*[ \t]*\r?\n?")

// cleanModelOutput strips markdown code fences that models emit despite
// being told not to.
func cleanModelOutput(text string) string {
	text = fencePattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
