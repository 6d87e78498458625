package statement

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// NoTransactionsSentinel is the fixed reply the extraction prompt requests
// for pages that carry no transaction list (payment slips, headers).
const NoTransactionsSentinel = "NO_TRANSACTIONS"

var datePattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{2}$`)

// ParseExtraction turns the raw model output for one page into transaction
// records, preserving source line order. An empty text or the sentinel yields
// zero records; that is the normal outcome for most pages, not an error.
// Lines that do not match the DD/MM/YY|DD/MM/YY|description|amount shape are
// prose or formatting noise from the model and are silently discarded.
func ParseExtraction(key PageKey, text string) []TransactionRecord {
	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, NoTransactionsSentinel) {
		return nil
	}

	var records []TransactionRecord
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.EqualFold(line, NoTransactionsSentinel) {
			continue
		}

		record, ok := parseLine(key, line)
		if !ok {
			continue
		}
		records = append(records, record)
	}

	return records
}

func parseLine(key PageKey, line string) (TransactionRecord, bool) {
	parts := strings.Split(line, "|")
	if len(parts) != 4 {
		return TransactionRecord{}, false
	}

	transDate := strings.TrimSpace(parts[0])
	postDate := strings.TrimSpace(parts[1])
	description := strings.TrimSpace(parts[2])
	rawAmount := strings.TrimSpace(parts[3])

	if !datePattern.MatchString(transDate) || !datePattern.MatchString(postDate) {
		return TransactionRecord{}, false
	}
	if description == "" {
		return TransactionRecord{}, false
	}

	// Amounts arrive with thousands separators, e.g. "-8,851.33".
	amount, err := decimal.NewFromString(strings.ReplaceAll(rawAmount, ",", ""))
	if err != nil {
		return TransactionRecord{}, false
	}

	return TransactionRecord{
		Page:            key,
		TransactionDate: transDate,
		PostingDate:     postDate,
		Description:     description,
		Amount:          amount,
	}, true
}
