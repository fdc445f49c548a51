package receipt

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/zombor/receipt-organizer/internal/scanning"
)

const (
	// placeholderUnknown stands in for fields the model could not read
	placeholderUnknown = "UNKNOWN"
	// placeholderReview flags a missing or malformed date for manual follow-up
	placeholderReview = "REVIEW"

	maxFieldLength = 30
)

var (
	datePrefixRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	specialCharsRe = regexp.MustCompile(`[^a-zA-Z0-9_\s]`)
)

// BuildFilename derives the canonical filename from extracted receipt data.
// Format: YYYY-MM-DD_Provider_Patient_Amount.ext
//
// It is deterministic and pure: identical inputs always yield the same name,
// which keeps dry-runs idempotent. originalExt includes its leading dot and
// passes through untouched since it came from a real file on disk.
func BuildFilename(data scanning.ReceiptData, originalExt string) string {
	// Shape check only, no calendar validation; a wrong-but-shaped date is
	// still more useful in the name than REVIEW
	datePart := placeholderReview
	if datePrefixRe.MatchString(data.Date) {
		datePart = data.Date
	}

	provider := sanitize(data.Provider, maxFieldLength)
	patient := sanitize(data.Patient, maxFieldLength)
	amount := formatAmount(data.Amount, data.Currency)

	return fmt.Sprintf("%s_%s_%s_%s%s", datePart, provider, patient, amount, originalExt)
}

// sanitize makes free text safe for a filename segment: special characters
// are stripped, words are title-cased and joined ("Dr. Smith's Clinic!"
// becomes "DrSmithsClinic"), and the result is truncated to maxLength.
func sanitize(text string, maxLength int) string {
	if text == "" {
		return placeholderUnknown
	}

	stripped := specialCharsRe.ReplaceAllString(text, "")

	var b strings.Builder
	for _, word := range strings.Fields(stripped) {
		b.WriteString(strings.ToUpper(word[:1]))
		b.WriteString(strings.ToLower(word[1:]))
	}

	result := b.String()
	if len(result) > maxLength {
		result = result[:maxLength]
	}
	if result == "" {
		return placeholderUnknown
	}
	return result
}

// formatAmount renders the amount segment: whole numbers drop the decimal
// point ("USD100"), everything else gets exactly two fractional digits
// ("USD45.99").
func formatAmount(amount *float64, currency string) string {
	if amount == nil {
		return placeholderUnknown
	}
	if *amount == math.Trunc(*amount) {
		return fmt.Sprintf("%s%d", currency, int64(*amount))
	}
	return fmt.Sprintf("%s%.2f", currency, *amount)
}
