package scanning

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var (
	// Vision models wrap the JSON in prose or markdown fences; a single-level
	// brace match is enough since the prompt asks for one flat object.
	jsonObjectRe = regexp.MustCompile(`\{[^{}]*\}`)

	nonNumericRe = regexp.MustCompile(`[^\d.]`)
)

// ParseResponse interprets a model's raw text response as a ReceiptData.
// It is total: it never fails, and degrades to a record with
// IsMedicalReceipt=false when no well-formed JSON can be recovered.
func ParseResponse(raw string) ReceiptData {
	text := raw
	if match := jsonObjectRe.FindString(text); match != "" {
		text = match
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return ReceiptData{IsMedicalReceipt: false}
	}

	// Only the known schema keys are honored; anything else the model (or a
	// prompt-injected document) adds is dropped.
	data := ReceiptData{Currency: "USD", IsMedicalReceipt: true}
	for key, value := range fields {
		switch key {
		case "date":
			if s, ok := value.(string); ok {
				data.Date = s
			}
		case "provider":
			if s, ok := value.(string); ok {
				data.Provider = s
			}
		case "patient":
			if s, ok := value.(string); ok {
				data.Patient = s
			}
		case "amount":
			data.Amount = coerceAmount(value)
		case "currency":
			if s, ok := value.(string); ok && s != "" {
				data.Currency = s
			}
		case "is_medical_receipt":
			if b, ok := value.(bool); ok {
				data.IsMedicalReceipt = b
			}
		}
	}

	return data
}

// coerceAmount normalizes an amount that may arrive as a JSON number or as a
// string carrying currency symbols or words ("$45.99", "USD 100.50"). A string
// with no embedded numeral yields nil rather than an error.
func coerceAmount(value any) *float64 {
	switch v := value.(type) {
	case float64:
		return &v
	case string:
		stripped := nonNumericRe.ReplaceAllString(v, "")
		amount, err := strconv.ParseFloat(strings.TrimSpace(stripped), 64)
		if err != nil {
			return nil
		}
		return &amount
	default:
		return nil
	}
}
