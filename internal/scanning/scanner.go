package scanning

import "context"

// ReceiptData contains the fields extracted from a medical receipt.
// It is constructed once by ParseResponse and never mutated afterwards;
// all normalization (amount coercion, unknown-field filtering) happens
// during construction.
type ReceiptData struct {
	Date             string   // YYYY-MM-DD, empty when not visible
	Provider         string   // doctor, clinic, or pharmacy name
	Patient          string   // patient name
	Amount           *float64 // total amount, nil when absent
	Currency         string   // 3-letter code, defaults to USD
	IsMedicalReceipt bool     // false for non-receipts and unparseable responses
}

// Scanner defines the interface for vision-model receipt extraction
type Scanner interface {
	// Extract sends a PNG image to the model and returns its raw text response
	Extract(ctx context.Context, imageData []byte) (string, error)
	// CheckAvailable verifies the backend is reachable and the model exists.
	// It is consulted once before any file is processed.
	CheckAvailable(ctx context.Context) error
	// Close closes the scanner and releases resources
	Close() error
}
