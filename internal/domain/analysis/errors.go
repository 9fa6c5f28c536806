package analysis

import (
	"errors"
	"fmt"
)

// Error taxonomy. Operation boundaries map these to HTTP statuses; nothing
// is retried anywhere in the system.
var (
	ErrValidation       = errors.New("invalid input")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrExtraction       = errors.New("document extraction failed")
	ErrAnalysis         = errors.New("clause analysis failed")
	ErrClassification   = errors.New("clause classification failed")
	ErrNotFound         = errors.New("analysis not found")
	ErrNotPaid          = errors.New("analysis not released")
	ErrPaymentState     = errors.New("no checkout session for token")
	ErrGateway          = errors.New("payment gateway failure")
)

// Wrap keeps the taxonomy kind visible through errors.Is while recording
// the operation and the underlying cause.
func Wrap(kind error, op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
