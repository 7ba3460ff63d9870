package services

import (
	"errors"
	"fmt"
)

// Sentinel errors let controllers map business failures to HTTP statuses
// without string matching.
var (
	// ErrSequenceConflict means the counter transaction could not commit
	// within the retry budget. The document creation must be aborted.
	ErrSequenceConflict = errors.New("sequence allocation conflict")

	ErrAmountNotPositive  = errors.New("amount must be greater than zero")
	ErrExceedsOutstanding = errors.New("amount exceeds the pending balance")
	ErrEmptyLineItems     = errors.New("invoice needs at least one line item")
	ErrInvalidQuantity    = errors.New("item quantity must be greater than zero")
	ErrNegativePrice      = errors.New("item price cannot be negative")
	ErrInvalidGSTRate     = errors.New("GST rate must be one of 0, 5, 12, 18, 28")
	ErrCustomerHasInvoices = errors.New("customer has linked invoices")
	ErrInvoiceHasReceipts  = errors.New("invoice has linked receipts")
	ErrInvoiceImmutableRef = errors.New("receipt cannot be moved to another invoice")
)

// ValidationError wraps a sentinel with human-readable details.
type ValidationError struct {
	Err     error
	Details string
}

func (e *ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a caller-data problem rather than a
// store failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	switch {
	case errors.Is(err, ErrAmountNotPositive),
		errors.Is(err, ErrExceedsOutstanding),
		errors.Is(err, ErrEmptyLineItems),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrNegativePrice),
		errors.Is(err, ErrInvalidGSTRate),
		errors.Is(err, ErrCustomerHasInvoices),
		errors.Is(err, ErrInvoiceHasReceipts),
		errors.Is(err, ErrInvoiceImmutableRef):
		return true
	}
	return false
}
