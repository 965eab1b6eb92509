package models

import (
	"errors"
	"fmt"
)

// Expected, recoverable-by-caller conditions. The transport layer maps
// these to user-facing responses; anything else is treated as an internal
// failure for the request.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrOutOfStock      = errors.New("product out of stock")
	ErrItemNotInCart   = errors.New("product not in cart")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrBadCredentials  = errors.New("incorrect password")
)

// ErrDuplicateOrderID signals an order id collision in the ledger.
// Identifiers come from a high-entropy source, so a collision is an
// invariant violation, not a retryable condition.
var ErrDuplicateOrderID = errors.New("duplicate order id")

// ValidationError reports a rejected product or user field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Validationf builds a ValidationError for a field.
func Validationf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
