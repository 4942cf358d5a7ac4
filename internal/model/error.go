package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeInvalidPrice       = "INVALID_PRICE"
	ErrCodeAmountOutOfRange   = "AMOUNT_OUT_OF_RANGE"
	ErrCodeQuantityOutOfRange = "QUANTITY_OUT_OF_RANGE"
	ErrCodeSubtotalMismatch   = "SUBTOTAL_MISMATCH"
	ErrCodeInvalidDate        = "INVALID_DATE"
	ErrCodeInvalidID          = "INVALID_ID"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeStockEntryNotFound = "STOCK_ENTRY_NOT_FOUND"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodePersistence        = "PERSISTENCE_ERROR"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// ErrorKind classifies a DomainError for transport mapping.
type ErrorKind int

const (
	// KindValidation marks malformed or incomplete input, rejected before any write.
	KindValidation ErrorKind = iota + 1
	// KindNotFound marks a direct lookup of an absent order or stock entry.
	KindNotFound
	// KindPersistence marks a storage failure; the enclosing transaction was rolled back.
	KindPersistence
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Domain errors for business logic
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same kind and code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(code, message string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Code:    code,
		Message: message,
	}
}

// NewPersistenceError wraps a storage failure.
func NewPersistenceError(message string, err error) *DomainError {
	return &DomainError{
		Kind:    KindPersistence,
		Code:    ErrCodePersistence,
		Message: message,
		Err:     err,
	}
}

// KindOf returns the kind of the first DomainError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsPersistence reports whether err is a persistence error.
func IsPersistence(err error) bool { return KindOf(err) == KindPersistence }

// Common domain errors
var (
	ErrEmptyCart          = NewValidationError(ErrCodeEmptyCart, "Cart must contain at least one item")
	ErrInvalidQuantity    = NewValidationError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidPrice       = NewValidationError(ErrCodeInvalidPrice, "Prices and subtotals must not be negative")
	ErrQuantityOutOfRange = NewValidationError(ErrCodeQuantityOutOfRange, "Quantity exceeds the maximum of 2147483647 units")
	ErrAmountOutOfRange   = NewValidationError(ErrCodeAmountOutOfRange, "Amounts must be below 10000000000")
	ErrOrderNotFound      = NewNotFoundError(ErrCodeOrderNotFound, "Order not found")
	ErrStockEntryNotFound = NewNotFoundError(ErrCodeStockEntryNotFound, "Packaging stock entry not found")
)
