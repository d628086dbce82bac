package shared

import (
	"errors"
	"fmt"
)

// Error codes shared across bounded contexts
const (
	CodeNotFound              = "NOT_FOUND"
	CodeValidation            = "VALIDATION_ERROR"
	CodeConcurrencyConflict   = "CONCURRENCY_CONFLICT"
	CodeInsufficientStock     = "INSUFFICIENT_STOCK"
	CodeBillAlreadyPaid       = "BILL_ALREADY_PAID"
	CodeEmptyOrder            = "EMPTY_ORDER"
	CodeEmptyRequest          = "EMPTY_REQUEST"
	CodeLineNotFound          = "LINE_NOT_FOUND"
	CodeDuplicateMenuItemName = "DUPLICATE_MENU_ITEM_NAME"
	CodeDuplicateAttribute    = "DUPLICATE_ATTRIBUTE_NAME"
	CodeItemInUnpaidBill      = "ITEM_IN_UNPAID_BILL"
	CodeTooRecent             = "TOO_RECENT"
	CodeDisabledItem          = "DISABLED_ITEM"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so callers can
// write errors.Is(err, shared.ErrNotFound) against errors carrying a specific message.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a new domain error with a formatted message
func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return NewDomainError(code, fmt.Sprintf(format, args...))
}

// IsDomainError reports whether err carries a DomainError anywhere in its chain
func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// Common domain errors
var (
	ErrNotFound              = NewDomainError(CodeNotFound, "Resource not found")
	ErrValidation            = NewDomainError(CodeValidation, "Invalid input provided")
	ErrConcurrencyConflict   = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrInsufficientStock     = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrBillAlreadyPaid       = NewDomainError(CodeBillAlreadyPaid, "Bill has been paid")
	ErrEmptyOrder            = NewDomainError(CodeEmptyOrder, "Can not create bill with none order items!")
	ErrEmptyRequest          = NewDomainError(CodeEmptyRequest, "List of order items to remove is empty.")
	ErrLineNotFound          = NewDomainError(CodeLineNotFound, "Order item not found in bill")
	ErrDuplicateMenuItemName = NewDomainError(CodeDuplicateMenuItemName, "Menu item name already exists")
	ErrDuplicateAttribute    = NewDomainError(CodeDuplicateAttribute, "Duplicate additional detail name")
	ErrItemInUnpaidBill      = NewDomainError(CodeItemInUnpaidBill, "Menu item exists in an unpaid bill")
	ErrTooRecent             = NewDomainError(CodeTooRecent, "Bill cannot be deleted as it was created less than 2 weeks ago.")
	ErrDisabledItem          = NewDomainError(CodeDisabledItem, "Can't delete disabled menu item")
)
