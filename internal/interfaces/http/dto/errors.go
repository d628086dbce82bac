// Package dto holds the HTTP wire types shared by handlers and middleware.
package dto

import (
	"net/http"
	"strconv"
	"time"

	"github.com/restaurant/backend/internal/domain/shared"
)

// Error codes raised by the HTTP layer itself. Business rule codes come from
// the domain package unchanged.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeInternal         = "INTERNAL_ERROR"
	CodeRequestTooLarge  = "REQUEST_TOO_LARGE"
	CodeRouteNotFound    = "ROUTE_NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeUploadsDisabled  = "UPLOADS_DISABLED"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
	CodeRateLimited      = "RATE_LIMIT_EXCEEDED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Missing resources
	shared.CodeNotFound: http.StatusNotFound,
	CodeRouteNotFound:   http.StatusNotFound,

	// Lost optimistic lock
	shared.CodeConcurrencyConflict: http.StatusConflict,

	// Validation and business rules
	shared.CodeValidation:            http.StatusBadRequest,
	shared.CodeInsufficientStock:     http.StatusBadRequest,
	shared.CodeBillAlreadyPaid:       http.StatusBadRequest,
	shared.CodeEmptyOrder:            http.StatusBadRequest,
	shared.CodeEmptyRequest:          http.StatusBadRequest,
	shared.CodeLineNotFound:          http.StatusBadRequest,
	shared.CodeDuplicateMenuItemName: http.StatusBadRequest,
	shared.CodeDuplicateAttribute:    http.StatusBadRequest,
	shared.CodeItemInUnpaidBill:      http.StatusBadRequest,
	shared.CodeTooRecent:             http.StatusBadRequest,
	shared.CodeDisabledItem:          http.StatusBadRequest,
	CodeBadRequest:                   http.StatusBadRequest,

	CodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
	CodeMethodNotAllowed: http.StatusMethodNotAllowed,
	CodeRateLimited:      http.StatusTooManyRequests,
	CodeUploadsDisabled:  http.StatusServiceUnavailable,
	CodeUnavailable:      http.StatusServiceUnavailable,
	CodeInternal:         http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are server errors.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ValidationDetail describes one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request
// @Description Error payload. Status repeats the HTTP status code as a string.
type ErrorResponse struct {
	Message string             `json:"message" example:"Bill id: 5b8c... has been paid"`
	Status  string             `json:"status" example:"400"`
	Code    string             `json:"code" example:"BILL_ALREADY_PAID"`
	Time    time.Time          `json:"time"`
	Errors  []ValidationDetail `json:"errors,omitempty"`
}

// NewErrorResponse builds an error body for code, deriving the status from it
func NewErrorResponse(code, message string) (int, ErrorResponse) {
	status := GetHTTPStatus(code)
	return status, ErrorResponse{
		Message: message,
		Status:  strconv.Itoa(status),
		Code:    code,
		Time:    time.Now().UTC(),
	}
}

// NewValidationErrorResponse builds a 400 body listing the rejected fields
func NewValidationErrorResponse(details []ValidationDetail) (int, ErrorResponse) {
	status, resp := NewErrorResponse(shared.CodeValidation, "Request validation failed")
	resp.Errors = details
	return status, resp
}
