package utils

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Stable machine-readable error kinds. Clients branch on these, never on the
// human-readable message.
const (
	KindValidation          = "VALIDATION_ERROR"
	KindNotFound            = "NOT_FOUND"
	KindInsufficientBalance = "INSUFFICIENT_BALANCE"
	KindInvalidOperation    = "INVALID_OPERATION"
	KindConflict            = "CONFLICT"
	KindGateway             = "GATEWAY_ERROR"
	KindSignature           = "SIGNATURE_ERROR"
)

// AppError represents an application error
type AppError struct {
	Kind    string                 `json:"kind"`
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(kind string, code int, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails attaches structured details to the error
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// NewValidationError creates an error for malformed or out-of-range input
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return NewAppError(KindValidation, http.StatusBadRequest, message, nil).WithDetails(details)
}

// NewNotFoundError creates an error for an unknown card, commission or directory entity
func NewNotFoundError(message string) *AppError {
	return NewAppError(KindNotFound, http.StatusNotFound, message, nil)
}

// NewInsufficientBalanceError creates the usage-exceeds-balance error carrying
// the available and requested amounts
func NewInsufficientBalanceError(available, requested decimal.Decimal) *AppError {
	message := fmt.Sprintf("Insufficient balance: available %s, requested %s",
		available.StringFixed(2), requested.StringFixed(2))
	return NewAppError(KindInsufficientBalance, http.StatusUnprocessableEntity, message, nil).
		WithDetails(map[string]interface{}{
			"available": available.StringFixed(2),
			"requested": requested.StringFixed(2),
		})
}

// NewInvalidOperationError creates an error for an operation the entity's
// current status does not permit
func NewInvalidOperationError(message string) *AppError {
	return NewAppError(KindInvalidOperation, http.StatusUnprocessableEntity, message, nil)
}

// NewConflictError creates an error for exhausted unique-code generation or
// concurrent-write retries
func NewConflictError(message string, err error) *AppError {
	return NewAppError(KindConflict, http.StatusConflict, message, err)
}

// NewGatewayError creates an error for a payment gateway rejection or timeout
func NewGatewayError(message string, err error) *AppError {
	return NewAppError(KindGateway, http.StatusBadGateway, message, err)
}

// NewSignatureError creates an error for an unverifiable webhook request
func NewSignatureError(message string) *AppError {
	return NewAppError(KindSignature, http.StatusUnauthorized, message, nil)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetAppError returns the AppError if the error is an AppError
func GetAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return nil
}

// IsKind checks whether an error carries the given kind
func IsKind(err error, kind string) bool {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Kind == kind
	}
	return false
}

// IsNotFoundError checks if an error is a "not found" error
func IsNotFoundError(err error) bool {
	return IsKind(err, KindNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return IsKind(err, KindValidation)
}

// IsInsufficientBalanceError checks if an error is an insufficient balance error
func IsInsufficientBalanceError(err error) bool {
	return IsKind(err, KindInsufficientBalance)
}

// IsInvalidOperationError checks if an error is an invalid operation error
func IsInvalidOperationError(err error) bool {
	return IsKind(err, KindInvalidOperation)
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return IsKind(err, KindConflict)
}

// IsGatewayError checks if an error is a payment gateway error
func IsGatewayError(err error) bool {
	return IsKind(err, KindGateway)
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
