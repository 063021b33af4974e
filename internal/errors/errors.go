// Package errors provides custom error types for the Divvy API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
	ErrInvalidToken       = &AppError{Code: "INVALID_TOKEN", Message: "Invalid or expired token", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Income source errors.
var (
	ErrIncomeSourceNotFound = &AppError{Code: "INCOME_SOURCE_NOT_FOUND", Message: "Income source not found", StatusCode: http.StatusNotFound}
	ErrInvalidCadence       = &AppError{Code: "INVALID_CADENCE", Message: "Unrecognized cadence value", StatusCode: http.StatusBadRequest}
	// ErrSourceImmutable is returned when a source's financial fields are
	// edited after a pay period has been generated from it.
	ErrSourceImmutable = &AppError{Code: "SOURCE_IMMUTABLE", Message: "Income source amounts, cadence, and start date cannot change once pay periods exist", StatusCode: http.StatusConflict}
)

// Budget item errors.
var (
	ErrBudgetItemNotFound = &AppError{Code: "BUDGET_ITEM_NOT_FOUND", Message: "Budget item not found", StatusCode: http.StatusNotFound}
	// ErrDependencyCycle is caught at write time, never deferred to
	// generation time.
	ErrDependencyCycle   = &AppError{Code: "DEPENDENCY_CYCLE", Message: "Budget item dependencies form a cycle; fix your budget item dependencies", StatusCode: http.StatusConflict}
	ErrSelfDependency    = &AppError{Code: "SELF_DEPENDENCY", Message: "A budget item cannot depend on itself", StatusCode: http.StatusBadRequest}
	ErrForeignDependency = &AppError{Code: "FOREIGN_DEPENDENCY", Message: "Budget items may only depend on your own items", StatusCode: http.StatusBadRequest}
	ErrInvalidPercentage = &AppError{Code: "INVALID_PERCENTAGE", Message: "Percentage values must be between 0 and 100", StatusCode: http.StatusBadRequest}
)

// Pay period & allocation errors.
var (
	ErrPayPeriodNotFound  = &AppError{Code: "PAY_PERIOD_NOT_FOUND", Message: "Pay period not found", StatusCode: http.StatusNotFound}
	ErrAllocationNotFound = &AppError{Code: "ALLOCATION_NOT_FOUND", Message: "Allocation not found", StatusCode: http.StatusNotFound}
	// ErrStore marks transient persistence failures; generation is
	// idempotent, so callers may retry safely.
	ErrStore = &AppError{Code: "STORE_ERROR", Message: "A storage error occurred, please retry", StatusCode: http.StatusServiceUnavailable}
)

// Expense errors.
var (
	ErrExpenseNotFound = &AppError{Code: "EXPENSE_NOT_FOUND", Message: "Expense not found", StatusCode: http.StatusNotFound}
)
