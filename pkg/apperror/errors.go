package apperror

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string         `json:"error_code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Card & Registry (CARD) ----

func ErrMissingUID() *AppError {
	return New("CARD_001", "Missing uid", http.StatusBadRequest)
}

func ErrMissingField(field string) *AppError {
	return New("CARD_002", fmt.Sprintf("Missing %s", field), http.StatusBadRequest)
}

func ErrCardNotFound() *AppError {
	return New("CARD_003", "Card not found", http.StatusNotFound)
}

// ---- Payment Business Logic (PAY) ----

func ErrInsufficientBalance() *AppError {
	return New("PAY_001", "Insufficient balance", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("PAY_002", "Invalid amount", http.StatusBadRequest)
}

func ErrPinNotSet() *AppError {
	return New("PAY_003", "User PIN not set", http.StatusBadRequest)
}

func ErrIncorrectPin() *AppError {
	return New("PAY_004", "Incorrect PIN", http.StatusBadRequest)
}

// ---- Spending Limits (LIM) ----

func ErrInvalidPeriodKind(kind string) *AppError {
	return New("LIM_001", fmt.Sprintf("Invalid limit period %q: must be daily, weekly or monthly", kind), http.StatusBadRequest)
}

// ErrLimitExceeded reports which period limit would be breached, the
// configured cap and the spend accumulated so far in the period.
func ErrLimitExceeded(kind string, limit, currentSpend decimal.Decimal) *AppError {
	e := New("LIM_002",
		fmt.Sprintf("%s spending limit exceeded: limit %s, already spent %s", kind, limit.StringFixed(2), currentSpend.StringFixed(2)),
		http.StatusUnprocessableEntity)
	e.Details = map[string]any{
		"kind":          kind,
		"limit":         limit.StringFixed(2),
		"current_spend": currentSpend.StringFixed(2),
	}
	return e
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_002", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrStorage(err error) *AppError {
	return Wrap("SYS_001", "Internal storage error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a PAY_002-style validation error.
func Validation(message string) *AppError {
	return New("PAY_002", message, http.StatusBadRequest)
}
