package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes exposed to callers.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeInvalidState        = "INVALID_STATE"
	CodeExpired             = "EXPIRED"
	CodeEntryAlreadyScanned = "ENTRY_ALREADY_SCANNED"
	CodePaymentVerification = "PAYMENT_VERIFICATION_FAILED"
	CodeGateway             = "GATEWAY_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInternal            = "INTERNAL_ERROR"
)

// AppError carries a stable code, a caller-facing message and the HTTP status
// it maps to. The wrapped cause stays internal.
type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Validation(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Status: http.StatusBadRequest}
}

func NotFound(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Message: resource + " not found", Status: http.StatusNotFound}
}

func Conflict(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message, Status: http.StatusConflict}
}

func InvalidState(message string) *AppError {
	return &AppError{Code: CodeInvalidState, Message: message, Status: http.StatusConflict}
}

func Expired(message string) *AppError {
	return &AppError{Code: CodeExpired, Message: message, Status: http.StatusGone}
}

func EntryAlreadyScanned() *AppError {
	return &AppError{
		Code:    CodeEntryAlreadyScanned,
		Message: "cannot cancel a booking after entering the parking area",
		Status:  http.StatusConflict,
	}
}

func PaymentVerificationFailed() *AppError {
	return &AppError{Code: CodePaymentVerification, Message: "invalid payment signature", Status: http.StatusBadRequest}
}

func Gateway(message string, err error) *AppError {
	return &AppError{Code: CodeGateway, Message: message, Status: http.StatusBadGateway, Err: err}
}

func Unauthorized(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message, Status: http.StatusUnauthorized}
}

func Internal(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "internal server error", Status: http.StatusInternalServerError, Err: err}
}

// From returns err as an *AppError, wrapping anything unexpected as an
// internal error so handlers never leak diagnostic detail.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
