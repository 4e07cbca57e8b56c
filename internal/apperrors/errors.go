package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource (order, work item, wallet) could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrInvalidState indicates that an operation is not legal for the order's current status.
var ErrInvalidState = errors.New("operation not allowed in current state")

// ErrAlreadyDone is the idempotency guard: paying or accepting something that is
// already paid/accepted fails with this error instead of silently no-opping.
var ErrAlreadyDone = errors.New("operation already applied")

// ErrNotPaid indicates acceptance was attempted before the targeted group was fully paid.
var ErrNotPaid = errors.New("work group is not paid")

// ErrInsufficientBalance indicates a debit or freeze exceeds the wallet's spendable balance.
var ErrInsufficientBalance = errors.New("insufficient wallet balance")

// ErrForbidden indicates the caller is not allowed to act on the resource.
var ErrForbidden = errors.New("forbidden")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-ish status code alongside the underlying cause.
// Repositories use it to wrap storage failures without losing the original error.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches errors.Is(err, ErrNotFound).
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
