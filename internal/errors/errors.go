package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

var (
	ErrValidation          = new(ErrCodeValidation, "validation error")
	ErrNotFound            = new(ErrCodeNotFound, "resource not found")
	ErrPermissionDenied    = new(ErrCodePermissionDenied, "permission denied")
	ErrTransientProvider   = new(ErrCodeTransientProvider, "provider temporarily unavailable")
	ErrInsufficientBalance = new(ErrCodeInsufficientBalance, "insufficient prepaid balance")
	ErrVersionConflict     = new(ErrCodeVersionConflict, "version conflict")
	ErrAlreadyExists       = new(ErrCodeAlreadyExists, "resource already exists")
	ErrDatabase            = new(ErrCodeDatabase, "database error")
	ErrSystem              = new(ErrCodeSystemError, "system error")

	statusCodeMap = map[error]int{
		ErrValidation:          http.StatusBadRequest,
		ErrNotFound:            http.StatusNotFound,
		ErrPermissionDenied:    http.StatusForbidden,
		ErrTransientProvider:   http.StatusServiceUnavailable,
		ErrInsufficientBalance: http.StatusUnprocessableEntity,
		ErrVersionConflict:     http.StatusConflict,
		ErrAlreadyExists:       http.StatusConflict,
		ErrDatabase:            http.StatusInternalServerError,
		ErrSystem:              http.StatusInternalServerError,
	}
)

const (
	ErrCodeValidation          = "validation_error"
	ErrCodeNotFound            = "not_found"
	ErrCodePermissionDenied    = "permission_denied"
	ErrCodeTransientProvider   = "transient_provider_error"
	ErrCodeInsufficientBalance = "insufficient_balance"
	ErrCodeVersionConflict     = "version_conflict"
	ErrCodeAlreadyExists       = "already_exists"
	ErrCodeDatabase            = "database_error"
	ErrCodeSystemError         = "system_error"
)

// InternalError is a sentinel carrying a machine-readable code.
type InternalError struct {
	Code    string
	Message string
	Err     error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is matches on code so wrapped copies of a sentinel compare equal.
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsTransient reports whether the failure came from a third-party provider
// and the operation may be retried.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientProvider)
}

func IsInsufficientBalance(err error) bool {
	return errors.Is(err, ErrInsufficientBalance)
}

func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// SafeMessage returns the user-facing hint attached to err, falling back to
// a generic message for unclassified failures.
func SafeMessage(err error) string {
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		return hints[0]
	}
	for e := range statusCodeMap {
		ie := e.(*InternalError)
		if ie.Code == ErrCodeDatabase || ie.Code == ErrCodeSystemError {
			continue
		}
		if errors.Is(err, e) {
			return ie.Message
		}
	}
	return "An unexpected error occurred"
}
