package errorutil

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
)

// Boundary error codes shared with the web client.
const (
	CodeUnauthenticated          = "A001"
	CodeForbidden                = "A002"
	CodeInvalidRefresh           = "A003"
	CodeOwnerMismatch            = "R004"
	CodeNotFound                 = "NOT_FOUND"
	CodeValidation               = "VALIDATION_FAILED"
	CodeConflict                 = "CONFLICT"
	CodeResetCodeExpired         = "RESET_CODE_EXPIRED"
	CodeResetCodeMismatch        = "RESET_CODE_MISMATCH"
	CodeRecoveryStoreUnavailable = "RECOVERY_STORE_UNAVAILABLE"
	CodeRateLimited              = "RATE_LIMITED"
	CodeInternal                 = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
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

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthenticated, message, http.StatusUnauthorized, nil)
}

// NewInvalidRefresh reports a missing, expired or otherwise unusable refresh credential.
func NewInvalidRefresh() error {
	return NewDomainError(CodeInvalidRefresh, "invalid or expired refresh token", http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

// NewOwnerMismatch reports a resource that exists but belongs to someone else.
func NewOwnerMismatch() error {
	return NewDomainError(CodeOwnerMismatch, "owner_mismatch", http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewResetCodeExpired() error {
	return NewDomainError(CodeResetCodeExpired, "verification code expired or not requested", http.StatusBadRequest, nil)
}

func NewResetCodeMismatch() error {
	return NewDomainError(CodeResetCodeMismatch, "verification code does not match", http.StatusBadRequest, nil)
}

// NewRecoveryStoreUnavailable wraps an infrastructure failure of the reset code backend.
func NewRecoveryStoreUnavailable(err error) error {
	return &DomainError{
		Code:       CodeRecoveryStoreUnavailable,
		Message:    "recovery store unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewRateLimited() error {
	return NewDomainError(CodeRateLimited, "too many requests", http.StatusTooManyRequests, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

func MapError(err error) error {
	return ToDomainError(err)
}
