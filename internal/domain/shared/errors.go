package shared

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a DomainError for callers that react to the category
// rather than the specific code.
type ErrorKind string

const (
	KindValidation          ErrorKind = "VALIDATION"
	KindResolutionGap       ErrorKind = "RESOLUTION_GAP"
	KindPartialWriteFailure ErrorKind = "PARTIAL_WRITE_FAILURE"
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindConflict            ErrorKind = "CONFLICT"
	KindInvalidState        ErrorKind = "INVALID_STATE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Kind    ErrorKind `json:"kind,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches another DomainError by code, so wrapped and re-created errors
// compare equal to the sentinels below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    KindValidation,
	}
}

// NewValidationError reports malformed input rejected before any write.
func NewValidationError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindValidation}
}

// NewInvalidStateError reports an operation that is illegal in the current state.
func NewInvalidStateError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindInvalidState}
}

// NewConflictError reports a write that collides with existing state.
func NewConflictError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindConflict}
}

// NewNotFoundError reports a missing resource with a specific code.
func NewNotFoundError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindNotFound}
}

// NewResolutionGap reports account roles that have no mapped account.
func NewResolutionGap(missing ...string) *DomainError {
	return &DomainError{
		Code:    CodeResolutionGap,
		Message: fmt.Sprintf("account roles not mapped: %s", strings.Join(missing, ", ")),
		Kind:    KindResolutionGap,
	}
}

// NewPartialWriteFailure wraps a failure in one step of a write-set. The caller
// is expected to have rolled the whole write-set back.
func NewPartialWriteFailure(step string, cause error) *DomainError {
	return &DomainError{
		Code:    CodePartialWriteFailure,
		Message: fmt.Sprintf("write-set step %q failed", step),
		Kind:    KindPartialWriteFailure,
		cause:   cause,
	}
}

// Error codes shared across bounded contexts
const (
	CodeResolutionGap       = "RESOLUTION_GAP"
	CodePartialWriteFailure = "PARTIAL_WRITE_FAILURE"
	CodeInvalidTransition   = "INVALID_TRANSITION"
)

// Common domain errors
var (
	ErrNotFound            = &DomainError{Code: "NOT_FOUND", Message: "Resource not found", Kind: KindNotFound}
	ErrAlreadyExists       = &DomainError{Code: "ALREADY_EXISTS", Message: "Resource already exists", Kind: KindConflict}
	ErrInvalidInput        = NewValidationError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = &DomainError{Code: "CONCURRENCY_CONFLICT", Message: "Resource was modified by another process", Kind: KindConflict}
	ErrInvalidState        = NewInvalidStateError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewValidationError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrResolutionGap       = &DomainError{Code: CodeResolutionGap, Message: "Account role not mapped", Kind: KindResolutionGap}
	ErrPartialWriteFailure = &DomainError{Code: CodePartialWriteFailure, Message: "Write-set failed", Kind: KindPartialWriteFailure}
)

// KindOf returns the kind of the first DomainError in err's chain, or "" when
// err is not a domain error.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
