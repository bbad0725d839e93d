package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error so the transport layer can map it to a status code.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindInvalidOperation ErrorKind = "invalid_operation"
	KindInvalidInput     ErrorKind = "invalid_input"
	KindConflict         ErrorKind = "conflict"
	KindForbidden        ErrorKind = "forbidden"
)

// DomainError is a classified, client-facing error.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return e.Message
}

// NewNotFoundError creates an error for a missing entity.
func NewNotFoundError(code, message string) *DomainError {
	return &DomainError{Kind: KindNotFound, Code: code, Message: message}
}

// NewInvalidOperationError creates an error for a request that violates a business rule.
func NewInvalidOperationError(code, message string) *DomainError {
	return &DomainError{Kind: KindInvalidOperation, Code: code, Message: message}
}

// NewValidationError creates an InvalidOperation error with the generic validation code.
func NewValidationError(message string) *DomainError {
	return NewInvalidOperationError("validation_failed", message)
}

// NewInvalidInputError creates an error for malformed or unrecognized input.
func NewInvalidInputError(code, message string) *DomainError {
	return &DomainError{Kind: KindInvalidInput, Code: code, Message: message}
}

// NewInvalidStateError creates an error for a disallowed state transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{
		Kind:    KindInvalidOperation,
		Code:    "invalid_state",
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewConflictError creates an error for a concurrent modification.
func NewConflictError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: "conflict", Message: message}
}

// NewForbiddenError creates an error for an action the caller may not perform.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Kind: KindForbidden, Code: "forbidden", Message: message}
}

// KindOf returns the kind of the first DomainError in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsNotFound reports whether err is a NotFound domain error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsConflict reports whether err is a Conflict domain error.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }
