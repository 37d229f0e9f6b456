package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so errors.Is works against the
// sentinel errors below regardless of the specific message
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
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrValidation          = NewDomainError("VALIDATION_ERROR", "Invalid input provided")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInsufficientBalance = NewDomainError("INSUFFICIENT_BALANCE", "Insufficient balance at location")
	ErrBlockedClient       = NewDomainError("BLOCKED_CLIENT", "Client is blocked and cannot receive deliveries")
)

// NewValidationError creates a validation error with a specific message.
// Validation errors are rejected before any write and are safe to retry
// after the input is corrected.
func NewValidationError(message string) *DomainError {
	return &DomainError{Code: "VALIDATION_ERROR", Message: message}
}

// NewInvalidStateError creates an invalid-state error with a specific message
func NewInvalidStateError(message string) *DomainError {
	return &DomainError{Code: "INVALID_STATE", Message: message}
}

// NewConflictError creates a concurrency-conflict error. Callers should
// reload state and retry the intended transition if still applicable.
func NewConflictError(message string) *DomainError {
	return &DomainError{Code: "CONCURRENCY_CONFLICT", Message: message}
}

// NewConsistencyViolation creates a fatal consistency-violation error.
// It signals that a conservation invariant failed post-write; the enclosing
// transaction must abort and the failure must reach operators unmodified.
func NewConsistencyViolation(message string) *DomainError {
	return &DomainError{Code: "CONSISTENCY_VIOLATION", Message: message}
}
