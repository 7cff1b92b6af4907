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
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnknownStep         = NewDomainError("UNKNOWN_STEP", "Unknown pipeline step")
	ErrSourceMissing       = NewDomainError("SOURCE_MISSING", "Required source extract not found")
	ErrArtifactMissing     = NewDomainError("ARTIFACT_MISSING", "Required upstream artifact not found, steps may have run out of order")
)
