package dlmm

import (
	"errors"
	"fmt"
)

// ValidationError reports a caller-supplied SwapParams that violates a precondition
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CollaboratorError reports a failure of an external service (pricing,
// transaction submission or pool data). Err is the collaborator's error as returned.
type CollaboratorError struct {
	Op  string // quote | submit | pool_stats
	Err error
}

func (e *CollaboratorError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s failed", e.Op)
	}
	return e.Err.Error()
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// Collaborator operation names
const (
	OpQuote     = "quote"
	OpSubmit    = "submit"
	OpPoolStats = "pool_stats"
)

var (
	ErrSubmitterNotConfigured = errors.New("transaction submitter is not configured")
	ErrPoolDataNotConfigured  = errors.New("pool data source is not configured")
	ErrEmptySignature         = errors.New("transaction submitter returned an empty signature")
)

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsCollaborator reports whether err is (or wraps) a CollaboratorError
func IsCollaborator(err error) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce)
}

func collaboratorErr(op string, err error) *CollaboratorError {
	return &CollaboratorError{Op: op, Err: err}
}
