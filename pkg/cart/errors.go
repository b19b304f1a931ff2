package cart

import (
	"errors"
	"fmt"
)

// Sentinel conditions surfaced by the pipeline. These are stable,
// machine-consumable identifiers; handlers map them to HTTP responses.
var (
	// ErrOpenCartExists is returned by Store.CreateOpenCart when the user
	// already has an Open cart. The service resolves it by re-fetching.
	ErrOpenCartExists = errors.New("open cart already exists for user")

	// ErrNothingToSubmit reports a checkout with no Open cart. This is a
	// condition, not a failure: the caller simply has nothing to submit,
	// including when a retried checkout finds the cart already Submitted.
	ErrNothingToSubmit = errors.New("no open cart to submit")

	// ErrBusy reports that the per-user serialization could not be
	// acquired within the bounded wait. Retryable by the caller.
	ErrBusy = errors.New("cart busy, try again")
)

// ValidationError reports input that failed validation. The operation was
// not applied, not even partially.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed [field=%s]: %s", e.Field, e.Reason)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a missing referenced entity (product, cart, order).
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found [id=%s]", e.Resource, e.ID)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError reports a storage write that lost a race against a
// concurrent writer. The service retries these transparently a bounded
// number of times; callers only see one after retries are exhausted.
type ConflictError struct {
	Operation string
	CartID    int64
	Cause     error
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("concurrent conflict [operation=%s, cart_id=%d]: %v", e.Operation, e.CartID, e.Cause)
	}
	return fmt.Sprintf("concurrent conflict [operation=%s, cart_id=%d]", e.Operation, e.CartID)
}

// Unwrap returns the underlying cause error.
func (e *ConflictError) Unwrap() error {
	return e.Cause
}

// NewConflictError creates a new ConflictError.
func NewConflictError(operation string, cartID int64, cause error) *ConflictError {
	return &ConflictError{Operation: operation, CartID: cartID, Cause: cause}
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
