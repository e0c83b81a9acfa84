package services

import (
	"fmt"

	"github.com/handyhub-dev/handyhub-api/models"
)

// ValidationError reports malformed or missing input. Maps to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports a referenced entity that does not exist. Maps to 404.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// ForbiddenError reports an authenticated caller that is not authorized for
// the entity. Maps to 403.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// InvalidStateError reports an operation that is not legal given the current
// state of an entity, e.g. booking an unavailable technician. Maps to 400.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string { return e.Message }

// InvalidTransitionError reports an illegal job status transition, carrying
// the attempted edge and the acting party. Maps to 400.
type InvalidTransitionError struct {
	From  models.JobStatus
	To    models.JobStatus
	Actor string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s for %s", e.From, e.To, e.Actor)
}

// ConflictError reports a uniqueness violation or a lost concurrent-write
// race. Maps to 400.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// InternalError wraps an unexpected persistence failure. Maps to 500; the
// wrapped cause is logged, never sent to the client.
type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string { return e.Message }

func (e *InternalError) Unwrap() error { return e.Cause }

func internal(message string, cause error) *InternalError {
	return &InternalError{Message: message, Cause: cause}
}
