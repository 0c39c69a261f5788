package domain

import "fmt"

// NotFoundError is returned when a referenced entity does not exist.
// Maps to HTTP 404 at the transport boundary.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError is returned for bad input: invalid cron expressions,
// missing required fields, illegal state transitions. Maps to HTTP 422.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError is returned on a duplicate or unique-invariant collision.
// Maps to HTTP 409.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func NewConflictError(format string, args ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// ConnectionFailureError is returned when a connector could not reach or
// authenticate against a source, raised outside a job context (e.g. the
// schema/table/column browsing endpoints). Maps to HTTP 502. Inside a job,
// the same failure is recorded on the CheckResult instead.
type ConnectionFailureError struct {
	ConnectionID string
	Msg          string
}

func (e *ConnectionFailureError) Error() string {
	return fmt.Sprintf("connection %q: %s", e.ConnectionID, e.Msg)
}

func NewConnectionFailureError(connectionID string, err error) error {
	return &ConnectionFailureError{ConnectionID: connectionID, Msg: err.Error()}
}
