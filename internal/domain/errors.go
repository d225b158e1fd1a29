package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by lookups that have no result.
var ErrNotFound = errors.New("not found")

// InputError rejects a request before any stage runs.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// CollaboratorError wraps a failure of an external collaborator
// (geocode, search, routing, calendar).
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// PipelineTimeoutError reports a deadline that elapsed while waiting
// for a stage reply.
type PipelineTimeoutError struct {
	Stage   string
	Elapsed time.Duration
}

func (e *PipelineTimeoutError) Error() string {
	return fmt.Sprintf("pipeline timed out waiting in %s after %s", e.Stage, e.Elapsed.Round(time.Millisecond))
}

// ParseError reports a stage reply that does not match its expected schema.
type ParseError struct {
	Stage   string
	Reason  string
	Payload string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unexpected %s payload: %s", e.Stage, e.Reason)
}
