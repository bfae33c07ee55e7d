package api

import "fmt"

// The adapter collapses every failure into one of four shapes. Callers only
// ever inspect these through errors.As; none of them escape past the entity
// store boundary as anything but a human-readable message.

// NetworkError means no usable response was received: transport, DNS or
// timeout failures, or a success status whose body could not be decoded.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: no usable response from server: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response with a structured {message} body.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server error (status %d)", e.Status)
}

// ValidationError is a 4xx attributable to bad input; the message comes from
// the server body and is surfaced to the user verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "invalid input"
}

// NotFoundError is a 404 on update/delete of an entity that no longer exists
// server-side. Deletes treat it as idempotent-but-surfaced.
type NotFoundError struct {
	Kind string
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Kind, e.ID)
}
