package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a session id is not in the durable store
	ErrSessionNotFound = errors.New("session not found")
	// ErrMalformedResponse is returned when the agent service replies with something other than an event list
	ErrMalformedResponse = errors.New("malformed response from agent service")
	// ErrEmptyInput is returned when a turn is requested with blank text
	ErrEmptyInput = errors.New("message is empty")
	// ErrNoActiveSession is returned when a turn is requested before a session exists
	ErrNoActiveSession = errors.New("no active session")
	// ErrTurnInFlight is returned when a turn is requested while another is pending
	ErrTurnInFlight = errors.New("a turn is already in flight")
)

// StorageError represents errors accessing the durable key-value area
type StorageError struct {
	Backend string // "sqlite", "redis", "memory"
	Op      string // "open", "get", "set", "delete", "decode", "encode"
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [%s] %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// BackendError represents a non-success status from the agent service
type BackendError struct {
	Op     string // "create_session", "run"
	Status int
	Body   string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error [%s] status %d: %s", e.Op, e.Status, e.Body)
}

// TransportError represents a network fault talking to the agent service
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error [%s]: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// FaultClass names the class of an agent-service failure for diagnostics
func FaultClass(err error) string {
	var backendErr *BackendError
	var transportErr *TransportError
	switch {
	case err == nil:
		return "none"
	case errors.As(err, &backendErr):
		return "backend"
	case errors.As(err, &transportErr):
		return "transport"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	default:
		return "unknown"
	}
}
