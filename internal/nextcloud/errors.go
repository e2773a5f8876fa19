// errors.go defines the failure taxonomy of the Nextcloud client.
//
// Callers match these with errors.As. The client never retries and never
// swallows a failure: every error below reaches the caller of the operation.

package nextcloud

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned when an operation is outside the client's
// capability set.
var ErrUnsupported = errors.New("operation not supported by this client")

// maxErrorBody bounds how much of a response body is kept for diagnostics.
const maxErrorBody = 2048

// ConfigurationError reports missing or invalid connection settings.
// It is fatal at startup.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// RemoteError is an unexpected status from the server.
type RemoteError struct {
	Op     string
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.Status, e.Body)
}

// ConflictError reports that the target of a move or a tag creation already
// exists.
type ConflictError struct {
	Op     string
	Path   string
	Status int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %q already exists (status %d)", e.Op, e.Path, e.Status)
}

// NotFoundError reports that an expected property or item was absent from an
// otherwise successful response.
type NotFoundError struct {
	What string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.What, e.Key)
}

// ProtocolError reports a response that violates the protocol: malformed XML
// or a success status missing a required header.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: protocol error: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

func newRemoteError(op string, r *reply) *RemoteError {
	body := string(r.body)
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return &RemoteError{Op: op, Status: r.status, Body: body}
}
