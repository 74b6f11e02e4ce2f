package client

import (
	"fmt"
	"strings"
)

// AuthError indicates a failed credential exchange: bad credentials, a token-less
// response, or a transport failure during login.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// RequestError wraps a transport-level failure (connection refused, timeout, DNS).
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// DomainError carries the human-readable messages of a structured MOLGENIS error
// payload, or the raw status line when the server returned no payload we understand.
type DomainError struct {
	Messages []string
}

func (e *DomainError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// NotFoundError reports a referenced resource or principal that does not exist.
type NotFoundError struct {
	Label string
	ID    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("No %s found with id %s", e.Label, e.ID)
}
