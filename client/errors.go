package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrCancelled is returned by the retrieval engine when the caller
	// cancelled the operation. The records accumulated before the
	// cancellation are returned alongside it.
	ErrCancelled = errors.New("operation cancelled by user")

	// ErrGrantRejected is returned when the provider's token endpoint
	// rejects an authorization-code or refresh-token grant.
	ErrGrantRejected = errors.New("token grant rejected by provider")
)

// TransportError indicates the request never produced a usable response:
// connection failure, timeout, or a broken body read.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a business-level rejection decoded from the response,
// for example a malformed OData filter. It is fatal for the current
// retrieval and never retried.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("API error (status %d): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("API error: %s", e.Message)
}

// DecodeError indicates the response body was not the JSON the API
// contract promises. It usually signals an incompatibility, not a
// transient condition.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode API response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
