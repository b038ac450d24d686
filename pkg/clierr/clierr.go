package clierr

import (
	"errors"

	"github.com/habedi/exactly/auth"
	"github.com/habedi/exactly/client"
)

// Type categorizes a CLI-facing error for consistent messaging & potential exit codes.
type Type string

const (
	Validation Type = "validation"
	Auth       Type = "auth"
	API        Type = "api"
	Transport  Type = "transport"
	Decode     Type = "decode"
	Cancelled  Type = "cancelled"
	Internal   Type = "internal"
)

// Error is a structured user-facing error.
type Error struct {
	Type    Type
	Message string
	Err     error // optional underlying error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// New constructs a new CLI Error.
func New(t Type, msg string, err error) *Error { return &Error{Type: t, Message: msg, Err: err} }

// FromError maps the engine's error taxonomy to a user-facing Error, so
// commands can tell the user whether to re-authenticate, fix their filter,
// or just try again.
func FromError(err error) *Error {
	var apiErr *client.APIError
	var transportErr *client.TransportError
	var decodeErr *client.DecodeError

	switch {
	case err == nil:
		return nil
	case errors.Is(err, client.ErrCancelled):
		return New(Cancelled, "operation cancelled", err)
	case errors.Is(err, auth.ErrUnauthenticated):
		return New(Auth, "not authenticated; run 'exactly login' first", err)
	case errors.Is(err, auth.ErrAuthExpired):
		return New(Auth, "session expired; run 'exactly login' again", err)
	case errors.Is(err, auth.ErrInvalidAuthCode):
		return New(Auth, "the authorization code was rejected; get a fresh one and retry", err)
	case errors.As(err, &apiErr):
		return New(API, "the API rejected the request: "+apiErr.Message, err)
	case errors.As(err, &transportErr):
		return New(Transport, "could not reach the API; check your connection and retry", err)
	case errors.As(err, &decodeErr):
		return New(Decode, "the API returned an unexpected response", err)
	default:
		return New(Internal, err.Error(), err)
	}
}
