package clierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/habedi/exactly/auth"
	"github.com/habedi/exactly/client"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *Error
		wantMsg string
	}{
		{
			name:    "simple error message",
			err:     New(Validation, "invalid input", nil),
			wantMsg: "invalid input",
		},
		{
			name:    "error with underlying error",
			err:     New(Transport, "request failed", errors.New("network timeout")),
			wantMsg: "request failed",
		},
		{
			name:    "empty message",
			err:     New(Internal, "", nil),
			wantMsg: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", got, tt.wantMsg)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	wrappedErr := errors.New("wrapped: root cause")
	cliErr := New(Internal, "cli error", wrappedErr)

	if !errors.Is(cliErr, wrappedErr) {
		t.Error("errors.Is should find wrapped error")
	}
	if New(Validation, "test", nil).Unwrap() != nil {
		t.Error("Unwrap() should be nil when no cause was given")
	}
}

func TestFromError_MapsTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType Type
	}{
		{"nil", nil, ""},
		{"cancelled", fmt.Errorf("wrap: %w", client.ErrCancelled), Cancelled},
		{"unauthenticated", auth.ErrUnauthenticated, Auth},
		{"auth expired", fmt.Errorf("%w: grant rejected", auth.ErrAuthExpired), Auth},
		{"invalid code", auth.ErrInvalidAuthCode, Auth},
		{"api error", &client.APIError{Code: 400, Message: "bad filter"}, API},
		{"transport error", &client.TransportError{Err: errors.New("refused")}, Transport},
		{"decode error", &client.DecodeError{Err: errors.New("bad json")}, Decode},
		{"anything else", errors.New("mystery"), Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Fatalf("FromError(nil) = %v, want nil", got)
				}
				return
			}
			if got.Type != tt.wantType {
				t.Errorf("FromError().Type = %v, want %v", got.Type, tt.wantType)
			}
			if !errors.Is(got, tt.err) && got.Err != tt.err {
				t.Errorf("FromError() should keep the cause")
			}
		})
	}
}
