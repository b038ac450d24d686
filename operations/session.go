// Package operations exposes the engine to embedders (a GUI shell, another
// tool) as a small call surface with one-at-a-time execution and
// out-of-band cancellation.
package operations

import (
	"context"
	"sync"

	"github.com/habedi/exactly/auth"
	"github.com/habedi/exactly/client"
	"github.com/rs/zerolog/log"
)

// Session ties one API client and one auth service together. Retrievals run
// one at a time; CancelOperation aborts whichever one is in flight. Progress
// reaches the embedder only through the callback handed to GetTransactions.
type Session struct {
	api    *client.Client
	auth   *auth.Service
	engine *client.Engine

	opMu sync.Mutex // serializes retrievals and authentication flows

	cancelMu sync.Mutex
	cancel   context.CancelFunc
}

// NewSession creates a Session around an API client and auth service.
func NewSession(api *client.Client, authService *auth.Service) *Session {
	return &Session{
		api:    api,
		auth:   authService,
		engine: client.NewEngine(api, authService),
	}
}

// GetAuthURL returns the provider page the user must visit to authorize
// this application.
func (s *Session) GetAuthURL() string {
	return s.api.AuthURL()
}

// AuthenticateWithCode exchanges the pasted authorization code for a
// credential and records the user's current division. A failing division
// lookup does not fail the authentication.
func (s *Session) AuthenticateWithCode(ctx context.Context, code string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	token, err := s.auth.ExchangeCode(ctx, code)
	if err != nil {
		return err
	}

	division, err := s.engine.FetchCurrentDivision(ctx, token.AccessToken)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch current division after login")
		return nil
	}
	if err := s.auth.SetCurrentDivision(division); err != nil {
		log.Warn().Err(err).Msg("Failed to record current division")
	}
	return nil
}

// IsAuthenticated reports whether a credential is stored.
func (s *Session) IsAuthenticated() bool {
	return s.auth.IsAuthenticated()
}

// Logout discards the stored credential; idempotent.
func (s *Session) Logout() error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.auth.Logout()
}

// GetDivisions fetches the division list the user may access.
func (s *Session) GetDivisions(ctx context.Context) ([]client.Division, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	opCtx, done := s.beginOperation(ctx)
	defer done()
	return s.engine.GetDivisions(opCtx)
}

// GetTransactions retrieves all transaction lines of a division, reporting
// progress through the callback. On cancellation the partial set is
// returned together with client.ErrCancelled.
func (s *Session) GetTransactions(ctx context.Context, division, filter string, progress client.ProgressFunc) ([]client.Record, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	opCtx, done := s.beginOperation(ctx)
	defer done()
	return s.engine.GetTransactions(opCtx, client.RetrievalRequest{Division: division, Filter: filter}, progress)
}

// CancelOperation aborts the retrieval currently in flight, if any.
// Safe to call from any goroutine, any number of times.
func (s *Session) CancelOperation() {
	s.cancelMu.Lock()
	cancel := s.cancel
	s.cancelMu.Unlock()
	if cancel != nil {
		log.Info().Msg("Cancellation requested")
		cancel()
	}
}

// beginOperation derives a cancellable context for one retrieval and
// registers its cancel func so CancelOperation can reach it.
func (s *Session) beginOperation(ctx context.Context) (context.Context, func()) {
	opCtx, cancel := context.WithCancel(ctx)

	s.cancelMu.Lock()
	s.cancel = cancel
	s.cancelMu.Unlock()

	return opCtx, func() {
		s.cancelMu.Lock()
		s.cancel = nil
		s.cancelMu.Unlock()
		cancel()
	}
}
