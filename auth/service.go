package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/habedi/exactly/client"
	"github.com/habedi/exactly/db"
	"github.com/rs/zerolog/log"
)

// Errors callers dispatch on to decide the remedy: re-authenticate versus
// retry versus fix the request.
var (
	// ErrUnauthenticated means no credential exists; the user has to run
	// the authorization-code flow first.
	ErrUnauthenticated = errors.New("not authenticated; please login first")

	// ErrAuthExpired means the provider rejected the refresh token; the
	// remedy is the same as ErrUnauthenticated.
	ErrAuthExpired = errors.New("session expired; please login again")

	// ErrInvalidAuthCode means the provider rejected the authorization code.
	ErrInvalidAuthCode = errors.New("authorization code rejected by provider")
)

// tokenRefreshHorizon is how long a freshly issued access token is trusted.
// The provider states a 600s lifetime; refreshing 30s early keeps a
// long-running retrieval from presenting a token the server already rejects.
const tokenRefreshHorizon = 570 * time.Second

// Service owns the credential lifecycle: initial exchange, expiry tracking,
// silent refresh, and persistence. One instance must be shared by everything
// that authenticates, so refreshes never race each other.
type Service struct {
	Storer    TokenStorer
	Exchanger TokenExchanger

	now func() time.Time
}

// NewService is the constructor for the auth service.
func NewService(storer TokenStorer, exchanger TokenExchanger) *Service {
	return NewServiceWithClock(storer, exchanger, time.Now)
}

// NewServiceWithClock constructs a Service with an explicit clock, so expiry
// decisions can be pinned in tests.
func NewServiceWithClock(storer TokenStorer, exchanger TokenExchanger, now func() time.Time) *Service {
	return &Service{
		Storer:    storer,
		Exchanger: exchanger,
		now:       now,
	}
}

// EnsureValidToken returns a credential that is valid right now, refreshing
// and persisting it first when the stored one has expired. Callers must
// invoke it immediately before every authenticated request rather than
// caching the result across a retrieval loop.
func (s *Service) EnsureValidToken(ctx context.Context) (*db.Token, error) {
	token, err := s.Storer.GetTokenRecord()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve token record: %w", err)
	}
	if token == nil {
		return nil, ErrUnauthenticated
	}

	if s.isTokenValid(token) {
		return token, nil
	}

	log.Info().Msg("Access token expired or invalid, refreshing...")
	access, refresh, expiresIn, err := s.Exchanger.PerformTokenRefresh(ctx, token.RefreshToken)
	if err != nil {
		if errors.Is(err, client.ErrGrantRejected) {
			return nil, fmt.Errorf("%w: %v", ErrAuthExpired, err)
		}
		return nil, fmt.Errorf("failed to perform token refresh: %w", err)
	}
	log.Debug().Int64("expires_in", expiresIn).Msg("Provider reported token lifetime")

	token.AccessToken = access
	token.RefreshToken = refresh
	token.ExpiresAt = s.now().Add(tokenRefreshHorizon).Format(time.RFC3339)
	if err := s.Storer.UpsertTokenRecord(token); err != nil {
		return nil, fmt.Errorf("failed to save refreshed token: %w", err)
	}
	log.Info().Msg("Token refreshed and saved successfully.")
	return token, nil
}

// ExchangeCode runs the authorization-code grant and persists the resulting
// credential before returning it.
func (s *Service) ExchangeCode(ctx context.Context, code string) (*db.Token, error) {
	access, refresh, expiresIn, err := s.Exchanger.PerformCodeExchange(ctx, code)
	if err != nil {
		if errors.Is(err, client.ErrGrantRejected) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAuthCode, err)
		}
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	log.Debug().Int64("expires_in", expiresIn).Msg("Provider reported token lifetime")

	token := &db.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    s.now().Add(tokenRefreshHorizon).Format(time.RFC3339),
	}
	if err := s.Storer.UpsertTokenRecord(token); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}
	log.Info().Msg("Authenticated and token saved successfully.")
	return token, nil
}

// IsAuthenticated reports whether a credential is present. It does not
// check expiry; a stale credential still counts as authenticated because
// EnsureValidToken will refresh it silently.
func (s *Service) IsAuthenticated() bool {
	token, err := s.Storer.GetTokenRecord()
	return err == nil && token != nil && token.AccessToken != ""
}

// SetCurrentDivision records the provider-reported current division on the
// stored credential.
func (s *Service) SetCurrentDivision(division string) error {
	token, err := s.Storer.GetTokenRecord()
	if err != nil {
		return fmt.Errorf("failed to retrieve token record: %w", err)
	}
	if token == nil {
		return ErrUnauthenticated
	}
	token.CurrentDivision = division
	return s.Storer.UpsertTokenRecord(token)
}

// Logout discards the persisted credential. Logging out while already
// logged out is not an error.
func (s *Service) Logout() error {
	if err := s.Storer.DeleteTokenRecord(); err != nil {
		return fmt.Errorf("failed to discard credential: %w", err)
	}
	log.Info().Msg("Logged out.")
	return nil
}

// isTokenValid checks if the access token is still usable right now.
// An unparsable or missing expiry counts as expired so the next request
// triggers a refresh instead of a guaranteed rejection.
func (s *Service) isTokenValid(token *db.Token) bool {
	if token.AccessToken == "" || token.RefreshToken == "" || token.ExpiresAt == "" {
		return false
	}
	expiresAt, err := time.Parse(time.RFC3339, token.ExpiresAt)
	if err != nil {
		log.Error().Err(err).Msgf("Failed to parse expiration time: %s", token.ExpiresAt)
		return false
	}
	return s.now().Before(expiresAt)
}
