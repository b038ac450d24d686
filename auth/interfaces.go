package auth

import (
	"context"

	"github.com/habedi/exactly/db"
)

// TokenStorer defines the contract for any component that can persist and
// retrieve the credential.
type TokenStorer interface {
	GetTokenRecord() (*db.Token, error)
	UpsertTokenRecord(token *db.Token) error
	DeleteTokenRecord() error
}

// TokenExchanger defines the contract for any component that can run the
// OAuth2 grants against the provider's token endpoint.
type TokenExchanger interface {
	PerformCodeExchange(ctx context.Context, code string) (accessToken, refreshToken string, expiresIn int64, err error)
	PerformTokenRefresh(ctx context.Context, refreshToken string) (accessToken, newRefreshToken string, expiresIn int64, err error)
}
