package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	authPath  = "/oauth2/auth"
	tokenPath = "/oauth2/token"
)

// AuthURL returns the provider page where the user signs in and approves
// access; the provider then redirects to the configured redirect URI with
// an authorization code attached.
func (c *Client) AuthURL() string {
	return fmt.Sprintf("%s%s?client_id=%s&redirect_uri=%s&response_type=code",
		c.cfg.BaseURL, authPath, url.QueryEscape(c.cfg.ClientID), url.QueryEscape(c.cfg.RedirectURI))
}

// tokenResponse mirrors the provider's token endpoint payload.
type tokenResponse struct {
	AccessToken      string          `json:"access_token"`
	RefreshToken     string          `json:"refresh_token"`
	ExpiresIn        json.Number     `json:"expires_in"`
	Error            string          `json:"error"`
	ErrorDescription json.RawMessage `json:"error_description"`
}

// PerformCodeExchange runs the authorization-code grant.
// A provider rejection wraps ErrGrantRejected; connection failures
// surface as *TransportError.
func (c *Client) PerformCodeExchange(ctx context.Context, code string) (string, string, int64, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"redirect_uri":  {c.cfg.RedirectURI},
		"code":          {code},
	}
	return c.postTokenForm(ctx, form)
}

// PerformTokenRefresh runs the refresh-token grant.
func (c *Client) PerformTokenRefresh(ctx context.Context, refreshToken string) (string, string, int64, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"refresh_token": {refreshToken},
	}
	return c.postTokenForm(ctx, form)
}

func (c *Client) postTokenForm(ctx context.Context, form url.Values) (string, string, int64, error) {
	urlStr := c.cfg.BaseURL + tokenPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", 0, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	log.Debug().Str("url", urlStr).Str("grant_type", form.Get("grant_type")).Msg("Requesting token grant")
	resp, err := c.http.Do(req)
	if err != nil {
		log.Error().Err(err).Str("url", urlStr).Msg("Token request failed")
		return "", "", 0, &TransportError{Err: err}
	}
	defer closeResponseBody(resp)

	body, err := readResponseBody(resp)
	if err != nil {
		return "", "", 0, err
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return "", "", 0, fmt.Errorf("%w: status %d", ErrGrantRejected, resp.StatusCode)
		}
		return "", "", 0, &DecodeError{Err: err}
	}

	if token.Error != "" {
		log.Warn().Str("error", token.Error).Msg("Token grant rejected")
		return "", "", 0, fmt.Errorf("%w: %s", ErrGrantRejected, token.Error)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || token.AccessToken == "" {
		return "", "", 0, fmt.Errorf("%w: status %d", ErrGrantRejected, resp.StatusCode)
	}

	expiresIn, _ := token.ExpiresIn.Int64()
	return token.AccessToken, token.RefreshToken, expiresIn, nil
}
