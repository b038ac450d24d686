package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// envelope is the wrapper the list endpoints put around every result page.
type envelope struct {
	D *struct {
		Results []map[string]any `json:"results"`
		Next    string           `json:"__next"`
	} `json:"d"`
	Error *errorBody `json:"error"`
}

// errorBody covers the two error shapes the provider emits: a bare string
// message and an OData object with a nested localized value.
type errorBody struct {
	Code    json.Number     `json:"code"`
	Message json.RawMessage `json:"message"`
}

func (e *errorBody) text() string {
	if len(e.Message) == 0 {
		return "unknown API error"
	}
	var plain string
	if err := json.Unmarshal(e.Message, &plain); err == nil {
		return plain
	}
	var nested struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(e.Message, &nested); err == nil && nested.Value != "" {
		return nested.Value
	}
	return string(e.Message)
}

func (e *errorBody) apiError(status int) *APIError {
	code := status
	if n, err := e.Code.Int64(); err == nil && n != 0 {
		code = int(n)
	}
	return &APIError{Code: code, Message: e.text()}
}

// FetchPage issues one authenticated GET against the given path and decodes
// the result envelope. The cursor in the returned Page has the base URL
// prefix stripped so it can be fed straight back into the next call.
// It does not retry; transient failures surface as *TransportError.
func (c *Client) FetchPage(ctx context.Context, path, accessToken string) (Page, error) {
	body, status, err := c.getRaw(ctx, path, accessToken)
	if err != nil {
		return Page{}, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if status < 200 || status >= 300 {
			// Non-JSON error body, e.g. an HTML gateway page.
			return Page{}, &APIError{Code: status, Message: strings.TrimSpace(string(body))}
		}
		return Page{}, &DecodeError{Err: err}
	}

	if env.Error != nil {
		return Page{}, env.Error.apiError(status)
	}
	if status < 200 || status >= 300 {
		return Page{}, &APIError{Code: status, Message: strings.TrimSpace(string(body))}
	}
	if env.D == nil {
		return Page{}, &DecodeError{Err: fmt.Errorf("response has no 'd' envelope")}
	}

	return Page{
		Records:    env.D.Results,
		NextCursor: c.stripBase(env.D.Next),
	}, nil
}

// getRaw performs one authenticated GET and returns the raw body and status.
func (c *Client) getRaw(ctx context.Context, path, accessToken string) ([]byte, int, error) {
	urlStr := c.resolveURL(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		log.Error().Err(err).Str("url", urlStr).Msg("Failed to create HTTP request object")
		return nil, 0, &TransportError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))

	log.Debug().Str("url", urlStr).Msg("Sending API request")
	resp, err := c.http.Do(req)
	if err != nil {
		log.Error().Err(err).Str("url", urlStr).Msg("HTTP request failed")
		return nil, 0, &TransportError{Err: err}
	}
	defer closeResponseBody(resp)

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}
