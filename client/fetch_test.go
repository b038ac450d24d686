package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return New(Config{BaseURL: baseURL, ClientID: "id", ClientSecret: "secret", RedirectURI: "http://localhost/cb"})
}

func TestFetchPage_DecodesEnvelopeAndStripsCursor(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"d":{"results":[{"EntryNumber":1},{"EntryNumber":2}],` +
			`"__next":"` + "http://"+r.Host + `/v1/123/bulk/Financial/TransactionLines?$skiptoken=abc"}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	page, err := c.FetchPage(context.Background(), "/v1/123/bulk/Financial/TransactionLines", "tok")

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Len(t, page.Records, 2)
	assert.Equal(t, "/v1/123/bulk/Financial/TransactionLines?$skiptoken=abc", page.NextCursor)
}

func TestFetchPage_FinalPageHasNoCursor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"d":{"results":[{"EntryNumber":1}]}}`))
	}))
	defer server.Close()

	page, err := newTestClient(server.URL).FetchPage(context.Background(), "/v1/x", "tok")

	require.NoError(t, err)
	assert.Empty(t, page.NextCursor)
}

func TestFetchPage_ErrorEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "odata error object",
			body: `{"error":{"code":"400","message":{"lang":"en","value":"Filter is invalid"}}}`,
			want: "Filter is invalid",
		},
		{
			name: "plain message string",
			body: `{"error":{"message":"access denied"}}`,
			want: "access denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).FetchPage(context.Background(), "/v1/x", "tok")

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.want, apiErr.Message)
		})
	}
}

func TestFetchPage_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchPage(context.Background(), "/v1/x", "tok")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Code)
	assert.Equal(t, "upstream exploded", apiErr.Message)
}

func TestFetchPage_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>definitely not json</html>`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchPage(context.Background(), "/v1/x", "tok")

	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestFetchPage_MissingEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchPage(context.Background(), "/v1/x", "tok")

	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestFetchPage_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Nothing listens on the URL anymore.

	_, err := newTestClient(server.URL).FetchPage(context.Background(), "/v1/x", "tok")

	var transportErr *TransportError
	assert.ErrorAs(t, err, &transportErr)
	assert.False(t, errors.Is(err, ErrCancelled))
}
