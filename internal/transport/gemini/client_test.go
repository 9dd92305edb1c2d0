package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
)

func newTestClient(t *testing.T, baseURL, apiKey string, timeout time.Duration) *Client {
	t.Helper()

	client, err := New(context.Background(), Config{BaseURL: baseURL, APIKey: apiKey, Timeout: timeout})
	require.NoError(t, err)

	return client
}

func TestClient_Complete(t *testing.T) {
	t.Run("returns the first candidate text", func(t *testing.T) {
		// Given: a server answering like generateContent
		var received map[string]any
		var apiKey, rawQuery string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
			apiKey = r.Header.Get("x-goog-api-key")
			rawQuery = r.URL.RawQuery
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"row\":1,"},{"text":"\"col\":2}"}]}}]}`))
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, "secret", time.Second)

		// When: a completion is requested
		text, err := client.Complete(context.Background(), "system", "board")

		// Then: the parts are joined
		require.NoError(t, err)
		assert.Equal(t, `{"row":1,"col":2}`, text)

		// Then: the key is sent as a header only
		assert.Equal(t, "secret", apiKey)
		assert.NotContains(t, rawQuery, "secret")

		// Then: the request carries the prompt, the instruction and the schema
		encoded, err := json.Marshal(received)
		require.NoError(t, err)
		assert.Contains(t, string(encoded), `"board"`)
		assert.Contains(t, string(encoded), `"system"`)
		assert.Contains(t, string(encoded), `"application/json"`)
		assert.Contains(t, string(encoded), `"winRate"`)
	})

	t.Run("non 200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		}))
		defer server.Close()

		_, err := newTestClient(t, server.URL, "k", time.Second).Complete(context.Background(), "s", "p")

		require.ErrorIs(t, err, apperror.ErrOracleUnavailable)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("no candidates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		}))
		defer server.Close()

		_, err := newTestClient(t, server.URL, "k", time.Second).Complete(context.Background(), "s", "p")

		require.ErrorIs(t, err, ErrEmptyResponse)
		require.ErrorIs(t, err, apperror.ErrOracleUnavailable)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		_, err := newTestClient(t, server.URL, "k", 20*time.Millisecond).Complete(context.Background(), "s", "p")

		require.ErrorIs(t, err, apperror.ErrOracleUnavailable)
	})

	t.Run("unreachable server keeps the key out of the error", func(t *testing.T) {
		// Given: a server that is already gone
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		// When: a completion is requested
		_, err := newTestClient(t, url, "SECRET-API-KEY", time.Second).Complete(context.Background(), "s", "p")

		// Then: the failure is reported without the key
		require.ErrorIs(t, err, apperror.ErrOracleUnavailable)
		assert.NotContains(t, err.Error(), "SECRET-API-KEY")
	})

	t.Run("missing key", func(t *testing.T) {
		// Given: a client without an API key
		client := newTestClient(t, "", "", time.Second)

		// When: a completion is requested
		_, err := client.Complete(context.Background(), "s", "p")

		// Then: it fails as unavailable without any request
		require.ErrorIs(t, err, ErrMissingAPIKey)
		require.ErrorIs(t, err, apperror.ErrOracleUnavailable)
	})
}
