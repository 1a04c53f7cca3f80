package poe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app_errors "github.com/cyrilcaoyang/gopoe/internal/errors"
	"github.com/cyrilcaoyang/gopoe/internal/model"
)

// streamFromServer runs StreamResponse against a mock server and collects
// every chunk it delivers before the channel closes.
func streamFromServer(t *testing.T, serverURL, apiKey string, messages []Message) ([]StreamChunk, error) {
	t.Helper()

	client := NewClient(serverURL, apiKey)
	ch := make(chan StreamChunk)
	errc := make(chan error, 1)
	go func() {
		errc <- client.StreamResponse(context.Background(), "TestBot", messages, ch)
	}()

	var chunks []StreamChunk
	for chunk := range ch {
		chunks = append(chunks, chunk)
	}
	return chunks, <-errc
}

func writeSSE(w http.ResponseWriter, event, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

func TestClient_StreamResponse_HappyPath(t *testing.T) {
	var capturedPath, capturedAuth string
	var capturedBody queryRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedAuth = r.Header.Get("Authorization")
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &capturedBody))

		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(w, "text", `{"text": "Hello"}`)
		writeSSE(w, "text", `{"text": ", world"}`)
		writeSSE(w, "done", `{}`)
	}))
	defer server.Close()

	messages := []Message{
		{Role: model.RoleUser, Content: "Hi"},
		{Role: model.RoleAssistant, Content: "Hello!"},
		{Role: model.RoleUser, Content: "Say hello again"},
	}
	chunks, err := streamFromServer(t, server.URL, "test-key", messages)
	require.NoError(t, err)

	require.Len(t, chunks, 3)
	assert.Equal(t, "Hello", chunks[0].Text)
	assert.Equal(t, ", world", chunks[1].Text)
	assert.True(t, chunks[2].Done)

	assert.Equal(t, "/bot/TestBot", capturedPath)
	assert.Equal(t, "Bearer test-key", capturedAuth)

	// The internal "assistant" role crosses the wire as "bot"; the client
	// owns that translation.
	require.Len(t, capturedBody.Query, 3)
	assert.Equal(t, "user", capturedBody.Query[0].Role)
	assert.Equal(t, "bot", capturedBody.Query[1].Role)
	assert.Equal(t, "user", capturedBody.Query[2].Role)
	assert.Equal(t, "Say hello again", capturedBody.Query[2].Content)
}

func TestClient_StreamResponse_MissingAPIKey(t *testing.T) {
	requested := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}))
	defer server.Close()

	chunks, err := streamFromServer(t, server.URL, "", []Message{{Role: model.RoleUser, Content: "Hi"}})
	assert.ErrorIs(t, err, app_errors.ErrAuthentication)
	assert.Empty(t, chunks)
	assert.False(t, requested, "the client should fail before making a request")
}

func TestClient_StreamResponse_StatusClassification(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		expected error
	}{
		{"401 is an authentication failure", http.StatusUnauthorized, "invalid key", app_errors.ErrAuthentication},
		{"403 is an authentication failure", http.StatusForbidden, "forbidden", app_errors.ErrAuthentication},
		{"429 is a rate limit", http.StatusTooManyRequests, "slow down", app_errors.ErrRateLimited},
		{"402 is an exhausted quota", http.StatusPaymentRequired, "payment required", app_errors.ErrQuotaExceeded},
		{"500 mentioning quota is an exhausted quota", http.StatusInternalServerError, "insufficient compute points", app_errors.ErrQuotaExceeded},
		{"500 otherwise is a transport failure", http.StatusInternalServerError, "boom", app_errors.ErrTransport},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			chunks, err := streamFromServer(t, server.URL, "test-key", []Message{{Role: model.RoleUser, Content: "Hi"}})
			assert.ErrorIs(t, err, tc.expected)
			assert.Empty(t, chunks)
		})
	}
}

func TestClient_StreamResponse_DroppedStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(w, "text", `{"text": "partial"}`)
		// Connection ends without a done event.
	}))
	defer server.Close()

	chunks, err := streamFromServer(t, server.URL, "test-key", []Message{{Role: model.RoleUser, Content: "Hi"}})

	// Fragments already delivered stay delivered; the missing done event is a
	// transport failure.
	require.Len(t, chunks, 1)
	assert.Equal(t, "partial", chunks[0].Text)
	assert.ErrorIs(t, err, app_errors.ErrTransport)
}

func TestClient_StreamResponse_ErrorEvent(t *testing.T) {
	t.Run("generic provider error is a transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			writeSSE(w, "error", `{"text": "something broke", "allow_retry": true}`)
		}))
		defer server.Close()

		_, err := streamFromServer(t, server.URL, "test-key", []Message{{Role: model.RoleUser, Content: "Hi"}})
		assert.ErrorIs(t, err, app_errors.ErrTransport)
		assert.ErrorContains(t, err, "something broke")
	})

	t.Run("quota wording maps to the quota class", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			writeSSE(w, "error", `{"text": "Insufficient compute points"}`)
		}))
		defer server.Close()

		_, err := streamFromServer(t, server.URL, "test-key", []Message{{Role: model.RoleUser, Content: "Hi"}})
		assert.ErrorIs(t, err, app_errors.ErrQuotaExceeded)
	})

	t.Run("rate limit wording maps to the rate limit class", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			writeSSE(w, "error", `{"text": "Rate limit exceeded, try later"}`)
		}))
		defer server.Close()

		_, err := streamFromServer(t, server.URL, "test-key", []Message{{Role: model.RoleUser, Content: "Hi"}})
		assert.ErrorIs(t, err, app_errors.ErrRateLimited)
	})
}

func TestWireRole(t *testing.T) {
	assert.Equal(t, "user", wireRole(model.RoleUser))
	assert.Equal(t, "bot", wireRole(model.RoleAssistant))
}
