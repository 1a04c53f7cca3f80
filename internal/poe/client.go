package poe

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	app_errors "github.com/cyrilcaoyang/gopoe/internal/errors"
	"github.com/cyrilcaoyang/gopoe/internal/model"
)

// Message is a single role/content pair in the internal vocabulary. The
// translation to the Poe wire vocabulary ("assistant" -> "bot") happens
// inside the client and nowhere else.
type Message struct {
	Role    model.Role
	Content string
}

// StreamChunk is a single text fragment from the provider. Done marks the
// end-of-stream event; after Done no further chunks follow.
type StreamChunk struct {
	Text string
	Done bool
}

// Provider defines the interface for the external bot API. It delivers the
// reply as a lazy sequence of fragments on ch and closes ch when the stream
// ends, reporting the outcome through the returned error.
type Provider interface {
	StreamResponse(ctx context.Context, botName string, messages []Message, ch chan<- StreamChunk) error
}

type client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a Provider talking to a Poe-compatible bot query API.
func NewClient(baseURL, apiKey string) Provider {
	return &client{
		// No overall timeout: streaming responses hold the connection open.
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// protocolMessage is the wire shape of a single turn. Role here is the
// external vocabulary.
type protocolMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type queryRequest struct {
	Version string            `json:"version"`
	Type    string            `json:"type"`
	Query   []protocolMessage `json:"query"`
}

// wireRole translates the internal role vocabulary to Poe's.
func wireRole(r model.Role) string {
	if r == model.RoleAssistant {
		return "bot"
	}
	return string(r)
}

func (c *client) StreamResponse(ctx context.Context, botName string, messages []Message, ch chan<- StreamChunk) error {
	defer close(ch)

	if c.apiKey == "" {
		return fmt.Errorf("%w: POE_API_KEY is not set", app_errors.ErrAuthentication)
	}

	query := make([]protocolMessage, 0, len(messages))
	for _, msg := range messages {
		query = append(query, protocolMessage{Role: wireRole(msg.Role), Content: msg.Content})
	}

	body, err := json.Marshal(&queryRequest{Version: "1.0", Type: "query", Query: query})
	if err != nil {
		return fmt.Errorf("could not marshal query: %w", err)
	}

	endpoint := c.baseURL + "/bot/" + url.PathEscape(botName)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", app_errors.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.classifyStatus(resp)
	}

	return c.consumeStream(ctx, resp.Body, ch)
}

// classifyStatus maps the provider's non-200 responses onto the error
// taxonomy. The envelope is the provider's fixed contract, not ours.
func (c *client) classifyStatus(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	detail := strings.TrimSpace(string(raw))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: api returned status %d: %s", app_errors.ErrAuthentication, resp.StatusCode, detail)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: api returned status %d: %s", app_errors.ErrRateLimited, resp.StatusCode, detail)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%w: api returned status %d: %s", app_errors.ErrQuotaExceeded, resp.StatusCode, detail)
	}
	if strings.Contains(strings.ToLower(detail), "insufficient") || strings.Contains(strings.ToLower(detail), "quota") {
		return fmt.Errorf("%w: api returned status %d: %s", app_errors.ErrQuotaExceeded, resp.StatusCode, detail)
	}
	return fmt.Errorf("%w: api returned status %d: %s", app_errors.ErrTransport, resp.StatusCode, detail)
}

// eventPayload is the data object carried by text and error events.
type eventPayload struct {
	Text       string `json:"text"`
	AllowRetry bool   `json:"allow_retry"`
}

// consumeStream reads SSE events (text / done / error) until the provider
// signals completion. Fragments already sent on ch stay delivered regardless
// of how the stream ends; a stream that drops before the done event is a
// transport failure.
func (c *client) consumeStream(ctx context.Context, body io.Reader, ch chan<- StreamChunk) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var event, data string
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			continue
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			continue
		case line != "":
			continue
		}

		// Blank line: dispatch the buffered event.
		switch event {
		case "text":
			var payload eventPayload
			if err := json.Unmarshal([]byte(data), &payload); err != nil {
				return fmt.Errorf("%w: malformed text event: %v", app_errors.ErrTransport, err)
			}
			if payload.Text == "" {
				break
			}
			select {
			case ch <- StreamChunk{Text: payload.Text}:
			case <-ctx.Done():
				return ctx.Err()
			}
		case "done":
			select {
			case ch <- StreamChunk{Done: true}:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		case "error":
			var payload eventPayload
			_ = json.Unmarshal([]byte(data), &payload)
			return c.classifyErrorEvent(payload)
		}
		event, data = "", ""
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %v", app_errors.ErrTransport, err)
	}
	return fmt.Errorf("%w: stream ended before completion", app_errors.ErrTransport)
}

func (c *client) classifyErrorEvent(payload eventPayload) error {
	text := strings.ToLower(payload.Text)
	switch {
	case strings.Contains(text, "insufficient") || strings.Contains(text, "quota"):
		return fmt.Errorf("%w: %s", app_errors.ErrQuotaExceeded, payload.Text)
	case strings.Contains(text, "rate limit"):
		return fmt.Errorf("%w: %s", app_errors.ErrRateLimited, payload.Text)
	default:
		return fmt.Errorf("%w: provider error: %s", app_errors.ErrTransport, payload.Text)
	}
}
