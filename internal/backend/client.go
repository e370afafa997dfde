package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rrawat/converse/internal/config"
)

const (
	// FallbackAnswer substitutes an empty or absent answer field.
	FallbackAnswer = "No response found."

	// ConnectErrorMessage is the user-facing text for any transport or
	// parse failure.
	ConnectErrorMessage = "⚠️ Error connecting to backend server"
)

// Client issues single-shot requests to the answering service.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates an answer client for the configured service.
func NewClient(cfg config.BackendConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type chatResponse struct {
	Answer string `json:"answer"`
}

// Ask sends one query and returns the service's answer verbatim. The
// caller must not pass an empty or whitespace-only query. An empty
// answer field resolves to FallbackAnswer; every failure comes back as
// a plain error, never a panic.
func (c *Client) Ask(ctx context.Context, query string) (string, error) {
	endpoint := fmt.Sprintf("%s/chat-llm?query=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if chatResp.Answer == "" {
		return FallbackAnswer, nil
	}
	return chatResp.Answer, nil
}

// Health probes the answering service's root endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	return nil
}
