package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the hosted text-generation model.
	DefaultBaseURL = "https://api-inference.huggingface.co/models/facebook/opt-350m"
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20
)

// Client calls a hosted text-generation model to reflect on journal entries.
// It holds no state between calls.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the default model endpoint. A zero timeout
// means 30 seconds.
func NewClient(apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewClientWithBaseURL creates a client pointing at a custom endpoint, such
// as a self-hosted model or a test server.
func NewClientWithBaseURL(apiKey, baseURL string, timeout time.Duration) *Client {
	c := NewClient(apiKey, timeout)
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

// Respond generates a short reflection on entry. It makes exactly one request.
func (c *Client) Respond(ctx context.Context, entry string) (string, error) {
	if entry == "" {
		return "", ErrEmptyEntry
	}
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	body, err := json.Marshal(GenerateRequest{
		Inputs:     BuildPrompt(entry),
		Parameters: DefaultParameters,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("text generation failed", "status", resp.StatusCode, "body", string(respBody))
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	generated, err := parseGenerated(respBody)
	if err != nil {
		return "", err
	}
	return ExtractResponse(generated), nil
}

// parseGenerated pulls generated_text out of the first result. Bodies that
// are not JSON are reported as decode errors; JSON of the wrong shape is
// ErrMalformedResponse.
func parseGenerated(body []byte) (string, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	results, ok := raw.([]any)
	if !ok || len(results) == 0 {
		return "", ErrMalformedResponse
	}
	first, ok := results[0].(map[string]any)
	if !ok {
		return "", ErrMalformedResponse
	}
	text, ok := first["generated_text"].(string)
	if !ok || text == "" {
		return "", ErrMalformedResponse
	}
	return text, nil
}
