package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultAPIURL    = "https://api.groq.com/openai/v1/chat/completions"
	defaultModel     = "llama-3.3-70b-versatile"
	defaultMaxTokens = 2048
)

// UpstreamError wraps a chat completion failure (network, auth, or a
// malformed provider response) so callers can tell it apart from their own
// failures.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("groq %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Message is a single role-tagged chat message.
type Message struct {
	Role    string `json:"role"` // "system", "user", or "assistant"
	Content string `json:"content"`
}

// Client is a Groq chat completions client.
type Client struct {
	apiKey      string
	model       string
	apiURL      string
	temperature float64
	httpClient  *http.Client
}

// NewClient creates a new Groq API client.
func NewClient(apiKey, model string, temperature float64) *Client {
	if model == "" {
		model = defaultModel
	}
	if temperature <= 0 {
		temperature = 0.7
	}

	return &Client{
		apiKey:      apiKey,
		model:       model,
		apiURL:      defaultAPIURL,
		temperature: temperature,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// chatRequest represents the API request structure
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// chatResponse represents the API response structure
type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends the full message history and returns the assistant's reply.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	req := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   defaultMaxTokens,
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", &UpstreamError{Op: "marshal request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", &UpstreamError{Op: "create request", Err: err}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &UpstreamError{Op: "send request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UpstreamError{Op: "read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{
			Op:  "chat completion",
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var apiResp chatResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", &UpstreamError{Op: "unmarshal response", Err: err}
	}

	if apiResp.Error != nil {
		return "", &UpstreamError{
			Op:  "chat completion",
			Err: fmt.Errorf("%s: %s", apiResp.Error.Type, apiResp.Error.Message),
		}
	}

	if len(apiResp.Choices) == 0 {
		return "", &UpstreamError{Op: "chat completion", Err: fmt.Errorf("empty response from API")}
	}

	return apiResp.Choices[0].Message.Content, nil
}

// IsConfigured returns true if the client has an API key.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}
