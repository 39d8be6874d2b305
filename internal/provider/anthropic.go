package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Anthropic is a provider for Anthropic's Claude API.
type Anthropic struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// AnthropicOption configures the Anthropic provider.
type AnthropicOption func(*Anthropic)

// WithAPIKey sets the API key.
func WithAPIKey(key string) AnthropicOption {
	return func(a *Anthropic) { a.APIKey = key }
}

// WithModel sets the model name.
func WithModel(model string) AnthropicOption {
	return func(a *Anthropic) { a.Model = model }
}

// WithBaseURL overrides the API endpoint, for tests.
func WithBaseURL(url string) AnthropicOption {
	return func(a *Anthropic) { a.BaseURL = strings.TrimRight(url, "/") }
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) AnthropicOption {
	return func(a *Anthropic) { a.Timeout = timeout }
}

// NewAnthropic creates a new Anthropic provider.
func NewAnthropic(opts ...AnthropicOption) *Anthropic {
	a := &Anthropic{
		APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		Model:   "claude-sonnet-4-20250514",
		BaseURL: "https://api.anthropic.com",
		Timeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Prompt sends a prompt to Anthropic and returns the response.
func (a *Anthropic) Prompt(ctx context.Context, system, user string) (string, error) {
	if a.APIKey == "" {
		return "", fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	reqBody := anthropicRequest{
		Model:     a.Model,
		MaxTokens: 4096,
		System:    system,
		Messages: []anthropicMessage{
			{Role: "user", Content: user},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/v1/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := &http.Client{Timeout: a.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == 529 {
		io.Copy(io.Discard, resp.Body)
		return "", ErrOverloaded
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("anthropic error (%d): %s", resp.StatusCode, string(body))
	}

	var result anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	if result.Error != nil {
		if result.Error.Type == "overloaded_error" {
			return "", ErrOverloaded
		}
		return "", fmt.Errorf("anthropic error: %s", result.Error.Message)
	}

	if len(result.Content) == 0 {
		return "", fmt.Errorf("anthropic: no content in response")
	}

	var sb strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return sb.String(), nil
}
