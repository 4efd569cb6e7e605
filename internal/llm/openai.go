// Package llm - openai.go talks to OpenAI-compatible chat completion endpoints.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Message represents a single chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float32         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatChoice struct {
	Index        int     `json:"index"`
	FinishReason string  `json:"finish_reason"`
	Message      Message `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// APIError is a non-2xx reply from the chat completions endpoint
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chat completions API returned status %d: %s", e.StatusCode, e.Body)
}

// OpenAIClient implements Client for OpenAI chat completions
type OpenAIClient struct {
	httpClient *http.Client
	config     *Config
	apiKey     string
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(config *Config, apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.BaseURL == "" {
		config = config.withBaseURL(DefaultOpenAIBaseURL)
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &OpenAIClient{
		httpClient: &http.Client{Timeout: timeout},
		config:     config,
		apiKey:     apiKey,
	}, nil
}

func (c *Config) withBaseURL(baseURL string) *Config {
	newConfig := *c
	newConfig.BaseURL = baseURL
	return &newConfig
}

// Generate generates a text reply
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	return c.complete(ctx, req, nil)
}

// GenerateJSON generates a JSON reply using JSON mode
func (c *OpenAIClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	text, err := c.complete(ctx, req, &responseFormat{Type: "json_object"})
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *OpenAIClient) complete(ctx context.Context, req Request, format *responseFormat) (string, error) {
	messages := make([]Message, 0, 2)
	if req.System != "" {
		messages = append(messages, Message{Role: "system", Content: req.System})
	}
	messages = append(messages, Message{Role: "user", Content: req.User})

	body, err := json.Marshal(chatRequest{
		Model:          c.config.Model,
		Messages:       messages,
		Temperature:    c.config.Temperature,
		ResponseFormat: format,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	endpoint := strings.TrimSuffix(c.config.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return parsed.Choices[0].Message.Content, nil
}

// Model returns the configured model name
func (c *OpenAIClient) Model() string {
	return c.config.Model
}

// Close is a no-op; the HTTP client holds no resources that need releasing
func (c *OpenAIClient) Close() error {
	return nil
}
