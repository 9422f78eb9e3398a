package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL targets the Groq OpenAI-compatible chat completions endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// Default models. The fallback model is tried when the primary one errors.
const (
	DefaultModel  = "llama-3.3-70b-versatile"
	FallbackModel = "llama-3.1-8b-instant"
)

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat selects the completion output mode ("text" or "json_object").
type ResponseFormat struct {
	Type string `json:"type"`
}

// chatRequest is the chat completions request body.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// chatResponse is the chat completions response body.
type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Options control a single completion call.
type Options struct {
	Temperature float64
	MaxTokens   int
	// JSONMode requests a json_object response from the API.
	JSONMode bool
}

// Client calls an OpenAI-compatible chat completions API.
type Client struct {
	baseURL       string
	apiKey        string
	model         string
	fallbackModel string
	httpClient    *http.Client
}

// NewClient creates a completion client. Empty baseURL and model fall back
// to the Groq defaults.
func NewClient(baseURL, apiKey, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		model:         model,
		fallbackModel: FallbackModel,
		httpClient:    &http.Client{Timeout: 60 * time.Second},
	}
}

// SetFallbackModel overrides the fallback model. Empty disables the retry.
func (c *Client) SetFallbackModel(model string) {
	c.fallbackModel = model
}

// Chat sends the messages and returns the completion content. The primary
// model is tried first, then the fallback model on error.
func (c *Client) Chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	models := []string{c.model}
	if c.fallbackModel != "" && c.fallbackModel != c.model {
		models = append(models, c.fallbackModel)
	}

	var lastErr error
	for _, model := range models {
		content, err := c.chatWithModel(ctx, messages, opts, model)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

// Complete is a convenience wrapper for a system+user exchange.
func (c *Client) Complete(ctx context.Context, system, user string, opts Options) (string, error) {
	return c.Chat(ctx, []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, opts)
}

func (c *Client) chatWithModel(ctx context.Context, messages []Message, opts Options, model string) (string, error) {
	req := chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 4096
	}
	if opts.JSONMode {
		req.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("parsing response (status %d): %w", resp.StatusCode, err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("completion API: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("completion API returned no choices (status %d)", resp.StatusCode)
	}
	return chatResp.Choices[0].Message.Content, nil
}
