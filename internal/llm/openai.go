// Package llm is a minimal client for OpenAI-compatible chat completion APIs
// (OpenAI, Azure OpenAI, OpenRouter, vLLM, Ollama, …).
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrMissingAPIKey is returned when the client has no credential.
var ErrMissingAPIKey = errors.New("llm/openai: missing API key")

// ErrEmptyResponse is returned when the provider answers without any choice.
var ErrEmptyResponse = errors.New("llm/openai: empty response")

// Role of a chat message.
type Role string

const RoleUser Role = "user"

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Request is a blocking completion request.
type Request struct {
	Model       string
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature *float64
}

// Usage reports token accounting for a response.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is the first choice of a completion.
type Response struct {
	Model        string
	Text         string
	FinishReason string
	Usage        Usage
}

// ProviderError is a non-200 answer from the API, in the common
// {"error":{"type":"…","message":"…"}} shape when available.
type ProviderError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("llm/openai: %d %s: %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("llm/openai: %d: %s", e.StatusCode, e.Message)
}

// OpenAI sends requests to {baseURL}/v1/chat/completions.
type OpenAI struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewOpenAI creates an OpenAI-compatible client.
func NewOpenAI(httpClient *http.Client, baseURL, apiKey string) *OpenAI {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAI{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// Configured reports whether an API key is set.
func (provider *OpenAI) Configured() bool {
	return provider.apiKey != ""
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends a non-streaming request and returns the first choice.
func (provider *OpenAI) Complete(ctx context.Context, request Request) (*Response, error) {
	if !provider.Configured() {
		return nil, ErrMissingAPIKey
	}

	body, err := json.Marshal(provider.buildRequest(request))
	if err != nil {
		return nil, fmt.Errorf("llm/openai: marshaling request: %w", err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost,
		provider.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm/openai: creating request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("Authorization", "Bearer "+provider.apiKey)

	httpResponse, err := provider.httpClient.Do(httpRequest)
	if err != nil {
		return nil, fmt.Errorf("llm/openai: sending request: %w", err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		return nil, readProviderError(httpResponse)
	}

	var wire openaiResponse
	if err := json.NewDecoder(httpResponse.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("llm/openai: decoding response: %w", err)
	}
	if len(wire.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	return &Response{
		Model:        wire.Model,
		Text:         wire.Choices[0].Message.Content,
		FinishReason: wire.Choices[0].FinishReason,
		Usage: Usage{
			InputTokens:  wire.Usage.PromptTokens,
			OutputTokens: wire.Usage.CompletionTokens,
		},
	}, nil
}

// buildRequest converts our types to the wire format. The system prompt
// becomes the first message with role "system".
func (provider *OpenAI) buildRequest(request Request) openaiRequest {
	wire := openaiRequest{
		Model:       request.Model,
		MaxTokens:   request.MaxTokens,
		Temperature: request.Temperature,
	}
	if request.System != "" {
		wire.Messages = append(wire.Messages, openaiMessage{Role: "system", Content: request.System})
	}
	for _, message := range request.Messages {
		wire.Messages = append(wire.Messages, openaiMessage{Role: string(message.Role), Content: message.Content})
	}
	return wire
}

func readProviderError(httpResponse *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(httpResponse.Body, 4096))

	var wireError struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &wireError) == nil && wireError.Error.Message != "" {
		return &ProviderError{
			StatusCode: httpResponse.StatusCode,
			Type:       wireError.Error.Type,
			Message:    wireError.Error.Message,
		}
	}
	return &ProviderError{
		StatusCode: httpResponse.StatusCode,
		Message:    string(body),
	}
}
