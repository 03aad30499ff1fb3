package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func openaiTestServer(t *testing.T, handler http.Handler) *OpenAI {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewOpenAI(server.Client(), server.URL, "sk-test")
}

func TestOpenAIComplete(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", func(writer http.ResponseWriter, request *http.Request) {
		if got := request.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization = %q", got)
		}

		var wireRequest struct {
			Model       string   `json:"model"`
			MaxTokens   int      `json:"max_tokens"`
			Temperature *float64 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(request.Body).Decode(&wireRequest); err != nil {
			writer.WriteHeader(http.StatusBadRequest)
			return
		}
		if wireRequest.Model != "gpt-4o-mini" {
			t.Errorf("model = %q, want gpt-4o-mini", wireRequest.Model)
		}
		if wireRequest.MaxTokens != 300 {
			t.Errorf("max_tokens = %d, want 300", wireRequest.MaxTokens)
		}
		if wireRequest.Temperature == nil || *wireRequest.Temperature != 0.8 {
			t.Errorf("temperature = %v, want 0.8", wireRequest.Temperature)
		}
		if length := len(wireRequest.Messages); length != 2 {
			t.Errorf("messages length = %d, want 2", length)
			writer.WriteHeader(http.StatusBadRequest)
			return
		}
		if wireRequest.Messages[0].Role != "system" || wireRequest.Messages[0].Content != "Sois bref." {
			t.Errorf("messages[0] = %+v", wireRequest.Messages[0])
		}
		if wireRequest.Messages[1].Role != "user" || wireRequest.Messages[1].Content != "Quand ?" {
			t.Errorf("messages[1] = %+v", wireRequest.Messages[1])
		}

		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{
			"model": "gpt-4o-mini-2024-07-18",
			"choices": [{"message": {"role": "assistant", "content": "Le 19 septembre !"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 5}
		}`))
	})

	provider := openaiTestServer(t, mux)
	temperature := 0.8
	response, err := provider.Complete(context.Background(), Request{
		Model:       "gpt-4o-mini",
		System:      "Sois bref.",
		Messages:    []Message{{Role: RoleUser, Content: "Quand ?"}},
		MaxTokens:   300,
		Temperature: &temperature,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if response.Text != "Le 19 septembre !" {
		t.Errorf("text = %q", response.Text)
	}
	if response.FinishReason != "stop" {
		t.Errorf("finish_reason = %q", response.FinishReason)
	}
	if response.Usage.InputTokens != 12 || response.Usage.OutputTokens != 5 {
		t.Errorf("usage = %+v", response.Usage)
	}
}

func TestOpenAIProviderError(t *testing.T) {
	t.Parallel()

	provider := openaiTestServer(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusTooManyRequests)
		writer.Write([]byte(`{"error":{"type":"rate_limit_exceeded","message":"slow down"}}`))
	}))

	_, err := provider.Complete(context.Background(), Request{Model: "m"})
	var providerError *ProviderError
	if !errors.As(err, &providerError) {
		t.Fatalf("error = %v, want *ProviderError", err)
	}
	if providerError.StatusCode != http.StatusTooManyRequests || providerError.Type != "rate_limit_exceeded" {
		t.Errorf("provider error = %+v", providerError)
	}
}

func TestOpenAIEmptyChoices(t *testing.T) {
	t.Parallel()

	provider := openaiTestServer(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte(`{"model":"m","choices":[]}`))
	}))

	_, err := provider.Complete(context.Background(), Request{Model: "m"})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("error = %v, want ErrEmptyResponse", err)
	}
}

func TestOpenAIMissingKey(t *testing.T) {
	t.Parallel()

	provider := NewOpenAI(nil, "http://unused", "")
	if provider.Configured() {
		t.Fatal("Configured() = true without a key")
	}
	_, err := provider.Complete(context.Background(), Request{Model: "m"})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("error = %v, want ErrMissingAPIKey", err)
	}
}
