package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type recordedRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *ResponseFormat `json:"response_format"`
}

func completionResponse(content string) string {
	return `{"id":"cmpl-1","choices":[{"message":{"role":"assistant","content":` +
		string(mustJSON(content)) + `},"finish_reason":"stop"}]}`
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

// TestChatSuccess verifies the request shape and response decoding for a
// plain completion call.
func TestChatSuccess(t *testing.T) {
	var got recordedRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s, want /chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionResponse("hello there")))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-key", "test-model")
	content, err := client.Complete(context.Background(), "be brief", "say hello", Options{Temperature: 0.3})
	if err != nil {
		t.Fatal(err)
	}
	if content != "hello there" {
		t.Errorf("content = %q, want %q", content, "hello there")
	}
	if got.Model != "test-model" {
		t.Errorf("model = %q, want test-model", got.Model)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Errorf("messages = %+v, want system+user pair", got.Messages)
	}
	if got.ResponseFormat != nil {
		t.Error("response_format should be absent without JSONMode")
	}
	if got.MaxTokens != 4096 {
		t.Errorf("max_tokens = %d, want default 4096", got.MaxTokens)
	}
}

// TestChatJSONMode verifies JSONMode requests a json_object response format.
func TestChatJSONMode(t *testing.T) {
	var got recordedRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		_, _ = w.Write([]byte(completionResponse(`{"ok":true}`)))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-key", "test-model")
	if _, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "json please"}}, Options{JSONMode: true}); err != nil {
		t.Fatal(err)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format = %+v, want json_object", got.ResponseFormat)
	}
}

// TestChatFallbackModel verifies the fallback model is tried after a primary
// model error.
func TestChatFallbackModel(t *testing.T) {
	var models []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req recordedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		models = append(models, req.Model)
		if req.Model == "primary" {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"rate limit exceeded","type":"rate_limit"}}`))
			return
		}
		_, _ = w.Write([]byte(completionResponse("fallback answer")))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-key", "primary")
	client.SetFallbackModel("secondary")

	content, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if content != "fallback answer" {
		t.Errorf("content = %q, want %q", content, "fallback answer")
	}
	if len(models) != 2 || models[0] != "primary" || models[1] != "secondary" {
		t.Errorf("models tried = %v, want [primary secondary]", models)
	}
}

// TestChatBothModelsFail verifies the last error is surfaced when every model fails.
func TestChatBothModelsFail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"backend unavailable","type":"server_error"}}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-key", "primary")
	client.SetFallbackModel("secondary")

	_, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, Options{})
	if err == nil {
		t.Fatal("expected an error when all models fail")
	}
}

// TestChatNoFallback verifies an empty fallback model disables the retry.
func TestChatNoFallback(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-key", "primary")
	client.SetFallbackModel("")

	if _, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, Options{}); err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

// TestChatNoChoices verifies an empty choices array is treated as an error.
func TestChatNoChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"cmpl-2","choices":[]}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-key", "primary")
	client.SetFallbackModel("")

	if _, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, Options{}); err == nil {
		t.Fatal("expected an error for empty choices")
	}
}
