package textgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type capturedRequest struct {
	Model     string `json:"model"`
	MaxTokens int64  `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
}

func newServer(t *testing.T, status int, body string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const okBody = `{
	"id": "msg_01",
	"type": "message",
	"role": "assistant",
	"model": "test-model",
	"content": [{"type": "text", "text": "  Priya enquired about pricing for the premium plan.  "}],
	"stop_reason": "end_turn",
	"usage": {"input_tokens": 10, "output_tokens": 12}
}`

func TestGenerateReturnsFirstTextBlock(t *testing.T) {
	var captured capturedRequest
	srv := newServer(t, http.StatusOK, okBody, &captured)

	client := NewClient(Config{APIKey: "test", BaseURL: srv.URL, Model: "test-model", MaxTokens: 321, Timeout: 2 * time.Second})
	text, err := client.Generate(context.Background(), "summarize this lead")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Priya enquired about pricing for the premium plan." {
		t.Fatalf("unexpected text %q", text)
	}

	if captured.Model != "test-model" || captured.MaxTokens != 321 {
		t.Fatalf("unexpected request: model=%q maxTokens=%d", captured.Model, captured.MaxTokens)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Role != "user" {
		t.Fatalf("expected a single user message, got %+v", captured.Messages)
	}
	if len(captured.Messages[0].Content) != 1 || captured.Messages[0].Content[0].Text != "summarize this lead" {
		t.Fatalf("prompt not forwarded: %+v", captured.Messages[0].Content)
	}
}

func TestGenerateFailsOnNon2xx(t *testing.T) {
	srv := newServer(t, http.StatusServiceUnavailable, `{"type":"error","error":{"type":"overloaded_error","message":"overloaded"}}`, nil)

	client := NewClient(Config{APIKey: "test", BaseURL: srv.URL, Model: "test-model"})
	if _, err := client.Generate(context.Background(), "prompt"); err == nil {
		t.Fatalf("expected error on 503")
	}
}

func TestGenerateFailsOnEmptyContent(t *testing.T) {
	body := `{"id":"msg_02","type":"message","role":"assistant","model":"m","content":[],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":0}}`
	srv := newServer(t, http.StatusOK, body, nil)

	client := NewClient(Config{APIKey: "test", BaseURL: srv.URL, Model: "m"})
	if _, err := client.Generate(context.Background(), "prompt"); err != ErrEmptyCompletion {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
}
