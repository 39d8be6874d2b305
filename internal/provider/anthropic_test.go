package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropicPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got == "" {
			t.Error("anthropic-version header missing")
		}

		var req struct {
			Model    string `json:"model"`
			System   string `json:"system"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.System != "sys" || len(req.Messages) != 1 || req.Messages[0].Content != "hello" {
			t.Errorf("request = %+v", req)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": "part one "},
				{"type": "text", "text": "part two"},
			},
		})
	}))
	defer srv.Close()

	a := NewAnthropic(WithAPIKey("test-key"), WithBaseURL(srv.URL))
	reply, err := a.Prompt(context.Background(), "sys", "hello")
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}
	if reply != "part one part two" {
		t.Errorf("reply = %q", reply)
	}
}

func TestAnthropicPromptNoKey(t *testing.T) {
	a := NewAnthropic(WithAPIKey(""))
	if _, err := a.Prompt(context.Background(), "sys", "hello"); err == nil {
		t.Fatal("Prompt succeeded without an API key")
	}
}

func TestAnthropicOverloaded(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"429", http.StatusTooManyRequests, `{}`},
		{"529", 529, `{}`},
		{"error payload", http.StatusOK, `{"error":{"type":"overloaded_error","message":"Overloaded"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			a := NewAnthropic(WithAPIKey("test-key"), WithBaseURL(srv.URL))
			_, err := a.Prompt(context.Background(), "sys", "hello")
			if !errors.Is(err, ErrOverloaded) {
				t.Errorf("err = %v, want ErrOverloaded", err)
			}
		})
	}
}

func TestAnthropicAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad model"}}`))
	}))
	defer srv.Close()

	a := NewAnthropic(WithAPIKey("test-key"), WithBaseURL(srv.URL))
	_, err := a.Prompt(context.Background(), "sys", "hello")
	if err == nil {
		t.Fatal("Prompt succeeded on API error")
	}
	if errors.Is(err, ErrOverloaded) {
		t.Error("plain API error classified as overloaded")
	}
}

func TestAnthropicEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	a := NewAnthropic(WithAPIKey("test-key"), WithBaseURL(srv.URL))
	if _, err := a.Prompt(context.Background(), "sys", "hello"); err == nil {
		t.Fatal("Prompt succeeded on empty content")
	}
}
