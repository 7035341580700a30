package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func chatServer(t *testing.T, content string, seen *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if seen != nil {
			if err := json.NewDecoder(r.Body).Decode(seen); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   "test-model",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			}},
		})
	}))
}

func TestOpenAIGenerate(t *testing.T) {
	tests := []struct {
		name       string
		json       bool
		wantFormat bool
	}{
		{"text", false, false},
		{"json", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen map[string]interface{}
			srv := chatServer(t, "  {\"ok\":true}\n", &seen)
			defer srv.Close()

			c, err := NewOpenAI(srv.URL, "key", "test-model", time.Second)
			if err != nil {
				t.Fatalf("NewOpenAI: %v", err)
			}
			got, err := c.Generate(context.Background(), Request{Prompt: "hello", JSON: tt.json})
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if got != `{"ok":true}` {
				t.Fatalf("content: want=%q got=%q", `{"ok":true}`, got)
			}
			_, hasFormat := seen["response_format"]
			if hasFormat != tt.wantFormat {
				t.Fatalf("response_format present: want=%v got=%v", tt.wantFormat, hasFormat)
			}
			if seen["model"] != "test-model" {
				t.Fatalf("model: got=%v", seen["model"])
			}
		})
	}
}

func TestOpenAIServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewOpenAI(srv.URL, "key", "test-model", time.Second)
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	if _, err := c.Generate(context.Background(), Request{Prompt: "hi"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewOpenAIRequiresModel(t *testing.T) {
	if _, err := NewOpenAI("", "key", "", 0); err == nil {
		t.Fatalf("expected error for empty model")
	}
}

func TestNewSelectsProvider(t *testing.T) {
	c, err := New(context.Background(), Config{Provider: "OpenAI", OpenAIModel: "m"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	o, ok := c.(*OpenAI)
	if !ok {
		t.Fatalf("want *OpenAI got=%T", c)
	}
	if o.timeout != DefaultTimeout {
		t.Fatalf("timeout: want=%v got=%v", DefaultTimeout, o.timeout)
	}

	if _, err := New(context.Background(), Config{Provider: "claude"}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
	if _, err := New(context.Background(), Config{Provider: "gemini"}); err == nil {
		t.Fatalf("expected error for missing gemini key")
	}
}

func TestFakeRecordsRequests(t *testing.T) {
	f := &Fake{Response: "ok"}
	if got, _ := f.Generate(context.Background(), Request{Prompt: "p", JSON: true}); got != "ok" {
		t.Fatalf("want=ok got=%q", got)
	}
	reqs := f.Requests()
	if len(reqs) != 1 || !reqs[0].JSON || reqs[0].Prompt != "p" {
		t.Fatalf("requests: got=%+v", reqs)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Generate(ctx, Request{}); err == nil {
		t.Fatalf("expected context error")
	}
}
