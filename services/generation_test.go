package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newCompletionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode completion request: %v", err)
		}
		if req.ResponseFormat.Type != "json_object" {
			t.Errorf("expected json_object response format, got %q", req.ResponseFormat.Type)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system+user messages, got %+v", req.Messages)
		}

		choices := []map[string]interface{}{}
		if content != "" {
			choices = append(choices, map[string]interface{}{
				"message": map[string]string{"content": content},
			})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": choices})
	}))
}

func TestOpenAIGenerator(t *testing.T) {
	server := newCompletionServer(t, `{"destination": "Lisbon"}`)
	defer server.Close()

	gen := &OpenAIGenerator{BaseURL: server.URL, APIKey: "test", Model: "gpt-4-turbo", Client: server.Client()}

	out, err := gen.GenerateItinerary(context.Background(), "plan a trip")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"destination": "Lisbon"}` {
		t.Fatalf("unexpected content %q", out)
	}
}

func TestOpenAIGeneratorEmptyContent(t *testing.T) {
	server := newCompletionServer(t, "")
	defer server.Close()

	gen := &OpenAIGenerator{BaseURL: server.URL, APIKey: "test", Model: "gpt-4-turbo", Client: server.Client()}

	if _, err := gen.GenerateItinerary(context.Background(), "plan a trip"); err == nil {
		t.Fatal("expected error when the service returns no content")
	}
}

func TestOpenAIGeneratorUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer server.Close()

	gen := &OpenAIGenerator{BaseURL: server.URL, APIKey: "test", Model: "gpt-4-turbo", Client: server.Client()}

	_, err := gen.GenerateItinerary(context.Background(), "plan a trip")
	if err == nil {
		t.Fatal("expected error on upstream failure")
	}
}
