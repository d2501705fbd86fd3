package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func openAICompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": finish,
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     40,
			"completion_tokens": 25,
			"total_tokens":      65,
		},
	}
}

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewOpenAIProvider(OpenAIConfig{
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		BaseURL: server.URL + "/v1",
	})
	if err != nil {
		t.Fatalf("NewOpenAIProvider: %v", err)
	}
	return p
}

func TestOpenAIProvider_ChatHistory(t *testing.T) {
	var body struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, openAICompletion("A prime has exactly two divisors.", "stop"))
	})

	resp, err := p.Generate(context.Background(), Request{
		System: "You are EduGenie.",
		Messages: []Message{
			{Role: RoleUser, Content: "What is a prime?"},
			{Role: RoleAssistant, Content: "A number divisible only by 1 and itself."},
			{Role: RoleUser, Content: "Shorter please"},
		},
		MaxTokens: 128,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "A prime has exactly two divisors." {
		t.Fatalf("unexpected text %q", resp.Text())
	}
	if resp.Usage.InputTokens != 40 || resp.Usage.OutputTokens != 25 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}

	wantRoles := []string{"system", "user", "assistant", "user"}
	if len(body.Messages) != len(wantRoles) {
		t.Fatalf("sent %d messages, want %d", len(body.Messages), len(wantRoles))
	}
	for i, role := range wantRoles {
		if body.Messages[i].Role != role {
			t.Fatalf("message %d role = %q, want %q", i, body.Messages[i].Role, role)
		}
	}
	if body.Model != "gpt-4o-mini" {
		t.Fatalf("model = %q", body.Model)
	}
}

func TestOpenAIProvider_StructuredOutput(t *testing.T) {
	var body map[string]any
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, openAICompletion(`{"correct":true,"feedback":"Right, 7 is prime."}`, "stop"))
	})

	resp, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "Is 7 prime? Student said yes."}},
		Schema:    gradingTestSchema(),
		MaxTokens: 128,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != `{"correct":true,"feedback":"Right, 7 is prime."}` {
		t.Fatalf("unexpected content %s", resp.Content)
	}

	format, ok := body["response_format"].(map[string]any)
	if !ok || format["type"] != "json_schema" {
		t.Fatalf("response_format not sent: %v", body["response_format"])
	}
}

func TestOpenAIProvider_StructuredInvalid(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, openAICompletion(`{"feedback":"missing verdict"}`, "stop"))
	})

	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "grade"}},
		Schema:    gradingTestSchema(),
		MaxTokens: 64,
	})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
	}
}

func TestOpenAIProvider_LengthStop(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, openAICompletion(`{"correct":`, "length"))
	})

	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "grade"}},
		Schema:    gradingTestSchema(),
		MaxTokens: 2,
	})
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T (%v)", err, err)
	}
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body := openAICompletion("", "stop")
		body["choices"] = []map[string]any{}
		writeJSON(w, http.StatusOK, body)
	})

	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
	}
}

func TestOpenAIProvider_ErrorMapping(t *testing.T) {
	t.Run("rate limit", func(t *testing.T) {
		p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error": map[string]any{"type": "tokens", "message": "Rate limit exceeded", "code": "rate_limit_exceeded"},
			})
		})
		_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "test"}}})
		var rl *ErrRateLimit
		if !errors.As(err, &rl) {
			t.Fatalf("expected ErrRateLimit, got: %T (%v)", err, err)
		}
	})

	t.Run("server error", func(t *testing.T) {
		p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error": map[string]any{"type": "server_error", "message": "Internal server error"},
			})
		})
		_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "test"}}})
		var unavail *ErrProviderUnavailable
		if !errors.As(err, &unavail) {
			t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
		}
	})
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(OpenAIConfig{Model: "gpt-4o"}); err == nil {
		t.Fatal("expected error for empty API key")
	}
}

func TestOpenAIProvider_ContentFilterBlocks(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, openAICompletion("", "content_filter"))
	})

	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	var blocked *ErrContentBlocked
	if !errors.As(err, &blocked) {
		t.Fatalf("expected ErrContentBlocked, got %T (%v)", err, err)
	}
}

func TestOpenAIProvider_ZeroTemperatureIsSent(t *testing.T) {
	var body map[string]any
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, openAICompletion("ok", "stop"))
	})

	_, err := p.Generate(context.Background(), Request{
		Messages:    []Message{{Role: RoleUser, Content: "hi"}},
		Temperature: 0,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	temp, ok := body["temperature"].(float64)
	if !ok {
		t.Fatalf("temperature missing from request: %v", body)
	}
	if temp <= 0 || temp > 1e-6 {
		t.Errorf("temperature = %v, want a near-zero value", temp)
	}
}
