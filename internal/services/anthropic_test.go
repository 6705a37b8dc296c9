package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jwebster45206/worldforge/pkg/chat"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewAnthropicService(t *testing.T) {
	service := NewAnthropicService("test-api-key", "", testLogger())

	if service.apiKey != "test-api-key" {
		t.Errorf("Expected API key %s, got %s", "test-api-key", service.apiKey)
	}
	if service.modelName != DefaultAnthropicModel {
		t.Errorf("Expected default model %s, got %s", DefaultAnthropicModel, service.modelName)
	}
	if service.maxTokens != DefaultAnthropicMaxTokens {
		t.Errorf("Expected max tokens %d, got %d", DefaultAnthropicMaxTokens, service.maxTokens)
	}
	if service.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
}

func TestAnthropicService_InitModel(t *testing.T) {
	service := NewAnthropicService("test-key", "claude-test", testLogger())

	if err := service.InitModel(context.Background(), "claude-test"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestAnthropicService_Chat(t *testing.T) {
	var got AnthropicChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") != anthropicVersion {
			t.Errorf("anthropic-version = %q", r.Header.Get("anthropic-version"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = io.WriteString(w, `{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"content": [{"type": "text", "text": "{\"id\":"}, {"type": "text", "text": "\"x\"}"}],
			"model": "claude-test",
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 20}
		}`)
	}))
	defer srv.Close()

	service := NewAnthropicService("test-key", "claude-test", testLogger(), WithBaseURL(srv.URL), WithMaxTokens(512))
	resp, err := service.Chat(context.Background(), []chat.ChatMessage{
		chat.System("You are a world-builder."),
		chat.User("Card 3"),
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if resp.Message != `{"id":"x"}` {
		t.Errorf("Message = %q", resp.Message)
	}
	if got.Model != "claude-test" || got.MaxTokens != 512 {
		t.Errorf("request model/max_tokens = %s/%d", got.Model, got.MaxTokens)
	}
	if got.System != "You are a world-builder." {
		t.Errorf("System = %q", got.System)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != chat.ChatRoleUser {
		t.Errorf("Messages = %+v, want the single user message", got.Messages)
	}
}

func TestAnthropicService_ChatErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{
			name:    "non-200 status",
			status:  http.StatusUnauthorized,
			body:    `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`,
			wantErr: "status 401",
		},
		{
			name:    "error payload",
			status:  http.StatusOK,
			body:    `{"error":{"type":"overloaded_error","message":"Overloaded"}}`,
			wantErr: "API error: Overloaded",
		},
		{
			name:    "malformed body",
			status:  http.StatusOK,
			body:    `not json`,
			wantErr: "failed to parse response",
		},
		{
			name:    "no text blocks",
			status:  http.StatusOK,
			body:    `{"content":[]}`,
			wantErr: "no text content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			service := NewAnthropicService("k", "m", testLogger(), WithBaseURL(srv.URL))
			_, err := service.Chat(context.Background(), []chat.ChatMessage{chat.User("hi")})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestAnthropicService_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	service := NewAnthropicService("k", "m", testLogger(), WithBaseURL(srv.URL))
	if _, err := service.Chat(ctx, []chat.ChatMessage{chat.User("hi")}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
