package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/jwebster45206/worldforge/pkg/chat"
)

func TestMockLLMService(t *testing.T) {
	mockService := NewMockLLMAPI()

	if err := mockService.InitModel(context.Background(), "test-model"); err != nil {
		t.Errorf("InitModel failed: %v", err)
	}

	response, err := mockService.Chat(context.Background(), []chat.ChatMessage{chat.User("Hello")})
	if err != nil {
		t.Errorf("Chat failed: %v", err)
	}
	if response.Message != "Mock response" {
		t.Errorf("Expected 'Mock response', got '%s'", response.Message)
	}

	initCalls, chatCalls := mockService.GetCalls()
	if len(initCalls) != 1 || initCalls[0] != "test-model" {
		t.Errorf("InitModel calls = %v", initCalls)
	}
	if len(chatCalls) != 1 {
		t.Errorf("Expected 1 Chat call, got %d", len(chatCalls))
	}

	mockService.Reset()
	initCalls, chatCalls = mockService.GetCalls()
	if len(initCalls) != 0 || len(chatCalls) != 0 {
		t.Error("Reset should clear call tracking")
	}
}

func TestMockLLMService_Configured(t *testing.T) {
	mockService := NewMockLLMAPI()

	mockService.SetChatResponse(`{"id":"x"}`)
	resp, err := mockService.Chat(context.Background(), nil)
	if err != nil || resp.Message != `{"id":"x"}` {
		t.Errorf("Chat = %v, %v", resp, err)
	}

	expectedErr := fmt.Errorf("rate limited")
	mockService.SetChatError(expectedErr)
	if _, err := mockService.Chat(context.Background(), nil); err != expectedErr {
		t.Errorf("Chat error = %v, want %v", err, expectedErr)
	}

	mockService.SetInitModelError(expectedErr)
	if err := mockService.InitModel(context.Background(), "m"); err != expectedErr {
		t.Errorf("InitModel error = %v, want %v", err, expectedErr)
	}
}
