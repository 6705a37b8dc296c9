package services

import (
	"context"

	"github.com/jwebster45206/worldforge/pkg/chat"
)

// LLMService defines the interface for interacting with an LLM API
type LLMService interface {
	// InitModel prepares the model on startup. Hosted providers may no-op.
	InitModel(ctx context.Context, modelName string) error

	// Chat sends a conversation and returns the model's reply
	Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)
}
