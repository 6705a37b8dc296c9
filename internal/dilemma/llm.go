package dilemma

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jwebster45206/worldforge/internal/services"
	"github.com/jwebster45206/worldforge/pkg/chat"
	"github.com/jwebster45206/worldforge/pkg/world"
)

// LLMSupplier asks a language model to write each card.
type LLMSupplier struct {
	llm    services.LLMService
	logger *slog.Logger
}

var _ Supplier = (*LLMSupplier)(nil)

func NewLLMSupplier(llm services.LLMService, logger *slog.Logger) *LLMSupplier {
	return &LLMSupplier{llm: llm, logger: logger}
}

func (s *LLMSupplier) FetchDilemma(ctx context.Context, eraID string, traits world.Traits, cardNumber int) (*world.Dilemma, error) {
	prompt := BuildPrompt(eraID, traits, cardNumber)

	resp, err := s.llm.Chat(ctx, []chat.ChatMessage{chat.User(prompt)})
	if err != nil {
		return nil, fmt.Errorf("failed to generate dilemma: %w", err)
	}

	d, err := ParseDilemma(resp.Message)
	if err != nil {
		s.logger.Debug("Unparseable dilemma response", "response", resp.Message)
		return nil, err
	}

	d.CardNumber = cardNumber
	if d.Era == "" {
		d.Era = eraID
	}
	return d, nil
}

// ParseDilemma decodes a model response, tolerating a surrounding
// markdown code fence, and checks the card is playable.
func ParseDilemma(text string) (*world.Dilemma, error) {
	var d world.Dilemma
	if err := json.Unmarshal([]byte(chat.StripCodeFence(text)), &d); err != nil {
		return nil, fmt.Errorf("failed to parse dilemma: %w", err)
	}
	if err := validate(d); err != nil {
		return nil, err
	}
	return &d, nil
}

func validate(d world.Dilemma) error {
	var missing []string
	if strings.TrimSpace(d.ID) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(d.CardName) == "" {
		missing = append(missing, "cardName")
	}
	if strings.TrimSpace(d.ChoiceA.Label) == "" {
		missing = append(missing, "choiceA.label")
	}
	if strings.TrimSpace(d.ChoiceB.Label) == "" {
		missing = append(missing, "choiceB.label")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidDilemma, strings.Join(missing, ", "))
	}
	return nil
}
