// Package dilemma supplies tarot-style dilemma cards, preferring a
// generated card and falling back to a canned table.
package dilemma

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jwebster45206/worldforge/pkg/world"
)

var ErrInvalidDilemma = errors.New("invalid dilemma")

// Supplier produces the dilemma for a card.
type Supplier interface {
	FetchDilemma(ctx context.Context, eraID string, traits world.Traits, cardNumber int) (*world.Dilemma, error)
}

// Service hands out dilemmas from a primary supplier, masking its
// failures with the fallback table. Next never fails.
type Service struct {
	primary  Supplier
	fallback *Fallback
	logger   *slog.Logger
}

// NewService creates a Service. primary may be nil, in which case every
// card comes from the fallback table.
func NewService(primary Supplier, fallback *Fallback, logger *slog.Logger) *Service {
	if fallback == nil {
		fallback = NewFallback()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{primary: primary, fallback: fallback, logger: logger}
}

// Next returns card cardNumber for the era and current traits.
func (s *Service) Next(ctx context.Context, eraID string, traits world.Traits, cardNumber int) world.Dilemma {
	s.logger.Info("Generating dilemma", "era", eraID, "card_number", cardNumber)

	if s.primary != nil {
		d, err := s.primary.FetchDilemma(ctx, eraID, traits, cardNumber)
		switch {
		case err != nil:
			s.logger.Error("Dilemma supplier failed, using fallback", "era", eraID, "card_number", cardNumber, "error", err)
		case d == nil:
			s.logger.Warn("Dilemma supplier returned nothing, using fallback", "era", eraID, "card_number", cardNumber)
		default:
			s.logger.Info("Dilemma generated", "card_name", d.CardName, "id", d.ID)
			return *d
		}
	}

	d := s.fallback.Dilemma(eraID, cardNumber)
	s.logger.Info("Using fallback dilemma", "card_name", d.CardName, "id", d.ID)
	return d
}
