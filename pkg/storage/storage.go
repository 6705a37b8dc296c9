package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/worldforge/pkg/state"
	"github.com/jwebster45206/worldforge/pkg/world"
)

// Storage persists world snapshots by session id.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// SaveSnapshot creates or replaces the session's snapshot.
	SaveSnapshot(ctx context.Context, id uuid.UUID, snap state.Snapshot) error
	// LoadSnapshot returns (nil, nil) when the session does not exist.
	LoadSnapshot(ctx context.Context, id uuid.UUID) (*state.Snapshot, error)
	DeleteSnapshot(ctx context.Context, id uuid.UUID) error
	// ListSessions returns summaries, most recently updated first.
	ListSessions(ctx context.Context) ([]SessionSummary, error)
}

// SessionSummary describes a saved session without its full history.
type SessionSummary struct {
	ID          uuid.UUID        `json:"id"`
	EraID       string           `json:"eraId"`
	Atmosphere  world.Atmosphere `json:"atmosphere"`
	ChoiceCount int              `json:"choiceCount"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Summarize builds the summary of snap.
func Summarize(id uuid.UUID, snap state.Snapshot, updatedAt time.Time) SessionSummary {
	return SessionSummary{
		ID:          id,
		EraID:       snap.EraID(),
		Atmosphere:  snap.Atmosphere,
		ChoiceCount: len(snap.Choices),
		UpdatedAt:   updatedAt,
	}
}
