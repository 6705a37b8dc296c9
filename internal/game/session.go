package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/worldforge/internal/dilemma"
	"github.com/jwebster45206/worldforge/internal/logger"
	"github.com/jwebster45206/worldforge/pkg/bridge"
	"github.com/jwebster45206/worldforge/pkg/state"
	"github.com/jwebster45206/worldforge/pkg/storage"
	"github.com/jwebster45206/worldforge/pkg/world"
)

var (
	ErrNoEra           = errors.New("no era selected")
	ErrNoDilemma       = errors.New("no dilemma drawn")
	ErrUnknownEra      = errors.New("unknown era")
	ErrNoStorage       = errors.New("session storage is disabled")
	ErrSessionNotFound = errors.New("session not found")
)

// Session drives one player's world: it draws dilemmas, applies choices to
// the world state, pushes the results to the engine bridge and saves the
// snapshot after every change.
type Session struct {
	world    *state.World
	dilemmas *dilemma.Service
	bridge   *bridge.Bridge
	store    storage.Storage
	baseLog  *slog.Logger

	mu      sync.Mutex
	id      uuid.UUID
	logger  *slog.Logger
	current *world.Dilemma
}

// Option configures a Session.
type Option func(*Session)

// WithStorage saves snapshots to store. Without it nothing is persisted.
func WithStorage(store storage.Storage) Option {
	return func(s *Session) {
		s.store = store
	}
}

// WithWorld uses w instead of a fresh world.
func WithWorld(w *state.World) Option {
	return func(s *Session) {
		s.world = w
	}
}

// WithID sets the session id instead of generating one.
func WithID(id uuid.UUID) Option {
	return func(s *Session) {
		s.id = id
	}
}

func New(dilemmas *dilemma.Service, b *bridge.Bridge, log *slog.Logger, opts ...Option) *Session {
	if log == nil {
		log = slog.Default()
	}
	s := &Session{
		dilemmas: dilemmas,
		bridge:   b,
		baseLog:  log,
		id:       uuid.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.world == nil {
		s.world = state.New()
	}
	s.logger = logger.WithSession(log, s.id.String())
	return s
}

func (s *Session) ID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *Session) World() *state.World {
	return s.world
}

func (s *Session) Bridge() *bridge.Bridge {
	return s.bridge
}

// Current returns a copy of the dilemma awaiting a choice, or nil.
func (s *Session) Current() *world.Dilemma {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	d := s.current.Clone()
	return &d
}

// Start begins a new world in the named era.
func (s *Session) Start(ctx context.Context, eraID string) error {
	era, ok := world.EraByID(eraID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEra, eraID)
	}

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	s.world.SelectEra(era)
	s.log().Info("Era selected", "era", era.ID)

	s.bridge.SetEra(ctx, era)
	s.persist(ctx)
	return nil
}

// NextDilemma draws the card for the next choice. It never fails once an
// era is selected; supplier errors fall back to the built-in cards.
func (s *Session) NextDilemma(ctx context.Context) (world.Dilemma, error) {
	era := s.world.Era()
	if era == nil {
		return world.Dilemma{}, ErrNoEra
	}

	n := s.world.ChoiceCount() + 1
	d := s.dilemmas.Next(ctx, era.ID, s.world.Traits(), n)

	s.mu.Lock()
	c := d.Clone()
	s.current = &c
	s.mu.Unlock()

	s.log().Debug("Dilemma drawn", "dilemma_id", d.ID, "card", n)
	return d, nil
}

// Choose applies side of the current dilemma and syncs the result to the
// engine. The returned snapshot reflects the choice.
func (s *Session) Choose(ctx context.Context, side world.Side) (state.Snapshot, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return state.Snapshot{}, ErrNoDilemma
	}
	d := s.current.Clone()
	s.current = nil
	s.mu.Unlock()

	chosen := &d.ChoiceB
	if side == world.SideA {
		chosen = &d.ChoiceA
	}
	for i := range chosen.Landmarks {
		if chosen.Landmarks[i].ID == "" {
			chosen.Landmarks[i].ID = uuid.NewString()
		}
	}

	before := s.world.Atmosphere()
	s.world.RecordChoice(d, side)

	for _, l := range d.Choice(side).Landmarks {
		s.world.AddLandmark(l)
		if l.Type == world.LandmarkSettlement {
			s.bridge.SpawnSettlement(ctx, l)
		} else {
			s.bridge.PlaceLandmark(ctx, l)
		}
	}

	snap := s.world.Snapshot()
	if snap.Atmosphere != before {
		s.log().Info("Atmosphere changed", "from", before, "to", snap.Atmosphere)
		s.bridge.SetAtmosphere(ctx, snap.Atmosphere)
	}
	s.bridge.SyncWorldState(ctx, snap)

	s.log().Info("Choice recorded",
		"dilemma_id", d.ID,
		"side", side,
		"choices", len(snap.Choices),
		"atmosphere", snap.Atmosphere)

	s.persist(ctx)
	return snap, nil
}

// Resume loads a saved session and replays it to the engine.
func (s *Session) Resume(ctx context.Context, id uuid.UUID) error {
	if s.store == nil {
		return ErrNoStorage
	}
	snap, err := s.store.LoadSnapshot(ctx, id)
	if err != nil {
		return fmt.Errorf("load session %s: %w", id, err)
	}
	if snap == nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	s.mu.Lock()
	s.id = id
	s.logger = logger.WithSession(s.baseLog, id.String())
	s.current = nil
	s.mu.Unlock()

	s.world.Restore(*snap)
	if era := s.world.Era(); era != nil {
		s.bridge.SetEra(ctx, *era)
	}
	s.bridge.SyncWorldState(ctx, s.world.Snapshot())
	s.log().Info("Session resumed", "era", snap.EraID(), "choices", len(snap.Choices))
	return nil
}

// Reset returns the world to its initial state and drops the current card.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	s.world.Reset()
	s.log().Info("World reset")
	s.persist(ctx)
}

// ExportJSON returns the snapshot as indented JSON.
func (s *Session) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(s.world.Snapshot(), "", "  ")
}

func (s *Session) log() *slog.Logger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logger
}

// persist saves the snapshot. Failures are logged; play continues.
func (s *Session) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	id := s.ID()
	if err := s.store.SaveSnapshot(ctx, id, s.world.Snapshot()); err != nil {
		s.log().Error("Failed to save session", "error", err)
	}
}
