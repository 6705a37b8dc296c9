package state

import (
	"sync"
	"time"

	"github.com/jwebster45206/worldforge/pkg/world"
)

// World is the single source of truth for a player's world: the selected
// era, traits, choice history, factions, landmarks and atmosphere.
// All mutation goes through its methods; readers get copies.
type World struct {
	mu         sync.RWMutex
	era        *world.Era
	traits     world.Traits
	choices    []ChoiceRecord
	factions   []world.Faction
	landmarks  []world.Landmark
	atmosphere world.Atmosphere
	now        func() time.Time
}

// Option configures a World.
type Option func(*World)

// WithClock sets the clock used to timestamp recorded choices.
func WithClock(now func() time.Time) Option {
	return func(w *World) {
		w.now = now
	}
}

// New creates a world in its default state.
func New(opts ...Option) *World {
	w := &World{now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	w.reset()
	return w
}

// reset assumes w.mu is held or w is not yet shared.
func (w *World) reset() {
	w.era = nil
	w.traits = world.DefaultTraits()
	w.choices = make([]ChoiceRecord, 0)
	w.factions = make([]world.Faction, 0)
	w.landmarks = make([]world.Landmark, 0)
	w.atmosphere = world.DefaultAtmosphere
}

// SelectEra starts a new world in era. Traits are reset to the era
// baseline, all history is cleared and the atmosphere returns to its
// default.
func (w *World) SelectEra(era world.Era) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.reset()
	e := era.Clone()
	w.era = &e
	w.traits = e.Traits()
}

// UpdateTraits overwrites the provided axes with their clamped values.
func (w *World) UpdateTraits(p world.PartialTraits) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.traits = w.traits.Merge(p)
}

// RecordChoice applies the chosen side of d and timestamps the record
// with the world's clock.
func (w *World) RecordChoice(d world.Dilemma, side world.Side) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.recordChoice(d, side, w.now())
}

// RecordChoiceAt is RecordChoice with an explicit timestamp. History is
// ordered by call sequence, not by timestamp.
func (w *World) RecordChoiceAt(d world.Dilemma, side world.Side, at time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.recordChoice(d, side, at)
}

func (w *World) recordChoice(d world.Dilemma, side world.Side, at time.Time) {
	choice := d.Choice(side)
	w.traits = w.traits.Apply(choice.TraitEffects)
	w.choices = append(w.choices, ChoiceRecord{
		Dilemma:   d.Clone(),
		Chosen:    side,
		Timestamp: at,
	})
	w.atmosphere = world.Classify(w.traits, w.atmosphere)
}

// AddFaction appends f. Duplicate ids are allowed.
func (w *World) AddFaction(f world.Faction) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.factions = append(w.factions, f.Clone())
}

// AddLandmark appends l. Duplicate ids are allowed.
func (w *World) AddLandmark(l world.Landmark) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.landmarks = append(w.landmarks, l)
}

// SetAtmosphere overrides the derived atmosphere.
func (w *World) SetAtmosphere(a world.Atmosphere) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.atmosphere = a
}

// Reset returns the world to its just-constructed state.
func (w *World) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.reset()
}

// Restore replaces the whole aggregate with a copy of s. Traits are
// clamped on the way in.
func (w *World) Restore(s Snapshot) {
	c := s.Clone()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.era = c.Era
	w.traits = c.Traits.Clamped()
	w.choices = c.Choices
	w.factions = c.Factions
	w.landmarks = c.Landmarks
	w.atmosphere = c.Atmosphere
	if !w.atmosphere.Valid() {
		w.atmosphere = world.DefaultAtmosphere
	}
}

// Snapshot returns a deep copy of the current aggregate.
func (w *World) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return Snapshot{
		Era:        w.era,
		Traits:     w.traits,
		Choices:    w.choices,
		Factions:   w.factions,
		Landmarks:  w.landmarks,
		Atmosphere: w.atmosphere,
	}.Clone()
}

// Era returns a copy of the selected era, or nil.
func (w *World) Era() *world.Era {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.era == nil {
		return nil
	}
	e := w.era.Clone()
	return &e
}

func (w *World) Traits() world.Traits {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.traits
}

func (w *World) Atmosphere() world.Atmosphere {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.atmosphere
}

// ChoiceCount is the number of recorded choices; the next card number is
// ChoiceCount()+1.
func (w *World) ChoiceCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.choices)
}
