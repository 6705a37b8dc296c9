package state

import (
	"encoding/json"
	"time"

	"github.com/jwebster45206/worldforge/pkg/world"
)

// ChoiceRecord is one entry of the append-only choice history.
type ChoiceRecord struct {
	Dilemma   world.Dilemma
	Chosen    world.Side
	Timestamp time.Time
}

type choiceRecordJSON struct {
	Dilemma   world.Dilemma `json:"dilemma"`
	Chosen    world.Side    `json:"chosen"`
	Timestamp int64         `json:"timestamp"` // Unix milliseconds
}

func (r ChoiceRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(choiceRecordJSON{
		Dilemma:   r.Dilemma,
		Chosen:    r.Chosen,
		Timestamp: r.Timestamp.UnixMilli(),
	})
}

func (r *ChoiceRecord) UnmarshalJSON(data []byte) error {
	var raw choiceRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Dilemma = raw.Dilemma
	r.Chosen = raw.Chosen
	r.Timestamp = time.UnixMilli(raw.Timestamp)
	return nil
}

func (r ChoiceRecord) clone() ChoiceRecord {
	r.Dilemma = r.Dilemma.Clone()
	return r
}

// Snapshot is a point-in-time copy of the world. It shares no memory with
// the World it was taken from and is the interchange format with engine
// consumers.
type Snapshot struct {
	Era        *world.Era       `json:"era"`
	Traits     world.Traits     `json:"traits"`
	Choices    []ChoiceRecord   `json:"choices"`
	Factions   []world.Faction  `json:"factions"`
	Landmarks  []world.Landmark `json:"landmarks"`
	Atmosphere world.Atmosphere `json:"atmosphere"`
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Traits:     s.Traits,
		Choices:    make([]ChoiceRecord, len(s.Choices)),
		Factions:   make([]world.Faction, len(s.Factions)),
		Landmarks:  make([]world.Landmark, len(s.Landmarks)),
		Atmosphere: s.Atmosphere,
	}
	if s.Era != nil {
		era := s.Era.Clone()
		out.Era = &era
	}
	for i, c := range s.Choices {
		out.Choices[i] = c.clone()
	}
	for i, f := range s.Factions {
		out.Factions[i] = f.Clone()
	}
	copy(out.Landmarks, s.Landmarks)
	return out
}

// EraID returns the id of the selected era, or "" when none is selected.
func (s Snapshot) EraID() string {
	if s.Era == nil {
		return ""
	}
	return s.Era.ID
}
