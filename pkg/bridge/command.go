package bridge

import (
	"github.com/jwebster45206/worldforge/pkg/state"
	"github.com/jwebster45206/worldforge/pkg/world"
)

// CommandType identifies a command understood by the engine peer.
type CommandType string

const (
	CmdSetEra          CommandType = "SET_ERA"
	CmdSetTrait        CommandType = "SET_TRAIT"
	CmdSpawnSettlement CommandType = "SPAWN_SETTLEMENT"
	CmdSetAtmosphere   CommandType = "SET_ATMOSPHERE"
	CmdAddFaction      CommandType = "ADD_FACTION"
	CmdPlaceLandmark   CommandType = "PLACE_LANDMARK"
	CmdSyncWorldState  CommandType = "SYNC_WORLD_STATE"
)

// Command is a message for the engine peer. Only the payload field that
// matches Type is set; it is serialized as one flat JSON object, e.g.
// {"type":"SET_TRAIT","trait":"militarism","value":0.7}.
type Command struct {
	Type       CommandType      `json:"type"`
	Era        *world.Era       `json:"era,omitempty"`
	Trait      world.Axis       `json:"trait,omitempty"`
	Value      *float64         `json:"value,omitempty"`
	Settlement *world.Landmark  `json:"settlement,omitempty"`
	Atmosphere world.Atmosphere `json:"atmosphere,omitempty"`
	Faction    *world.Faction   `json:"faction,omitempty"`
	Landmark   *world.Landmark  `json:"landmark,omitempty"`
	State      *state.Snapshot  `json:"state,omitempty"`
}

func SetEraCommand(era world.Era) Command {
	e := era.Clone()
	return Command{Type: CmdSetEra, Era: &e}
}

func SetTraitCommand(axis world.Axis, value float64) Command {
	return Command{Type: CmdSetTrait, Trait: axis, Value: &value}
}

func SpawnSettlementCommand(settlement world.Landmark) Command {
	return Command{Type: CmdSpawnSettlement, Settlement: &settlement}
}

func SetAtmosphereCommand(a world.Atmosphere) Command {
	return Command{Type: CmdSetAtmosphere, Atmosphere: a}
}

func AddFactionCommand(f world.Faction) Command {
	c := f.Clone()
	return Command{Type: CmdAddFaction, Faction: &c}
}

func PlaceLandmarkCommand(l world.Landmark) Command {
	return Command{Type: CmdPlaceLandmark, Landmark: &l}
}

func SyncWorldStateCommand(s state.Snapshot) Command {
	c := s.Clone()
	return Command{Type: CmdSyncWorldState, State: &c}
}
