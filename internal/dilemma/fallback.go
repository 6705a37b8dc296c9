package dilemma

import (
	"context"

	"github.com/jwebster45206/worldforge/pkg/world"
)

// DefaultFallbackEra is used for eras without a table of their own.
const DefaultFallbackEra = "normandy_10th"

// Fallback deals canned cards, cycling through a per-era table.
type Fallback struct {
	tables map[string][]world.Dilemma
}

var _ Supplier = (*Fallback)(nil)

// NewFallback returns the built-in tables.
func NewFallback() *Fallback {
	return &Fallback{tables: map[string][]world.Dilemma{
		"normandy_10th": normandyDilemmas,
		"viking_9th":    vikingDilemmas,
	}}
}

// NewFallbackWithTables uses tables instead of the built-in ones. When
// tables has no non-empty DefaultFallbackEra table, eras without cards get
// the built-in normandy table.
func NewFallbackWithTables(tables map[string][]world.Dilemma) *Fallback {
	return &Fallback{tables: tables}
}

// Dilemma returns a copy of the card at (cardNumber-1) mod len for the
// era, with CardNumber set to cardNumber. Unknown eras use
// DefaultFallbackEra.
func (f *Fallback) Dilemma(eraID string, cardNumber int) world.Dilemma {
	table := f.tables[eraID]
	if len(table) == 0 {
		table = f.tables[DefaultFallbackEra]
	}
	if len(table) == 0 {
		table = normandyDilemmas
	}

	i := (cardNumber - 1) % len(table)
	if i < 0 {
		i += len(table)
	}

	d := table[i].Clone()
	d.CardNumber = cardNumber
	return d
}

func (f *Fallback) FetchDilemma(_ context.Context, eraID string, _ world.Traits, cardNumber int) (*world.Dilemma, error) {
	d := f.Dilemma(eraID, cardNumber)
	return &d, nil
}

var fl = world.Float

var normandyDilemmas = []world.Dilemma{
	{
		ID:          "conquest_vs_trade",
		CardName:    "The Path of Power",
		CardNumber:  1,
		Description: "The Northmen have settled these shores, but how shall they build their legacy? Through the sword that takes, or the coin that binds?",
		Era:         "normandy_10th",
		ChoiceA: world.Choice{
			Label:        "The Conqueror",
			Description:  "Expand through might. Let the banner of the Norman lords fly over new territories, taken by right of arms.",
			TraitEffects: world.PartialTraits{Militarism: fl(0.15), Prosperity: fl(-0.05), Lawfulness: fl(-0.1)},
			WorldEvents:  []string{"Military encampments appear across the land", "Fortifications are strengthened"},
			Landmarks:    []world.Landmark{{Name: "Castle of the Marches", Type: world.LandmarkFortress, Description: "A timber motte raised on the border."}},
		},
		ChoiceB: world.Choice{
			Label:        "The Merchant",
			Description:  "Build through trade. Let wealth flow through the ports and markets, binding allies through commerce.",
			TraitEffects: world.PartialTraits{Prosperity: fl(0.15), Openness: fl(0.1), Militarism: fl(-0.1)},
			WorldEvents:  []string{"Trade routes are established", "Markets flourish in major towns"},
			Landmarks:    []world.Landmark{{Name: "Port of Fécamp", Type: world.LandmarkSettlement, Description: "A busy harbour town of wool and wine."}},
		},
	},
	{
		ID:          "faith_vs_pragmatism",
		CardName:    "The Sacred Question",
		CardNumber:  2,
		Description: "The old gods whisper from the northern winds, while the church bells call the faithful. Which voice shall guide your people?",
		Era:         "normandy_10th",
		ChoiceA: world.Choice{
			Label:        "The Pious",
			Description:  "Embrace the Church fully. Build monasteries, support the clergy, and let faith guide the realm.",
			TraitEffects: world.PartialTraits{Religiosity: fl(0.2), Lawfulness: fl(0.1), Openness: fl(-0.1)},
			WorldEvents:  []string{"Monasteries are founded", "Church influence grows"},
			Landmarks:    []world.Landmark{{Name: "Abbey of Jumièges", Type: world.LandmarkMonastery, Description: "Twin towers rise over the Seine."}},
		},
		ChoiceB: world.Choice{
			Label:        "The Pragmatist",
			Description:  "Let faith serve the realm, not rule it. Maintain traditions but bend when advantage demands.",
			TraitEffects: world.PartialTraits{Prosperity: fl(0.1), Lawfulness: fl(0.05), Religiosity: fl(-0.1)},
			WorldEvents:  []string{"Secular courts gain power", "Religious tolerance spreads"},
		},
	},
	{
		ID:          "order_vs_freedom",
		CardName:    "The Iron Hand",
		CardNumber:  3,
		Description: "The common folk look to their lords for justice. Shall law be written in stone, or flow like water to the need?",
		Era:         "normandy_10th",
		ChoiceA: world.Choice{
			Label:        "The Lawgiver",
			Description:  "Establish strict codes and harsh justice. Order brings prosperity; rebellion brings ruin.",
			TraitEffects: world.PartialTraits{Lawfulness: fl(0.2), Militarism: fl(0.1), Openness: fl(-0.1)},
			WorldEvents:  []string{"Courts of law are established", "Crime decreases"},
		},
		ChoiceB: world.Choice{
			Label:        "The Liberator",
			Description:  "Trust in the wisdom of local custom. Let communities govern themselves within broad bounds.",
			TraitEffects: world.PartialTraits{Openness: fl(0.15), Prosperity: fl(0.1), Lawfulness: fl(-0.15)},
			WorldEvents:  []string{"Local assemblies gain power", "Regional diversity flourishes"},
		},
	},
	{
		ID:          "build_vs_destroy",
		CardName:    "The Builder's Choice",
		CardNumber:  4,
		Description: "The old Roman roads crumble, their villas long fallen. Do you raise new monuments, or let the land reclaim what was?",
		Era:         "normandy_10th",
		ChoiceA: world.Choice{
			Label:        "The Architect",
			Description:  "Build great works. Castles, cathedrals, and bridges that will stand for a thousand years.",
			TraitEffects: world.PartialTraits{Prosperity: fl(0.15), Religiosity: fl(0.1), Militarism: fl(0.05)},
			WorldEvents:  []string{"Great construction projects begin", "Skilled craftsmen gather"},
		},
		ChoiceB: world.Choice{
			Label:        "The Shepherd",
			Description:  "Let the land heal. Focus on the people rather than monuments; tend to what exists.",
			TraitEffects: world.PartialTraits{Prosperity: fl(0.1), Openness: fl(0.1)},
			WorldEvents:  []string{"Rural communities strengthen", "Agricultural improvements spread"},
			Landmarks:    []world.Landmark{{Name: "Ruins of the Roman Villa", Type: world.LandmarkRuin, Description: "Mosaic floors under bramble."}},
		},
	},
	{
		ID:          "ally_vs_isolate",
		CardName:    "The Foreign Question",
		CardNumber:  5,
		Description: "Beyond your borders lie other realms - some rich, some dangerous, all watching. How do you face the wider world?",
		Era:         "normandy_10th",
		ChoiceA: world.Choice{
			Label:        "The Diplomat",
			Description:  "Forge alliances through marriage and treaty. The world is full of potential friends... and useful enemies.",
			TraitEffects: world.PartialTraits{Openness: fl(0.2), Prosperity: fl(0.1), Militarism: fl(-0.05)},
			WorldEvents:  []string{"Foreign emissaries arrive", "Trade agreements are signed"},
		},
		ChoiceB: world.Choice{
			Label:        "The Fortress",
			Description:  "Trust no outsider fully. Build strength at home; let others come to you from positions of weakness.",
			TraitEffects: world.PartialTraits{Militarism: fl(0.15), Lawfulness: fl(0.1), Openness: fl(-0.15)},
			WorldEvents:  []string{"Border fortifications increase", "Self-sufficiency is emphasized"},
		},
	},
}

var vikingDilemmas = []world.Dilemma{
	{
		ID:          "raid_vs_settle",
		CardName:    "The Longship's Prow",
		CardNumber:  1,
		Description: "The fleet is caulked and the spring winds are fair. The jarls ask whether the ships sail to plunder the monasteries of the west, or to carry families to new land.",
		Era:         "viking_9th",
		ChoiceA: world.Choice{
			Label:        "The Raider",
			Description:  "Silver and glory wait across the sea. Let the sagas remember the fury of the Northmen.",
			TraitEffects: world.PartialTraits{Militarism: fl(0.2), Prosperity: fl(0.1), Lawfulness: fl(-0.1)},
			WorldEvents:  []string{"Longships return heavy with plunder", "Coastal villages bar their gates"},
		},
		ChoiceB: world.Choice{
			Label:        "The Settler",
			Description:  "Carry seed and cattle, not axes. A farm held for generations outlasts any hoard.",
			TraitEffects: world.PartialTraits{Prosperity: fl(0.1), Openness: fl(0.1), Militarism: fl(-0.1)},
			WorldEvents:  []string{"New steadings dot the far shore", "Farmland is cleared"},
			Landmarks:    []world.Landmark{{Name: "Vestrheim", Type: world.LandmarkSettlement, Description: "Turf longhouses above a sheltered bay."}},
		},
	},
	{
		ID:          "old_gods_vs_white_christ",
		CardName:    "The Hanging Tree",
		CardNumber:  2,
		Description: "A missionary has come to the thing bearing gifts and a cross. The godi watch in silence beside the sacred grove.",
		Era:         "viking_9th",
		ChoiceA: world.Choice{
			Label:        "The Godi",
			Description:  "Keep faith with Odin and the old rites. The gods of the north demand their due.",
			TraitEffects: world.PartialTraits{Religiosity: fl(0.15), Openness: fl(-0.15), Militarism: fl(0.05)},
			WorldEvents:  []string{"Blood offerings are renewed at Uppsala", "Foreign priests are driven off"},
			Landmarks:    []world.Landmark{{Name: "The Sacred Grove", Type: world.LandmarkNatural, Description: "Ash trees hung with offerings."}},
		},
		ChoiceB: world.Choice{
			Label:        "The Convert",
			Description:  "Take the baptism and the trade privileges that come with it. The southern kings deal kindly with fellow Christians.",
			TraitEffects: world.PartialTraits{Openness: fl(0.15), Prosperity: fl(0.1), Religiosity: fl(-0.05)},
			WorldEvents:  []string{"A timber church is raised", "Frankish merchants arrive"},
		},
	},
	{
		ID:          "thing_vs_king",
		CardName:    "The Law-Speaker",
		CardNumber:  3,
		Description: "A feud between two families threatens to spill into war. The free men gather at the thing, but a would-be king offers to settle it by his word alone.",
		Era:         "viking_9th",
		ChoiceA: world.Choice{
			Label:        "The Assembly",
			Description:  "Let the law-speaker recite the law and the free men judge. No man stands above the thing.",
			TraitEffects: world.PartialTraits{Lawfulness: fl(0.15), Openness: fl(0.05), Militarism: fl(-0.1)},
			WorldEvents:  []string{"Wergild is paid and the feud ends", "The thing grows in standing"},
		},
		ChoiceB: world.Choice{
			Label:        "The Crown",
			Description:  "One ruler, one peace. Bend the knee and let strength keep order.",
			TraitEffects: world.PartialTraits{Militarism: fl(0.15), Lawfulness: fl(0.1), Openness: fl(-0.1)},
			WorldEvents:  []string{"Rival chieftains are brought to heel", "A royal hall is built"},
			Landmarks:    []world.Landmark{{Name: "Kings' Hall", Type: world.LandmarkFortress, Description: "A great hall ringed by a palisade."}},
		},
	},
}
