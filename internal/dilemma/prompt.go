package dilemma

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/worldforge/pkg/world"
)

var eraContexts = map[string]string{
	"normandy_10th":  "10th Century Normandy - The age of Vikings turned Norman lords. A land of conquest, faith, and feudal power struggles.",
	"byzantine_6th":  "6th Century Byzantium - The reign of Justinian. An empire of ancient splendor seeking to reclaim Roman glory.",
	"mongol_13th":    "13th Century Mongolia - The storm from the steppes. Horse lords carving the largest empire in history.",
	"japan_16th":     "16th Century Japan - The Sengoku period. Samurai lords vie for supremacy as the old order crumbles.",
	"egypt_14th_bce": "14th Century BCE Egypt - The reign of Akhenaten. A pharaoh who dared challenge the gods themselves.",
	"viking_9th":     "9th Century Scandinavia - The age of the Northmen. Raiders, traders, and explorers.",
}

// EraContext describes the era for the model. Unknown ids are passed
// through as-is.
func EraContext(eraID string) string {
	if c, ok := eraContexts[eraID]; ok {
		return c
	}
	return eraID
}

const promptTemplate = `You are a world-builder creating ethical dilemmas for an open world game set in %[1]s.

Current World Traits (0.0 = low, 1.0 = high):
- Militarism: %.2[2]f (how warlike vs peaceful)
- Prosperity: %.2[3]f (economic wealth)
- Religiosity: %.2[4]f (influence of faith)
- Lawfulness: %.2[5]f (order vs chaos)
- Openness: %.2[6]f (cosmopolitan vs isolationist)

This is card #%[7]d in the player's journey.

Generate a tarot card-style ethical dilemma that:
1. Fits the historical era authentically
2. Presents TWO genuinely difficult choices with no obvious "right" answer
3. Has meaningful, lasting consequences for the world
4. Uses evocative, atmospheric language
5. Each choice should affect 2-3 traits (values between -0.2 and +0.2)
6. Optionally adds landmarks a choice would found (type: settlement, fortress, monastery, ruin or natural)

Respond with ONLY valid JSON in this exact format (no markdown, no explanation):
{
  "id": "unique_snake_case_id",
  "cardName": "The [Evocative Name]",
  "cardNumber": %[7]d,
  "description": "2-3 sentence atmospheric description of the situation requiring a choice",
  "era": "%[8]s",
  "choiceA": {
    "label": "The [Title]",
    "description": "2-3 sentences describing this philosophical path and its implications",
    "traitEffects": {"traitName": 0.15, "otherTrait": -0.1},
    "worldEvents": ["Specific visible change in the world", "Another consequence"],
    "landmarks": [{"name": "Name", "type": "settlement", "description": "One sentence"}]
  },
  "choiceB": {
    "label": "The [Title]",
    "description": "2-3 sentences describing this philosophical path and its implications",
    "traitEffects": {"traitName": 0.15, "otherTrait": -0.1},
    "worldEvents": ["Specific visible change in the world", "Another consequence"]
  }
}

Valid trait names: %[9]s.`

// BuildPrompt renders the card request for the model.
func BuildPrompt(eraID string, t world.Traits, cardNumber int) string {
	axes := make([]string, len(world.Axes))
	for i, a := range world.Axes {
		axes[i] = string(a)
	}
	return fmt.Sprintf(promptTemplate,
		EraContext(eraID),
		t.Militarism, t.Prosperity, t.Religiosity, t.Lawfulness, t.Openness,
		cardNumber,
		eraID,
		strings.Join(axes, ", "),
	)
}
