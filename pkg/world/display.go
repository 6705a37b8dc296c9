package world

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type poles struct{ low, high string }

var axisPoles = map[Axis]poles{
	AxisMilitarism:  {"Peaceful", "Warlike"},
	AxisProsperity:  {"Impoverished", "Prosperous"},
	AxisReligiosity: {"Secular", "Devout"},
	AxisLawfulness:  {"Chaotic", "Orderly"},
	AxisOpenness:    {"Isolated", "Cosmopolitan"},
}

var atmosphereText = map[Atmosphere][2]string{
	AtmosphereWarTorn:    {"A Land of Conflict", "The drums of war echo across the land. Smoke rises from distant villages, and the roads are filled with soldiers and refugees."},
	AtmosphereProsperous: {"A Golden Age", "The markets bustle with trade from distant lands. The harvests are plentiful, and the people walk without fear."},
	AtmosphereMysterious: {"A Realm of Secrets", "Mists cling to ancient forests, and whispered tales speak of powers beyond mortal ken. The land holds many secrets."},
	AtmosphereSacred:     {"A Holy Realm", "The faithful fill the temples, and the divine presence is felt in every stone. This is a land touched by the gods."},
	AtmosphereDesolate:   {"A Blighted Land", "The fields lie fallow, and the villages stand half-empty. A great shadow has fallen upon this realm."},
	AtmosphereVibrant:    {"A Crossroads of Cultures", "Travelers from distant lands fill the cities, bringing new ideas, arts, and customs. The world is vast and full of wonder."},
}

// Casers carry state, so each call gets its own.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// Name returns a human readable axis name, e.g. "Militarism".
func (a Axis) Name() string {
	return title(string(a))
}

// Label returns the pole word that best describes value on this axis.
func (a Axis) Label(value float64) string {
	p, ok := axisPoles[a]
	if !ok {
		return ""
	}
	if value >= TraitDefault {
		return p.high
	}
	return p.low
}

// Name returns a human readable label, e.g. "War Torn".
func (a Atmosphere) Name() string {
	return title(strings.ReplaceAll(string(a), "_", " "))
}

// Title returns the flavour heading shown for the atmosphere.
func (a Atmosphere) Title() string {
	if t, ok := atmosphereText[a]; ok {
		return t[0]
	}
	return a.Name()
}

// Description returns the flavour text shown for the atmosphere.
func (a Atmosphere) Description() string {
	return atmosphereText[a][1]
}
