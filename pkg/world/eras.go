package world

// Float returns a pointer to v, for building PartialTraits literals.
func Float(v float64) *float64 {
	return &v
}

var eras = []Era{
	{
		ID:          "normandy_10th",
		Name:        "10th Century Normandy",
		Period:      "911 - 1066 CE",
		Description: "The age of Vikings turned Norman lords. A land of conquest, faith, and the forging of a new realm from the ashes of Carolingian Francia.",
		BaseTraits:  PartialTraits{Militarism: Float(0.7), Religiosity: Float(0.6), Lawfulness: Float(0.4)},
		Aesthetics:  Aesthetics{PrimaryColor: "#8B4513", AccentColor: "#DAA520", Atmosphere: "conquest"},
	},
	{
		ID:          "byzantine_6th",
		Name:        "6th Century Byzantium",
		Period:      "527 - 565 CE",
		Description: "The reign of Justinian. An empire of ancient splendor seeking to reclaim the glory of Rome through law, faith, and the sword.",
		BaseTraits:  PartialTraits{Prosperity: Float(0.7), Religiosity: Float(0.8), Lawfulness: Float(0.7)},
		Aesthetics:  Aesthetics{PrimaryColor: "#4B0082", AccentColor: "#FFD700", Atmosphere: "imperial"},
	},
	{
		ID:          "mongol_13th",
		Name:        "13th Century Mongolia",
		Period:      "1206 - 1294 CE",
		Description: "The storm from the steppes. An age when horse lords carved the largest empire the world had ever seen.",
		BaseTraits:  PartialTraits{Militarism: Float(0.9), Openness: Float(0.6), Lawfulness: Float(0.5)},
		Aesthetics:  Aesthetics{PrimaryColor: "#2F4F4F", AccentColor: "#CD853F", Atmosphere: "conquest"},
	},
	{
		ID:          "japan_16th",
		Name:        "16th Century Japan",
		Period:      "1467 - 1615 CE",
		Description: "The age of warring states. Samurai lords vie for supremacy as the old order crumbles and a new Japan rises from the chaos.",
		BaseTraits:  PartialTraits{Militarism: Float(0.8), Lawfulness: Float(0.3), Religiosity: Float(0.5)},
		Aesthetics:  Aesthetics{PrimaryColor: "#8B0000", AccentColor: "#C0C0C0", Atmosphere: "war"},
	},
	{
		ID:          "egypt_14th_bce",
		Name:        "14th Century BCE Egypt",
		Period:      "1353 - 1336 BCE",
		Description: "The reign of Akhenaten. A pharaoh who dared challenge the gods themselves, reshaping an ancient civilization.",
		BaseTraits:  PartialTraits{Religiosity: Float(0.9), Prosperity: Float(0.6), Lawfulness: Float(0.7)},
		Aesthetics:  Aesthetics{PrimaryColor: "#DAA520", AccentColor: "#00CED1", Atmosphere: "sacred"},
	},
	{
		ID:          "viking_9th",
		Name:        "9th Century Scandinavia",
		Period:      "793 - 1066 CE",
		Description: "The age of the Northmen. Raiders, traders, and explorers who carved their sagas across the known world.",
		BaseTraits:  PartialTraits{Militarism: Float(0.8), Openness: Float(0.7), Religiosity: Float(0.5)},
		Aesthetics:  Aesthetics{PrimaryColor: "#2E4057", AccentColor: "#8B4513", Atmosphere: "adventure"},
	},
}

// Eras returns the built-in era catalog in display order.
func Eras() []Era {
	out := make([]Era, len(eras))
	for i, e := range eras {
		out[i] = e.Clone()
	}
	return out
}

// EraByID looks up a catalog era.
func EraByID(id string) (Era, bool) {
	for _, e := range eras {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return Era{}, false
}
