package world

const (
	thresholdHigh = 0.7
	thresholdLow  = 0.3
)

// Atmosphere is the qualitative mood derived from the trait vector.
type Atmosphere string

const (
	AtmosphereWarTorn    Atmosphere = "war_torn"
	AtmosphereProsperous Atmosphere = "prosperous"
	AtmosphereMysterious Atmosphere = "mysterious"
	AtmosphereSacred     Atmosphere = "sacred"
	AtmosphereDesolate   Atmosphere = "desolate"
	AtmosphereVibrant    Atmosphere = "vibrant"
)

// DefaultAtmosphere is the label of a freshly created or reset world.
const DefaultAtmosphere = AtmosphereMysterious

// Valid reports whether a is one of the known labels.
func (a Atmosphere) Valid() bool {
	switch a {
	case AtmosphereWarTorn, AtmosphereProsperous, AtmosphereMysterious,
		AtmosphereSacred, AtmosphereDesolate, AtmosphereVibrant:
		return true
	}
	return false
}

// Classify derives the atmosphere from t. Rules are checked in a fixed
// order and the first match wins; when none match the previous label is
// kept, so the atmosphere only moves when a threshold is crossed.
// Both thresholds are strict.
func Classify(t Traits, previous Atmosphere) Atmosphere {
	switch {
	case t.Militarism > thresholdHigh:
		return AtmosphereWarTorn
	case t.Prosperity > thresholdHigh:
		return AtmosphereProsperous
	case t.Religiosity > thresholdHigh:
		return AtmosphereSacred
	case t.Prosperity < thresholdLow:
		return AtmosphereDesolate
	case t.Openness > thresholdHigh:
		return AtmosphereVibrant
	}
	return previous
}
