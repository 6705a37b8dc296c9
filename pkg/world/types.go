package world

import "slices"

// Aesthetics is presentation metadata for an era. The core passes it
// through untouched.
type Aesthetics struct {
	PrimaryColor string `json:"primaryColor,omitempty"`
	AccentColor  string `json:"accentColor,omitempty"`
	Atmosphere   string `json:"atmosphere,omitempty"`
}

// Era is an immutable historical setting the player can start from.
type Era struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Period      string        `json:"period"`
	Description string        `json:"description"`
	BaseTraits  PartialTraits `json:"baseTraits"`
	Aesthetics  Aesthetics    `json:"aesthetics"`
}

// Clone returns a deep copy of e.
func (e Era) Clone() Era {
	e.BaseTraits = e.BaseTraits.Clone()
	return e
}

// Traits returns the starting vector for the era: the defaults with the
// era's baseline axes applied.
func (e Era) Traits() Traits {
	return DefaultTraits().Merge(e.BaseTraits)
}

// Side selects one of the two choices of a dilemma.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Choice is one side of a dilemma.
type Choice struct {
	Label        string        `json:"label"`
	Description  string        `json:"description"`
	TraitEffects PartialTraits `json:"traitEffects"`
	WorldEvents  []string      `json:"worldEvents"`
	Landmarks    []Landmark    `json:"landmarks,omitempty"`
	ImagePrompt  string        `json:"imagePrompt,omitempty"`
}

// Clone returns a deep copy of c.
func (c Choice) Clone() Choice {
	c.TraitEffects = c.TraitEffects.Clone()
	c.WorldEvents = slices.Clone(c.WorldEvents)
	c.Landmarks = slices.Clone(c.Landmarks)
	return c
}

// Dilemma is a card presenting two choices.
type Dilemma struct {
	ID          string `json:"id"`
	CardName    string `json:"cardName"`
	CardNumber  int    `json:"cardNumber"`
	Description string `json:"description"`
	ChoiceA     Choice `json:"choiceA"`
	ChoiceB     Choice `json:"choiceB"`
	Era         string `json:"era"`
}

// Choice returns choice A for SideA and choice B for anything else.
func (d Dilemma) Choice(side Side) Choice {
	if side == SideA {
		return d.ChoiceA
	}
	return d.ChoiceB
}

// Clone returns a deep copy of d.
func (d Dilemma) Clone() Dilemma {
	d.ChoiceA = d.ChoiceA.Clone()
	d.ChoiceB = d.ChoiceB.Clone()
	return d
}

// Disposition is a faction's attitude toward the player's realm.
type Disposition string

const (
	DispositionFriendly Disposition = "friendly"
	DispositionNeutral  Disposition = "neutral"
	DispositionHostile  Disposition = "hostile"
)

// Faction is a power group in the world. Strength is expected in [0,1]
// but is not enforced.
type Faction struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Disposition Disposition `json:"disposition"`
	Strength    float64     `json:"strength"`
	Traits      []string    `json:"traits"`
}

// Clone returns a deep copy of f.
func (f Faction) Clone() Faction {
	f.Traits = slices.Clone(f.Traits)
	return f
}

// LandmarkType categorises a landmark.
type LandmarkType string

const (
	LandmarkSettlement LandmarkType = "settlement"
	LandmarkFortress   LandmarkType = "fortress"
	LandmarkMonastery  LandmarkType = "monastery"
	LandmarkRuin       LandmarkType = "ruin"
	LandmarkNatural    LandmarkType = "natural"
)

// Landmark is a notable place in the world.
type Landmark struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Type        LandmarkType `json:"type"`
	Description string       `json:"description"`
}
