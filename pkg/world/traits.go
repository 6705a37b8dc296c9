package world

import "math"

const (
	TraitMin     = 0.0
	TraitMax     = 1.0
	TraitDefault = 0.5
)

// Axis names one dimension of the trait vector.
type Axis string

const (
	AxisMilitarism  Axis = "militarism"  // 0 = peaceful, 1 = warlike
	AxisProsperity  Axis = "prosperity"  // 0 = impoverished, 1 = wealthy
	AxisReligiosity Axis = "religiosity" // 0 = secular, 1 = devout
	AxisLawfulness  Axis = "lawfulness"  // 0 = chaotic, 1 = orderly
	AxisOpenness    Axis = "openness"    // 0 = isolationist, 1 = cosmopolitan
)

// Axes lists every trait axis in canonical order.
var Axes = []Axis{AxisMilitarism, AxisProsperity, AxisReligiosity, AxisLawfulness, AxisOpenness}

// Valid reports whether a is a known axis.
func (a Axis) Valid() bool {
	switch a {
	case AxisMilitarism, AxisProsperity, AxisReligiosity, AxisLawfulness, AxisOpenness:
		return true
	}
	return false
}

// Traits is the full trait vector. Every field stays within [TraitMin, TraitMax].
type Traits struct {
	Militarism  float64 `json:"militarism"`
	Prosperity  float64 `json:"prosperity"`
	Religiosity float64 `json:"religiosity"`
	Lawfulness  float64 `json:"lawfulness"`
	Openness    float64 `json:"openness"`
}

// PartialTraits carries values for some axes only. It is used for era
// baselines, choice deltas and direct trait updates. Unknown keys are
// dropped when decoding JSON.
type PartialTraits struct {
	Militarism  *float64 `json:"militarism,omitempty"`
	Prosperity  *float64 `json:"prosperity,omitempty"`
	Religiosity *float64 `json:"religiosity,omitempty"`
	Lawfulness  *float64 `json:"lawfulness,omitempty"`
	Openness    *float64 `json:"openness,omitempty"`
}

// Clamp limits v to [TraitMin, TraitMax].
func Clamp(v float64) float64 {
	return math.Max(TraitMin, math.Min(TraitMax, v))
}

// DefaultTraits returns a vector with every axis at TraitDefault.
func DefaultTraits() Traits {
	return Traits{
		Militarism:  TraitDefault,
		Prosperity:  TraitDefault,
		Religiosity: TraitDefault,
		Lawfulness:  TraitDefault,
		Openness:    TraitDefault,
	}
}

func overwrite(current, value float64) float64 {
	if math.IsNaN(value) {
		return current
	}
	return Clamp(value)
}

func shift(current, delta float64) float64 {
	if math.IsNaN(delta) {
		return current
	}
	return Clamp(current + delta)
}

// Merge returns t with every axis present in p overwritten by its clamped value.
func (t Traits) Merge(p PartialTraits) Traits {
	if p.Militarism != nil {
		t.Militarism = overwrite(t.Militarism, *p.Militarism)
	}
	if p.Prosperity != nil {
		t.Prosperity = overwrite(t.Prosperity, *p.Prosperity)
	}
	if p.Religiosity != nil {
		t.Religiosity = overwrite(t.Religiosity, *p.Religiosity)
	}
	if p.Lawfulness != nil {
		t.Lawfulness = overwrite(t.Lawfulness, *p.Lawfulness)
	}
	if p.Openness != nil {
		t.Openness = overwrite(t.Openness, *p.Openness)
	}
	return t
}

// Apply returns t with every delta in d added and the result clamped.
func (t Traits) Apply(d PartialTraits) Traits {
	if d.Militarism != nil {
		t.Militarism = shift(t.Militarism, *d.Militarism)
	}
	if d.Prosperity != nil {
		t.Prosperity = shift(t.Prosperity, *d.Prosperity)
	}
	if d.Religiosity != nil {
		t.Religiosity = shift(t.Religiosity, *d.Religiosity)
	}
	if d.Lawfulness != nil {
		t.Lawfulness = shift(t.Lawfulness, *d.Lawfulness)
	}
	if d.Openness != nil {
		t.Openness = shift(t.Openness, *d.Openness)
	}
	return t
}

// Clamped returns t with every axis forced into range.
func (t Traits) Clamped() Traits {
	return Traits{
		Militarism:  overwrite(TraitDefault, t.Militarism),
		Prosperity:  overwrite(TraitDefault, t.Prosperity),
		Religiosity: overwrite(TraitDefault, t.Religiosity),
		Lawfulness:  overwrite(TraitDefault, t.Lawfulness),
		Openness:    overwrite(TraitDefault, t.Openness),
	}
}

// Get returns the value of the named axis.
func (t Traits) Get(a Axis) (float64, bool) {
	switch a {
	case AxisMilitarism:
		return t.Militarism, true
	case AxisProsperity:
		return t.Prosperity, true
	case AxisReligiosity:
		return t.Religiosity, true
	case AxisLawfulness:
		return t.Lawfulness, true
	case AxisOpenness:
		return t.Openness, true
	}
	return 0, false
}

// Set returns t with the named axis overwritten by the clamped v. Unknown
// axes leave t unchanged.
func (t Traits) Set(a Axis, v float64) Traits {
	return t.Merge(PartialTraits{}.With(a, v))
}

// Get returns the value set for the named axis, if any.
func (p PartialTraits) Get(a Axis) (float64, bool) {
	var v *float64
	switch a {
	case AxisMilitarism:
		v = p.Militarism
	case AxisProsperity:
		v = p.Prosperity
	case AxisReligiosity:
		v = p.Religiosity
	case AxisLawfulness:
		v = p.Lawfulness
	case AxisOpenness:
		v = p.Openness
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// With returns p with the named axis set to v. Unknown axes leave p unchanged.
func (p PartialTraits) With(a Axis, v float64) PartialTraits {
	switch a {
	case AxisMilitarism:
		p.Militarism = &v
	case AxisProsperity:
		p.Prosperity = &v
	case AxisReligiosity:
		p.Religiosity = &v
	case AxisLawfulness:
		p.Lawfulness = &v
	case AxisOpenness:
		p.Openness = &v
	}
	return p
}

// IsEmpty reports whether no axis is set.
func (p PartialTraits) IsEmpty() bool {
	return p.Militarism == nil && p.Prosperity == nil && p.Religiosity == nil &&
		p.Lawfulness == nil && p.Openness == nil
}

// Clone copies p so the result shares no pointers with it.
func (p PartialTraits) Clone() PartialTraits {
	return PartialTraits{
		Militarism:  cloneFloat(p.Militarism),
		Prosperity:  cloneFloat(p.Prosperity),
		Religiosity: cloneFloat(p.Religiosity),
		Lawfulness:  cloneFloat(p.Lawfulness),
		Openness:    cloneFloat(p.Openness),
	}
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
