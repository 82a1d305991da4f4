package params

import "fmt"

// Parameter keys touched by the override paths. Keys are text-exact matches
// against the vocabulary the solver expects; anything else passes through
// untouched and unvalidated.
const (
	KeyAmbientTemperature      = "Ambient temperature [K]"
	KeyNominalCapacity         = "Nominal cell capacity [A.h]"
	KeyElectrodeHeight         = "Electrode height [m]"
	KeyElectrodeWidth          = "Electrode width [m]"
	KeyPositiveThickness       = "Positive electrode thickness [m]"
	KeyArealCapacity           = "Cell areal capacity [A.h.m-2]"
	KeyLowerVoltageCutoff      = "Lower voltage cut-off [V]"
	KeyUpperVoltageCutoff      = "Upper voltage cut-off [V]"
	KeyInternalResistance      = "Internal resistance [Ohm]"
	KeyPrimaryActiveFraction   = "Primary: Negative electrode active material volume fraction"
	KeySecondaryActiveFraction = "Secondary: Negative electrode active material volume fraction"
	KeyTotalLithium            = "Total lithium capacity [mol]"
	KeySEIKineticRate          = "SEI kinetic rate constant [m.s-1]"
)

// Set maps parameter names to numeric values. A Set is owned by a single
// simulation run; it is copied out of the chemistry table and discarded after
// the solver consumes it.
type Set map[string]float64

func (s Set) Clone() Set {
	c := make(Set, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Update overwrites entries in place.
func (s Set) Update(values map[string]float64) {
	for k, v := range values {
		s[k] = v
	}
}

// Float returns the named value, or ErrMissingBaseValue when absent.
func (s Set) Float(key string) (float64, error) {
	v, ok := s[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingBaseValue, key)
	}
	return v, nil
}

// Overrides lists requested parameter changes. Nil fields are not applied.
// The inbound "zero means not provided" rule is decided once, at the request
// boundary (see FromRequest); everything past that point works with explicit
// presence.
type Overrides struct {
	AmbientTemperatureK         *float64
	CapacityAh                  *float64
	PositiveElectrodeThicknessM *float64
	SiliconFraction             *float64
}

// FromRequest converts raw request numbers into Overrides, treating zero as
// absent. This conflates a legitimate zero with "not provided"; the external
// contract requires it, so it lives here and nowhere else.
func FromRequest(temperature, capacity, thickness, silicon float64) Overrides {
	return Overrides{
		AmbientTemperatureK:         optional(temperature),
		CapacityAh:                  optional(capacity),
		PositiveElectrodeThicknessM: optional(thickness),
		SiliconFraction:             optional(silicon),
	}
}

func optional(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

// siliconSplit is the fixed scaling applied to a requested silicon percentage
// before it is divided between the two active-material phases.
const siliconSplit = 0.5

// Apply mutates set according to the present override fields.
//
// A capacity override is expressed as an electrode height change against the
// base set's nominal capacity, so the cell's rated capacity scales without
// touching electrode loading. A silicon override is halved and split into
// complementary primary/secondary volume fractions that sum to exactly 1.
func Apply(set Set, o Overrides) error {
	if o.AmbientTemperatureK != nil {
		set[KeyAmbientTemperature] = *o.AmbientTemperatureK
	}
	if o.CapacityAh != nil {
		baseCapacity, err := set.Float(KeyNominalCapacity)
		if err != nil {
			return err
		}
		baseHeight, err := set.Float(KeyElectrodeHeight)
		if err != nil {
			return err
		}
		set[KeyElectrodeHeight] = baseHeight * (*o.CapacityAh / baseCapacity)
	}
	if o.PositiveElectrodeThicknessM != nil {
		set[KeyPositiveThickness] = *o.PositiveElectrodeThicknessM
	}
	if o.SiliconFraction != nil {
		p := *o.SiliconFraction * siliconSplit
		set[KeyPrimaryActiveFraction] = 1 - p
		set[KeySecondaryActiveFraction] = p
	}
	return nil
}
