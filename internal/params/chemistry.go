package params

import (
	"fmt"
	"sort"
)

// VoltageLimits bounds the operating window for rate experiments.
type VoltageLimits struct {
	MinV float64
	MaxV float64
}

// Chemistry ties a front-end battery name to its published parameter source,
// its base Set, and (where defined) its voltage window. The table is read-only
// after init.
type Chemistry struct {
	Name            string
	ParameterSource string
	Limits          *VoltageLimits
	base            Set
}

var chemistries = map[string]Chemistry{
	"NMC": {
		Name:            "NMC",
		ParameterSource: "Mohtat2020",
		Limits:          &VoltageLimits{MinV: 3.0, MaxV: 4.2},
		base: Set{
			KeyNominalCapacity:    5.0,
			KeyElectrodeHeight:    0.1,
			KeyElectrodeWidth:     0.205,
			KeyArealCapacity:      243.9,
			KeyPositiveThickness:  7.56e-05,
			KeyAmbientTemperature: 298.15,
			KeyLowerVoltageCutoff: 2.8,
			KeyUpperVoltageCutoff: 4.2,
			KeyInternalResistance: 0.015,
			KeyTotalLithium:       0.8,
			KeySEIKineticRate:     1e-15,
		},
	},
	"NCA": {
		Name:            "NCA",
		ParameterSource: "NCA_Kim2011",
		Limits:          &VoltageLimits{MinV: 2.5, MaxV: 4.3},
		base: Set{
			KeyNominalCapacity:    0.43,
			KeyElectrodeHeight:    0.2,
			KeyElectrodeWidth:     0.14,
			KeyArealCapacity:      15.36,
			KeyPositiveThickness:  7.0e-05,
			KeyAmbientTemperature: 298.15,
			KeyLowerVoltageCutoff: 2.5,
			KeyUpperVoltageCutoff: 4.3,
			KeyInternalResistance: 0.09,
			KeyTotalLithium:       0.07,
			KeySEIKineticRate:     1e-14,
		},
	},
	"LFP": {
		Name:            "LFP",
		ParameterSource: "Prada2013",
		Limits:          &VoltageLimits{MinV: 2.5, MaxV: 3.65},
		base: Set{
			KeyNominalCapacity:    2.3,
			KeyElectrodeHeight:    0.0649,
			KeyElectrodeWidth:     1.78,
			KeyArealCapacity:      19.91,
			KeyPositiveThickness:  8.4e-05,
			KeyAmbientTemperature: 298.15,
			KeyLowerVoltageCutoff: 2.0,
			KeyUpperVoltageCutoff: 3.65,
			KeyInternalResistance: 0.012,
			KeyTotalLithium:       0.37,
			KeySEIKineticRate:     5e-18,
		},
	},
	"LG M50": {
		Name:            "LG M50",
		ParameterSource: "OKane2022",
		base: Set{
			KeyNominalCapacity:    5.0,
			KeyElectrodeHeight:    0.065,
			KeyElectrodeWidth:     1.58,
			KeyArealCapacity:      48.69,
			KeyPositiveThickness:  7.56e-05,
			KeyAmbientTemperature: 298.15,
			KeyLowerVoltageCutoff: 2.5,
			KeyUpperVoltageCutoff: 4.2,
			KeyInternalResistance: 0.018,
			KeyTotalLithium:       0.75,
			KeySEIKineticRate:     1e-15,
		},
	},
	"Silicon": {
		Name:            "Silicon",
		ParameterSource: "Chen2020_composite",
		base: Set{
			KeyNominalCapacity:         5.0,
			KeyElectrodeHeight:         0.065,
			KeyElectrodeWidth:          1.58,
			KeyArealCapacity:           48.69,
			KeyPositiveThickness:       7.56e-05,
			KeyAmbientTemperature:      298.15,
			KeyLowerVoltageCutoff:      2.5,
			KeyUpperVoltageCutoff:      4.2,
			KeyInternalResistance:      0.018,
			KeyTotalLithium:            0.78,
			KeySEIKineticRate:          1e-15,
			KeyPrimaryActiveFraction:   0.735,
			KeySecondaryActiveFraction: 0.015,
		},
	},
	"LFPBackup": {
		Name:            "LFPBackup",
		ParameterSource: "Ecker2015",
		base: Set{
			KeyNominalCapacity:    7.5,
			KeyElectrodeHeight:    0.101,
			KeyElectrodeWidth:     0.085,
			KeyArealCapacity:      873.62,
			KeyPositiveThickness:  5.4e-05,
			KeyAmbientTemperature: 296.15,
			KeyLowerVoltageCutoff: 2.7,
			KeyUpperVoltageCutoff: 4.15,
			KeyInternalResistance: 0.011,
			KeyTotalLithium:       1.1,
			KeySEIKineticRate:     1e-15,
		},
	},
}

func init() {
	if err := validateTable(); err != nil {
		panic(err)
	}
}

// validateTable checks every chemistry carries the fields the pipeline relies
// on, so lookups past init can't hit a half-defined record.
func validateTable() error {
	for name, c := range chemistries {
		for _, key := range []string{KeyNominalCapacity, KeyElectrodeHeight} {
			if _, ok := c.base[key]; !ok {
				return fmt.Errorf("params: chemistry %q missing %q", name, key)
			}
		}
		if c.Name != name {
			return fmt.Errorf("params: chemistry %q keyed under %q", c.Name, name)
		}
	}
	return nil
}

// Base returns a fresh copy of the named chemistry's parameter set.
func Base(name string) (Set, error) {
	c, ok := chemistries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChemistry, name)
	}
	return c.base.Clone(), nil
}

// Limits returns the voltage window for rate experiments, or ErrNoVoltageLimits
// for chemistries without one.
func Limits(name string) (VoltageLimits, error) {
	c, ok := chemistries[name]
	if !ok {
		return VoltageLimits{}, fmt.Errorf("%w: %q", ErrUnknownChemistry, name)
	}
	if c.Limits == nil {
		return VoltageLimits{}, fmt.Errorf("%w: %q", ErrNoVoltageLimits, name)
	}
	return *c.Limits, nil
}

// Lookup returns the chemistry record itself.
func Lookup(name string) (Chemistry, error) {
	c, ok := chemistries[name]
	if !ok {
		return Chemistry{}, fmt.Errorf("%w: %q", ErrUnknownChemistry, name)
	}
	return c, nil
}

// List returns supported chemistry names in sorted order.
func List() []string {
	names := make([]string, 0, len(chemistries))
	for name := range chemistries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
