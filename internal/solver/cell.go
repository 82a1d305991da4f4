package solver

import (
	"fmt"
	"math"

	"github.com/san-kum/battsim/internal/params"
)

// cell holds the equivalent-circuit view of a parameter set. It is built once
// per solve and never shared.
type cell struct {
	capacityAh float64
	resistance float64
	vmin, vmax float64
	lithiumMol float64
	seiRate    float64
	trackAging bool
}

// seiLossPerAh converts the SEI kinetic rate constant into the fraction of
// cyclable lithium lost per amp-hour of charge throughput.
const seiLossPerAh = 1e12

// cyclableShare is the fraction of total lithium that shuttles between
// electrodes; the rest sits in the electrode lattices.
const cyclableShare = 0.9

func newCell(set params.Set, model Model) (*cell, error) {
	c := &cell{trackAging: model == ModelDFNComposite}

	var areal, height, width float64
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{params.KeyArealCapacity, &areal},
		{params.KeyElectrodeHeight, &height},
		{params.KeyElectrodeWidth, &width},
		{params.KeyInternalResistance, &c.resistance},
		{params.KeyLowerVoltageCutoff, &c.vmin},
		{params.KeyUpperVoltageCutoff, &c.vmax},
	} {
		v, err := set.Float(f.key)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMissingParameter, f.key)
		}
		*f.dst = v
	}

	// Rated capacity follows electrode area, which is how a capacity override
	// (expressed upstream as an electrode height change) reaches the solver.
	c.capacityAh = areal * height * width

	// Temperature shifts internal resistance (colder cells are stiffer).
	if temp, err := set.Float(params.KeyAmbientTemperature); err == nil && temp > 0 {
		c.resistance *= math.Exp(2000 * (1/temp - 1/298.15))
	}

	if c.trackAging {
		c.lithiumMol, _ = set.Float(params.KeyTotalLithium)
		c.seiRate, _ = set.Float(params.KeySEIKineticRate)
	}

	// A larger silicon phase raises usable capacity slightly, and resistance
	// with it, enough for the override to show in the output series.
	if secondary, ok := set[params.KeySecondaryActiveFraction]; ok && secondary > 0 {
		c.capacityAh *= 1 + 0.5*secondary
		c.resistance *= 1 + secondary
	}

	if c.capacityAh <= 0 {
		return nil, fmt.Errorf("%w: nonpositive capacity", ErrInfeasible)
	}
	return c, nil
}

// ocvBlend is the raw S-curve shape of the charge/voltage relation. The tanh
// term does not hit 0 and 1 at the endpoints, so ocv rescales it.
func ocvBlend(soc float64) float64 {
	return 0.2*soc + 0.8*0.5*(1+math.Tanh(4*(soc-0.5)))
}

var (
	ocvBlendLo   = ocvBlend(0)
	ocvBlendSpan = ocvBlend(1) - ocvBlend(0)
)

// ocv is the open-circuit voltage at a state of charge, a smooth monotone
// curve spanning the cell's voltage window exactly: ocv(0) is vmin and ocv(1)
// is vmax, so cutoffs at the window edges stay reachable at any rate.
func (c *cell) ocv(soc float64) float64 {
	soc = clamp(soc, 0, 1)
	blend := (ocvBlend(soc) - ocvBlendLo) / ocvBlendSpan
	return c.vmin + (c.vmax-c.vmin)*blend
}

// terminal returns the cell voltage under load; current is positive on
// discharge.
func (c *cell) terminal(soc, currentA float64) float64 {
	return c.ocv(soc) - currentA*c.resistance
}

// holdCurrent returns the current drawn when the terminal voltage is pinned.
func (c *cell) holdCurrent(soc, voltage float64) float64 {
	return (c.ocv(soc) - voltage) / c.resistance
}

// socRate is d(soc)/dt for a given current [A]; 1C empties the cell in one
// hour by construction.
func (c *cell) socRate(currentA float64) float64 {
	return -currentA / (3600 * c.capacityAh)
}

// lithiumLost converts accumulated charge throughput into cyclable lithium
// consumed by SEI growth.
func (c *cell) lithiumLost(throughputAh float64) float64 {
	if !c.trackAging {
		return 0
	}
	lost := c.seiRate * seiLossPerAh * throughputAh * c.lithiumMol
	return math.Min(lost, c.lithiumMol*cyclableShare)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
