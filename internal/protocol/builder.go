package protocol

import (
	"errors"
	"time"

	"github.com/san-kum/battsim/internal/params"
)

// ErrEmptyRateList indicates a rate sweep was requested with no rates.
var ErrEmptyRateList = errors.New("protocol: empty C-rate list")

// DefaultCycles is the aging protocol's fixed repetition count.
const DefaultCycles = 3

// Aging protocol constants. These are fixed defaults of the cycling template,
// not user knobs.
const (
	agingRate          = 1.0
	agingDischargeCutV = 3.0
	agingChargeTopV    = 4.1
	agingHoldCutoffA   = 0.05
	agingDischargeMax  = 10 * time.Hour
)

// sweepOffset keeps a requested rate strictly positive so a zero rate cannot
// produce a degenerate zero-duration step.
const sweepOffset = 0.01

const sweepMaxDuration = 100 * time.Hour

// Mode selects the sweep direction.
type Mode int

const (
	ModeDischarge Mode = iota
	ModeCharge
)

func (m Mode) String() string {
	if m == ModeCharge {
		return "Charge"
	}
	return "Discharge"
}

// Cycling builds the multi-cycle aging experiment: discharge to 3.0 V, charge
// to 4.1 V, then hold at 4.1 V until the current falls to 50 mA. Cycle count
// below 1 falls back to DefaultCycles.
func Cycling(cycles int) Experiment {
	if cycles < 1 {
		cycles = DefaultCycles
	}
	dischargeCut := agingDischargeCutV
	chargeTop := agingChargeTopV
	holdCut := agingHoldCutoffA
	return Experiment{
		Template: []Step{
			{
				Kind:          Discharge,
				CRate:         agingRate,
				MaxDuration:   agingDischargeMax,
				CutoffVoltage: &dischargeCut,
				Period:        time.Hour,
			},
			{
				Kind:          Charge,
				CRate:         agingRate,
				CutoffVoltage: &chargeTop,
				Period:        30 * time.Minute,
			},
			{
				Kind:           Hold,
				HoldVoltage:    agingChargeTopV,
				CutoffCurrentA: &holdCut,
				Period:         30 * time.Minute,
			},
		},
		Cycles: cycles,
	}
}

// RateSweep builds one single-step experiment per requested rate, capped at
// the chemistry's voltage window. Charging starts from an empty cell,
// discharging from a full one.
func RateSweep(limits params.VoltageLimits, rates []float64, mode Mode) ([]Experiment, error) {
	if len(rates) == 0 {
		return nil, ErrEmptyRateList
	}

	experiments := make([]Experiment, 0, len(rates))
	for _, rate := range rates {
		kind := Discharge
		cutoff := limits.MinV
		initialSOC := 1.0
		if mode == ModeCharge {
			kind = Charge
			cutoff = limits.MaxV
			initialSOC = 0.0
		}
		cut := cutoff
		soc := initialSOC
		experiments = append(experiments, Experiment{
			Template: []Step{
				{
					Kind:          kind,
					CRate:         rate + sweepOffset,
					MaxDuration:   sweepMaxDuration,
					CutoffVoltage: &cut,
					Period:        time.Minute,
				},
			},
			Cycles:     1,
			InitialSOC: &soc,
		})
	}
	return experiments, nil
}
