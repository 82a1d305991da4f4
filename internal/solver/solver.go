package solver

import (
	"context"

	"github.com/san-kum/battsim/internal/params"
	"github.com/san-kum/battsim/internal/protocol"
)

// Model selects the electrochemical model variant.
type Model int

const (
	// ModelDFNComposite is the full electrode model with a two-phase negative
	// electrode and SEI growth; used for aging protocols.
	ModelDFNComposite Model = iota
	// ModelSPM is the single-particle model; used for rate sweeps.
	ModelSPM
)

func (m Model) String() string {
	if m == ModelSPM {
		return "SPM"
	}
	return "DFN (composite)"
}

// Config is the solver tuning passed alongside an experiment.
type Config struct {
	Mode     string  // "safe" or "fast"
	DtMax    float64 // upper bound on the integration timestep [s]
	MaxSteps int     // step budget per protocol instruction
}

// SafeConfig mirrors the tuning used for aging runs.
func SafeConfig() Config {
	return Config{Mode: "safe", DtMax: 3600, MaxSteps: 1000}
}

// FastConfig mirrors the tuning used for rate sweeps.
func FastConfig() Config {
	return Config{Mode: "fast", DtMax: 600, MaxSteps: 100000}
}

// CycleResult is the solver output for one repetition of the cycle template:
// sample times plus one value sequence per recorded variable, index-aligned
// with Time.
type CycleResult struct {
	Time   []float64
	Values map[string][]float64
}

// Solution is the ordered per-cycle output of a solve. It may hold fewer
// cycles than requested when a termination condition stops the experiment
// early.
type Solution struct {
	Cycles []CycleResult
}

// Observer receives every recorded sample as it is produced. The CLI installs
// summary metrics and the live view here; the request pipeline installs none.
type Observer interface {
	OnSample(cycle int, t float64, values map[string]float64)
}

// Solver is the external-collaborator boundary: numerical behavior behind it
// is not this package's caller's concern.
type Solver interface {
	Solve(ctx context.Context, model Model, set params.Set, exp protocol.Experiment, cfg Config) (*Solution, error)
}

// Recorded variable names. These form the vocabulary consumers select from.
const (
	VarVoltage            = "Voltage [V]"
	VarCurrent            = "Current [A]"
	VarThroughputCapacity = "Throughput capacity [A.h]"
	VarDischargeCapacity  = "Discharge capacity [A.h]"
	VarLithiumNegative    = "Total lithium in negative electrode [mol]"
	VarLithiumPositive    = "Total lithium in positive electrode [mol]"
	VarLithiumTotal       = "Total lithium [mol]"
)
