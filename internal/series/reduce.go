package series

import (
	"fmt"

	"github.com/san-kum/battsim/internal/solver"
)

// CycleAxisName labels the synthetic cycle-index axis.
const CycleAxisName = "Cycle"

// Variable pairs a solver variable with its display label.
type Variable struct {
	Name  string
	Label string
}

// AgainstCycle flattens one variable across all cycles in cycle order and
// pairs it with a synthetic cycle axis. The axis is spaced linearly from 0 to
// cycles over the flattened length; it is a display approximation, not a
// per-sample cycle index, and does not correct for cycles of unequal sample
// count. An empty Solution yields zero-length Series.
func AgainstCycle(sol *solver.Solution, cycles int, variable Variable) []Series {
	values := Flatten(sol, variable.Name)
	return []Series{
		{Name: CycleAxisName, Values: Linspace(0, float64(cycles), len(values))},
		{Name: variable.Name, FName: variable.Label, Values: values},
	}
}

// AllAgainstCycle reduces several variables in caller order, one axis/trace
// pair per variable.
func AllAgainstCycle(sol *solver.Solution, cycles int, variables []Variable) []Series {
	graphs := make([]Series, 0, 2*len(variables))
	for _, v := range variables {
		graphs = append(graphs, AgainstCycle(sol, cycles, v)...)
	}
	return graphs
}

// Flatten concatenates a variable's samples across cycles, later cycles after
// earlier ones, with no resampling across cycle boundaries.
func Flatten(sol *solver.Solution, variable string) []float64 {
	values := make([]float64, 0)
	if sol == nil {
		return values
	}
	for _, cycle := range sol.Cycles {
		values = append(values, cycle.Values[variable]...)
	}
	return values
}

// SweepTrace holds one C-rate's single-cycle result.
type SweepTrace struct {
	Rate   float64
	Result solver.CycleResult
}

// SweepGraphs emits, per rate, a capacity Series and a voltage Series labeled
// with the rate. Sweep results are single-cycle, so no flattening happens.
func SweepGraphs(traces []SweepTrace, capacityVariable string) []Series {
	graphs := make([]Series, 0, 2*len(traces))
	for _, tr := range traces {
		graphs = append(graphs,
			Series{Name: capacityVariable, Values: valuesOrEmpty(tr.Result.Values[capacityVariable])},
			Series{
				Name:   solver.VarVoltage,
				FName:  fmt.Sprintf("%gC", tr.Rate),
				Values: valuesOrEmpty(tr.Result.Values[solver.VarVoltage]),
			},
		)
	}
	return graphs
}

func valuesOrEmpty(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}

// Linspace returns n points linearly spaced from start to stop inclusive.
func Linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// Halve drops every other sample, keeping the first.
func Halve(values []float64) []float64 {
	out := make([]float64, 0, (len(values)+1)/2)
	for i := 0; i < len(values); i += 2 {
		out = append(out, values[i])
	}
	return out
}

// DownsampleToCap repeatedly halves a trace until it fits under limit. A
// limit of zero or below disables downsampling.
func DownsampleToCap(values []float64, limit int) []float64 {
	if limit <= 0 {
		return values
	}
	for len(values) > limit {
		values = Halve(values)
	}
	return values
}
