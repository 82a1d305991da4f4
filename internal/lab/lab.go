// Package lab runs the request-to-chart-data pipeline: parameter merge,
// experiment construction, solver invocation, and series reduction.
package lab

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/san-kum/battsim/internal/config"
	"github.com/san-kum/battsim/internal/params"
	"github.com/san-kum/battsim/internal/protocol"
	"github.com/san-kum/battsim/internal/series"
	"github.com/san-kum/battsim/internal/solver"
)

// Request is the inbound simulation request. Field names match the JSON the
// front end sends; unrecognized fields are ignored by decoding.
type Request struct {
	AmbientTemperatureK float64   `json:"Ambient temperature [K]"`
	CRates              []float64 `json:"C Rates"`
	SiliconPercentage   float64   `json:"Silicon Percentage"`
	BatteryType         string    `json:"Battery Type"`
	Mode                string    `json:"Mode"`
}

// overrides folds the request's optional numbers into an explicit override
// set; this is the only place the zero-means-absent rule is applied.
func (r Request) overrides() params.Overrides {
	return params.FromRequest(r.AmbientTemperatureK, 0, 0, r.SiliconPercentage)
}

// rates returns the requested C-rates, defaulting an omitted field to [1].
// An explicitly empty list stays empty and fails downstream.
func (r Request) rates() []float64 {
	if r.CRates == nil {
		return []float64{1}
	}
	return r.CRates
}

// cyclingChemistry pins aging runs to the composite silicon set; the
// dual-phase negative electrode only exists there.
const cyclingChemistry = "Silicon"

const defaultSweepChemistry = "NMC"

// compositeUpdates are the fixed concentration and diffusivity adjustments
// applied on top of the composite base set for aging runs.
var compositeUpdates = map[string]float64{
	"Primary: Maximum concentration in negative electrode [mol.m-3]":   28700,
	"Primary: Initial concentration in negative electrode [mol.m-3]":   23000,
	"Primary: Negative electrode diffusivity [m2.s-1]":                 5.5e-14,
	"Secondary: Negative electrode diffusivity [m2.s-1]":               1.67e-14,
	"Secondary: Initial concentration in negative electrode [mol.m-3]": 277000,
	"Secondary: Maximum concentration in negative electrode [mol.m-3]": 278000,
}

// Lab wires a solver and configuration into the two simulation pipelines.
type Lab struct {
	solver solver.Solver
	cfg    *config.Config
}

func New(s solver.Solver, cfg *config.Config) *Lab {
	return &Lab{solver: s, cfg: cfg}
}

// Cycling runs the multi-cycle aging protocol and packages the lithium
// inventory and capacity groups. Any failure, input or solver, becomes an
// error Result; partial output is discarded.
func (l *Lab) Cycling(ctx context.Context, req Request) series.Result {
	groups, err := l.cycling(ctx, req)
	if err != nil {
		return series.Fail(err)
	}
	return series.Ok(groups...)
}

func (l *Lab) cycling(ctx context.Context, req Request) ([]series.GraphGroup, error) {
	set, err := params.Base(cyclingChemistry)
	if err != nil {
		return nil, err
	}
	set.Update(compositeUpdates)
	if err := params.Apply(set, req.overrides()); err != nil {
		return nil, err
	}

	exp := protocol.Cycling(l.cfg.Cycles)
	log.Printf("lab: running cycling experiment: %s", strings.Join(exp.Strings(), "; "))

	sol, err := l.solver.Solve(ctx, solver.ModelDFNComposite, set, exp, l.cfg.SafeSolver())
	if err != nil {
		return nil, err
	}
	log.Printf("lab: cycling solved, %d cycles", len(sol.Cycles))

	lithium := series.GraphGroup{
		Title: "Total Lithium in electrodes",
		Graphs: l.capped(series.AllAgainstCycle(sol, exp.Cycles, []series.Variable{
			{Name: solver.VarLithiumPositive, Label: "Positive"},
			{Name: solver.VarLithiumNegative, Label: "Negative"},
			{Name: solver.VarLithiumTotal, Label: "Total"},
		})),
	}
	capacity := series.GraphGroup{
		Title: "Capacity over Cycles",
		Graphs: l.capped(series.AgainstCycle(sol, exp.Cycles, series.Variable{
			Name:  solver.VarThroughputCapacity,
			Label: "Capacity",
		})),
	}
	return []series.GraphGroup{lithium, capacity}, nil
}

// RateSweep runs one single-particle experiment per requested C-rate and
// packages capacity/voltage traces per rate.
func (l *Lab) RateSweep(ctx context.Context, req Request) series.Result {
	groups, err := l.rateSweep(ctx, req)
	if err != nil {
		return series.Fail(err)
	}
	return series.Ok(groups...)
}

func (l *Lab) rateSweep(ctx context.Context, req Request) ([]series.GraphGroup, error) {
	chemistry := req.BatteryType
	if chemistry == "" {
		chemistry = defaultSweepChemistry
	}
	mode := parseMode(req.Mode)

	set, err := params.Base(chemistry)
	if err != nil {
		return nil, err
	}
	if err := params.Apply(set, req.overrides()); err != nil {
		return nil, err
	}
	limits, err := params.Limits(chemistry)
	if err != nil {
		return nil, err
	}

	rates := req.rates()
	experiments, err := protocol.RateSweep(limits, rates, mode)
	if err != nil {
		return nil, err
	}

	capacityVar := solver.VarDischargeCapacity
	if mode == protocol.ModeCharge {
		capacityVar = solver.VarThroughputCapacity
	}

	traces := make([]series.SweepTrace, 0, len(experiments))
	for i, exp := range experiments {
		log.Printf("lab: running sweep %s (%s)", exp.Template[0], chemistry)
		sol, err := l.solver.Solve(ctx, solver.ModelSPM, set, exp, l.cfg.FastSolver())
		if err != nil {
			return nil, err
		}
		cr := solver.CycleResult{Values: make(map[string][]float64)}
		if len(sol.Cycles) > 0 {
			cr = sol.Cycles[0]
		}
		traces = append(traces, series.SweepTrace{Rate: rates[i], Result: cr})
	}

	group := series.GraphGroup{
		Title:  fmt.Sprintf("%sing at different C Rates", strings.TrimSuffix(mode.String(), "e")),
		Graphs: l.capped(series.SweepGraphs(traces, capacityVar)),
	}
	return []series.GraphGroup{group}, nil
}

// capped applies the configured per-trace sample cap to every series.
func (l *Lab) capped(graphs []series.Series) []series.Series {
	for i := range graphs {
		graphs[i].Values = series.DownsampleToCap(graphs[i].Values, l.cfg.SampleCap)
	}
	return graphs
}

func parseMode(s string) protocol.Mode {
	if strings.EqualFold(s, "Charge") {
		return protocol.ModeCharge
	}
	return protocol.ModeDischarge
}
