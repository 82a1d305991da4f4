package solver

import (
	"context"
	"math"

	"github.com/san-kum/battsim/internal/params"
	"github.com/san-kum/battsim/internal/protocol"
)

// Cell is the reference Solver: an equivalent-circuit cell integrated with
// fixed steps, sampled at each instruction's period. It satisfies the same
// boundary a heavier electrochemical backend would.
type Cell struct {
	observers []Observer
}

func NewCell() *Cell {
	return &Cell{}
}

func (s *Cell) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// runState is the integration state threaded through an experiment. Time,
// throughput and net discharge accumulate across cycles.
type runState struct {
	soc          float64
	t            float64
	throughputAh float64
	dischargeAh  float64
}

func (s *Cell) Solve(ctx context.Context, model Model, set params.Set, exp protocol.Experiment, cfg Config) (*Solution, error) {
	c, err := newCell(set, model)
	if err != nil {
		return nil, err
	}

	st := &runState{soc: 1.0}
	if exp.InitialSOC != nil {
		st.soc = clamp(*exp.InitialSOC, 0, 1)
	}

	sol := &Solution{Cycles: make([]CycleResult, 0, exp.Cycles)}
	for cycle := 0; cycle < exp.Cycles; cycle++ {
		cr := CycleResult{Values: make(map[string][]float64)}
		for i, step := range exp.Template {
			if err := s.runStep(ctx, c, st, step, cfg, &cr, cycle); err != nil {
				return nil, &SolveError{Cycle: cycle, Step: i, Time: st.t, Wrapped: err}
			}
		}
		sol.Cycles = append(sol.Cycles, cr)
	}
	return sol, nil
}

func (s *Cell) runStep(ctx context.Context, c *cell, st *runState, step protocol.Step, cfg Config, cr *CycleResult, cycle int) error {
	period := step.Period.Seconds()
	dt := math.Min(period, cfg.DtMax)
	if step.Kind == protocol.Hold {
		// Hold current decays fast against the OCV slope; keep the step well
		// under the decay constant.
		dt = math.Min(dt, 10)
	} else {
		dt = math.Min(dt, 60)
	}

	elapsed := 0.0
	nextSample := 0.0
	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if n >= cfg.MaxSteps {
			return ErrMaxSteps
		}

		current := s.current(c, st.soc, step)
		voltage := c.terminal(st.soc, current)
		if step.Kind == protocol.Hold {
			voltage = step.HoldVoltage
		}

		if s.terminated(c, st, step, elapsed, current, voltage) {
			s.record(c, st, cr, cycle, current, voltage)
			return nil
		}
		if step.Kind == protocol.Charge && st.soc >= 1 {
			return ErrInfeasible
		}
		if step.Kind == protocol.Discharge && st.soc <= 0 {
			return ErrInfeasible
		}

		if elapsed >= nextSample {
			s.record(c, st, cr, cycle, current, voltage)
			nextSample += period
		}

		st.soc = clamp(st.soc+dt*c.socRate(current), 0, 1)
		st.throughputAh += math.Abs(current) * dt / 3600
		st.dischargeAh += current * dt / 3600
		st.t += dt
		elapsed += dt
	}
}

// current returns the load for the step at the present state of charge;
// positive discharges the cell.
func (s *Cell) current(c *cell, soc float64, step protocol.Step) float64 {
	switch step.Kind {
	case protocol.Hold:
		return c.holdCurrent(soc, step.HoldVoltage)
	case protocol.Charge:
		return -step.CRate * c.capacityAh
	default:
		return step.CRate * c.capacityAh
	}
}

func (s *Cell) terminated(c *cell, st *runState, step protocol.Step, elapsed, current, voltage float64) bool {
	if step.MaxDuration > 0 && elapsed >= step.MaxDuration.Seconds() {
		return true
	}
	if step.CutoffVoltage != nil {
		switch step.Kind {
		case protocol.Discharge:
			if voltage <= *step.CutoffVoltage {
				return true
			}
		case protocol.Charge:
			if voltage >= *step.CutoffVoltage {
				return true
			}
		}
	}
	if step.CutoffCurrentA != nil && elapsed > 0 && math.Abs(current) <= *step.CutoffCurrentA {
		return true
	}
	return false
}

func (s *Cell) record(c *cell, st *runState, cr *CycleResult, cycle int, current, voltage float64) {
	values := map[string]float64{
		VarVoltage:            voltage,
		VarCurrent:            current,
		VarThroughputCapacity: st.throughputAh,
		VarDischargeCapacity:  st.dischargeAh,
	}
	if c.trackAging {
		lost := c.lithiumLost(st.throughputAh)
		cyclable := c.lithiumMol * cyclableShare
		negative := st.soc * (cyclable - lost)
		values[VarLithiumNegative] = negative
		values[VarLithiumPositive] = c.lithiumMol - negative - lost
		values[VarLithiumTotal] = c.lithiumMol - lost
	}

	cr.Time = append(cr.Time, st.t)
	for name, v := range values {
		cr.Values[name] = append(cr.Values[name], v)
	}
	for _, o := range s.observers {
		o.OnSample(cycle, st.t, values)
	}
}
