package solver

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/battsim/internal/params"
	"github.com/san-kum/battsim/internal/protocol"
)

func TestSolveCycling(t *testing.T) {
	set, err := params.Base("Silicon")
	if err != nil {
		t.Fatal(err)
	}

	sol, err := NewCell().Solve(context.Background(), ModelDFNComposite, set, protocol.Cycling(3), SafeConfig())
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if len(sol.Cycles) != 3 {
		t.Fatalf("expected 3 cycles, got %d", len(sol.Cycles))
	}

	for i, cycle := range sol.Cycles {
		if len(cycle.Time) == 0 {
			t.Fatalf("cycle %d: no samples", i)
		}
		voltages := cycle.Values[VarVoltage]
		if len(voltages) != len(cycle.Time) {
			t.Fatalf("cycle %d: %d voltages for %d times", i, len(voltages), len(cycle.Time))
		}
		for _, v := range voltages {
			if v < 2.0 || v > 4.5 {
				t.Errorf("cycle %d: voltage %f outside plausible window", i, v)
			}
		}
	}

	// SEI growth consumes lithium monotonically across the run.
	first := sol.Cycles[0].Values[VarLithiumTotal]
	last := sol.Cycles[2].Values[VarLithiumTotal]
	if last[len(last)-1] >= first[0] {
		t.Errorf("total lithium did not decrease: %f -> %f", first[0], last[len(last)-1])
	}
}

func TestSolveCyclesShareClock(t *testing.T) {
	set, _ := params.Base("Silicon")
	sol, err := NewCell().Solve(context.Background(), ModelDFNComposite, set, protocol.Cycling(2), SafeConfig())
	if err != nil {
		t.Fatal(err)
	}

	prev := math.Inf(-1)
	for _, cycle := range sol.Cycles {
		for _, tm := range cycle.Time {
			if tm < prev {
				t.Fatalf("time went backwards: %f after %f", tm, prev)
			}
			prev = tm
		}
	}
}

func TestSolveRateSweepDischarge(t *testing.T) {
	set, err := params.Base("NMC")
	if err != nil {
		t.Fatal(err)
	}
	limits, err := params.Limits("NMC")
	if err != nil {
		t.Fatal(err)
	}
	experiments, err := protocol.RateSweep(limits, []float64{1}, protocol.ModeDischarge)
	if err != nil {
		t.Fatal(err)
	}

	sol, err := NewCell().Solve(context.Background(), ModelSPM, set, experiments[0], FastConfig())
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if len(sol.Cycles) != 1 {
		t.Fatalf("expected single cycle, got %d", len(sol.Cycles))
	}

	voltages := sol.Cycles[0].Values[VarVoltage]
	final := voltages[len(voltages)-1]
	if final > limits.MinV+0.05 {
		t.Errorf("discharge should end near %f V, ended at %f V", limits.MinV, final)
	}
	if _, ok := sol.Cycles[0].Values[VarLithiumTotal]; ok {
		t.Error("SPM solve should not track lithium inventory")
	}

	capacity := sol.Cycles[0].Values[VarDischargeCapacity]
	if capacity[len(capacity)-1] <= 0 {
		t.Errorf("discharge capacity should accumulate, got %f", capacity[len(capacity)-1])
	}
}

func TestSolveHoldTapersCurrent(t *testing.T) {
	set, _ := params.Base("Silicon")
	sol, err := NewCell().Solve(context.Background(), ModelDFNComposite, set, protocol.Cycling(1), SafeConfig())
	if err != nil {
		t.Fatal(err)
	}

	currents := sol.Cycles[0].Values[VarCurrent]
	final := currents[len(currents)-1]
	if math.Abs(final) > 0.05+1e-9 {
		t.Errorf("hold should taper to 50 mA, final current %f A", final)
	}
}

func TestSolveMaxSteps(t *testing.T) {
	set, _ := params.Base("NMC")
	cfg := Config{Mode: "safe", DtMax: 3600, MaxSteps: 3}
	_, err := NewCell().Solve(context.Background(), ModelDFNComposite, set, protocol.Cycling(1), cfg)
	if !errors.Is(err, ErrMaxSteps) {
		t.Fatalf("expected ErrMaxSteps, got %v", err)
	}

	var solveErr *SolveError
	if !errors.As(err, &solveErr) {
		t.Fatalf("expected SolveError wrapper, got %T", err)
	}
	if solveErr.Cycle != 0 {
		t.Errorf("failure cycle: got %d", solveErr.Cycle)
	}
}

func TestSolveMissingParameter(t *testing.T) {
	_, err := NewCell().Solve(context.Background(), ModelSPM, params.Set{}, protocol.Cycling(1), SafeConfig())
	if !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("expected ErrMissingParameter, got %v", err)
	}
}

func TestSolveHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	set, _ := params.Base("NMC")
	_, err := NewCell().Solve(ctx, ModelDFNComposite, set, protocol.Cycling(3), SafeConfig())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type sampleCounter struct {
	n     int
	lastT float64
	backT bool
}

func (s *sampleCounter) OnSample(cycle int, t float64, values map[string]float64) {
	if t < s.lastT {
		s.backT = true
	}
	s.lastT = t
	s.n++
}

func TestObserverReceivesSamples(t *testing.T) {
	set, _ := params.Base("Silicon")
	counter := &sampleCounter{}

	cellSolver := NewCell()
	cellSolver.AddObserver(counter)
	sol, err := cellSolver.Solve(context.Background(), ModelDFNComposite, set, protocol.Cycling(1), SafeConfig())
	if err != nil {
		t.Fatal(err)
	}

	want := 0
	for _, cycle := range sol.Cycles {
		want += len(cycle.Time)
	}
	if counter.n != want {
		t.Errorf("observer saw %d samples, solution has %d", counter.n, want)
	}
	if counter.backT {
		t.Error("observer sample times went backwards")
	}
}

func TestOCVSpansVoltageWindow(t *testing.T) {
	set, err := params.Base("NMC")
	if err != nil {
		t.Fatal(err)
	}
	c, err := newCell(set, ModelSPM)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(c.ocv(0)-c.vmin) > 1e-9 {
		t.Errorf("ocv(0) = %f, want vmin %f", c.ocv(0), c.vmin)
	}
	if math.Abs(c.ocv(1)-c.vmax) > 1e-9 {
		t.Errorf("ocv(1) = %f, want vmax %f", c.ocv(1), c.vmax)
	}
}

// Cutoffs that sit exactly on the voltage window edges must stay reachable
// even when the IR drop is tiny.
func TestSolveLowRateSweepReachesCutoff(t *testing.T) {
	cases := []struct {
		chemistry string
		mode      protocol.Mode
		rate      float64
	}{
		{"NMC", protocol.ModeCharge, 0.1},
		{"NCA", protocol.ModeDischarge, 0.2},
		{"NCA", protocol.ModeCharge, 0.1},
	}

	for _, tc := range cases {
		set, err := params.Base(tc.chemistry)
		if err != nil {
			t.Fatal(err)
		}
		limits, err := params.Limits(tc.chemistry)
		if err != nil {
			t.Fatal(err)
		}
		experiments, err := protocol.RateSweep(limits, []float64{tc.rate}, tc.mode)
		if err != nil {
			t.Fatal(err)
		}

		sol, err := NewCell().Solve(context.Background(), ModelSPM, set, experiments[0], FastConfig())
		if err != nil {
			t.Errorf("%s %s at %gC: solve failed: %v", tc.chemistry, tc.mode, tc.rate, err)
			continue
		}

		voltages := sol.Cycles[0].Values[VarVoltage]
		if len(voltages) == 0 {
			t.Errorf("%s %s at %gC: no voltage samples", tc.chemistry, tc.mode, tc.rate)
			continue
		}
		final := voltages[len(voltages)-1]
		cutoff := limits.MinV
		if tc.mode == protocol.ModeCharge {
			cutoff = limits.MaxV
		}
		if math.Abs(final-cutoff) > 0.15 {
			t.Errorf("%s %s at %gC: final voltage %f not near cutoff %f", tc.chemistry, tc.mode, tc.rate, final, cutoff)
		}
	}
}
