package metrics

import (
	"math"

	"github.com/san-kum/battsim/internal/solver"
)

// Metric accumulates one summary figure over a run's samples. Metrics plug
// into the solver as observers and are read after the solve completes.
type Metric interface {
	solver.Observer
	Name() string
	Value() float64
	Reset()
}

// EnergyThroughput integrates |V*I| over time, in watt-hours.
type EnergyThroughput struct {
	lastT     float64
	lastPower float64
	started   bool
	totalWh   float64
}

func NewEnergyThroughput() *EnergyThroughput {
	return &EnergyThroughput{}
}

func (e *EnergyThroughput) Name() string { return "energy_throughput_wh" }

func (e *EnergyThroughput) OnSample(cycle int, t float64, values map[string]float64) {
	power := math.Abs(values[solver.VarVoltage] * values[solver.VarCurrent])
	if e.started {
		dt := t - e.lastT
		if dt > 0 {
			e.totalWh += 0.5 * (power + e.lastPower) * dt / 3600
		}
	}
	e.lastT = t
	e.lastPower = power
	e.started = true
}

func (e *EnergyThroughput) Value() float64 { return e.totalWh }

func (e *EnergyThroughput) Reset() { *e = EnergyThroughput{} }

// CapacityFade compares the charge moved in the first and last observed
// cycles; positive values mean the cell did less work in the final cycle.
type CapacityFade struct {
	perCycleMin map[int]float64
	perCycleMax map[int]float64
	first, last int
	seen        bool
}

func NewCapacityFade() *CapacityFade {
	return &CapacityFade{
		perCycleMin: make(map[int]float64),
		perCycleMax: make(map[int]float64),
	}
}

func (c *CapacityFade) Name() string { return "capacity_fade_ah" }

func (c *CapacityFade) OnSample(cycle int, t float64, values map[string]float64) {
	throughput := values[solver.VarThroughputCapacity]
	if _, ok := c.perCycleMin[cycle]; !ok {
		c.perCycleMin[cycle] = throughput
		c.perCycleMax[cycle] = throughput
	}
	c.perCycleMin[cycle] = math.Min(c.perCycleMin[cycle], throughput)
	c.perCycleMax[cycle] = math.Max(c.perCycleMax[cycle], throughput)
	if !c.seen || cycle < c.first {
		c.first = cycle
	}
	if !c.seen || cycle > c.last {
		c.last = cycle
	}
	c.seen = true
}

func (c *CapacityFade) Value() float64 {
	if !c.seen || c.first == c.last {
		return 0
	}
	firstSpan := c.perCycleMax[c.first] - c.perCycleMin[c.first]
	lastSpan := c.perCycleMax[c.last] - c.perCycleMin[c.last]
	return firstSpan - lastSpan
}

func (c *CapacityFade) Reset() {
	c.perCycleMin = make(map[int]float64)
	c.perCycleMax = make(map[int]float64)
	c.first, c.last = 0, 0
	c.seen = false
}

// SampleCount counts recorded samples.
type SampleCount struct {
	n int
}

func NewSampleCount() *SampleCount { return &SampleCount{} }

func (s *SampleCount) Name() string { return "samples" }

func (s *SampleCount) OnSample(cycle int, t float64, values map[string]float64) { s.n++ }

func (s *SampleCount) Value() float64 { return float64(s.n) }

func (s *SampleCount) Reset() { s.n = 0 }

// Defaults returns the metric set the CLI reports after a run.
func Defaults() []Metric {
	return []Metric{NewSampleCount(), NewEnergyThroughput(), NewCapacityFade()}
}
