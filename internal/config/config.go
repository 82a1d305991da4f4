package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/battsim/internal/solver"
)

const (
	DefaultAddr      = ":8080"
	DefaultCycles    = 3
	DefaultSampleCap = 8100
	DefaultDataDir   = ".battsim"
)

// Config is the process configuration. The chemistry and voltage tables are
// compiled in; everything here is serving and tuning knobs.
type Config struct {
	Addr      string       `yaml:"addr"`
	Cycles    int          `yaml:"cycles"`
	SampleCap int          `yaml:"sample_cap"` // max samples per trace; 0 disables downsampling
	DataDir   string       `yaml:"data_dir"`
	Solver    SolverConfig `yaml:"solver"`
}

// SolverConfig carries the two tuning profiles handed to the solver.
type SolverConfig struct {
	Safe Tuning `yaml:"safe"`
	Fast Tuning `yaml:"fast"`
}

// Tuning mirrors solver.Config for YAML.
type Tuning struct {
	DtMax    float64 `yaml:"dt_max"`
	MaxSteps int     `yaml:"max_steps"`
}

func DefaultConfig() *Config {
	safe := solver.SafeConfig()
	fast := solver.FastConfig()
	return &Config{
		Addr:      DefaultAddr,
		Cycles:    DefaultCycles,
		SampleCap: DefaultSampleCap,
		DataDir:   DefaultDataDir,
		Solver: SolverConfig{
			Safe: Tuning{DtMax: safe.DtMax, MaxSteps: safe.MaxSteps},
			Fast: Tuning{DtMax: fast.DtMax, MaxSteps: fast.MaxSteps},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Cycles < 1 {
		return fmt.Errorf("config: cycles must be at least 1, got %d", c.Cycles)
	}
	if c.SampleCap < 0 {
		return fmt.Errorf("config: sample_cap must not be negative, got %d", c.SampleCap)
	}
	for name, tuning := range map[string]Tuning{"safe": c.Solver.Safe, "fast": c.Solver.Fast} {
		if tuning.DtMax <= 0 {
			return fmt.Errorf("config: solver.%s.dt_max must be positive", name)
		}
		if tuning.MaxSteps < 1 {
			return fmt.Errorf("config: solver.%s.max_steps must be at least 1", name)
		}
	}
	return nil
}

// SafeSolver returns the aging-run solver tuning.
func (c *Config) SafeSolver() solver.Config {
	return solver.Config{Mode: "safe", DtMax: c.Solver.Safe.DtMax, MaxSteps: c.Solver.Safe.MaxSteps}
}

// FastSolver returns the rate-sweep solver tuning.
func (c *Config) FastSolver() solver.Config {
	return solver.Config{Mode: "fast", DtMax: c.Solver.Fast.DtMax, MaxSteps: c.Solver.Fast.MaxSteps}
}
