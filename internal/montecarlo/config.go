// Package montecarlo estimates total repair cost under defect-reduction
// scenarios by bootstrap resampling of observed repair costs.
package montecarlo

import (
	"errors"
	"fmt"
	"math"
	"runtime"
)

// DefaultSimulations is the number of resampled totals per scenario.
const DefaultSimulations = 10000

// MaxSimulations bounds Simulations; each scenario holds one float64 per
// simulation in memory.
const MaxSimulations = 1_000_000

// ErrInsufficientData is returned when there are no costs to resample from.
var ErrInsufficientData = errors.New("insufficient data: no repair costs to simulate")

// DefaultScenarios returns the fractional defect reductions simulated by
// default: 0%, 10%, 20% and 30%.
func DefaultScenarios() []float64 {
	return []float64{0, 0.10, 0.20, 0.30}
}

// Config controls a simulation run.
type Config struct {
	// Scenarios are fractional reductions in the number of defects, in [0, 1).
	// The 0 scenario, if present, is the baseline for expected savings.
	Scenarios []float64
	// Simulations is the number of resampled totals per scenario.
	Simulations int
	// Workers bounds how many scenarios are simulated concurrently.
	Workers int
	// Seed makes runs reproducible when non-zero.
	Seed uint64
	// KeepTotals retains the sorted simulated totals on each Result.
	KeepTotals bool
}

// DefaultConfig returns the fixed scenario list and simulation count.
func DefaultConfig() Config {
	return Config{
		Scenarios:   DefaultScenarios(),
		Simulations: DefaultSimulations,
		Workers:     runtime.GOMAXPROCS(0),
	}
}

func (c Config) normalized() (Config, error) {
	if len(c.Scenarios) == 0 {
		c.Scenarios = DefaultScenarios()
	} else {
		c.Scenarios = append([]float64(nil), c.Scenarios...)
	}
	for _, r := range c.Scenarios {
		if math.IsNaN(r) || r < 0 || r >= 1 {
			return c, fmt.Errorf("invalid reduction scenario %v: must be in [0, 1)", r)
		}
	}
	if c.Simulations <= 0 {
		c.Simulations = DefaultSimulations
	}
	if c.Simulations > MaxSimulations {
		return c, fmt.Errorf("simulations %d exceeds the maximum of %d", c.Simulations, MaxSimulations)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return c, nil
}
