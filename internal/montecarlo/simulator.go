package montecarlo

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// chunksPerScenario is how many slices a scenario's trials are split into.
// Progress is reported and cancellation observed between chunks.
const chunksPerScenario = 100

// Percentiles are nearest-rank percentiles of the simulated totals.
type Percentiles struct {
	P5  float64 `json:"p5"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
}

// Result summarizes one simulated scenario.
type Result struct {
	Scenario    string      `json:"scenario"`
	Reduction   float64     `json:"reduction"`
	SampleSize  int         `json:"sampleSize"`
	MeanCost    float64     `json:"meanCost"`
	StdDevCost  float64     `json:"stdDevCost"`
	Percentiles Percentiles `json:"percentiles"`
	// ExpectedSavings is nil for the baseline scenario.
	ExpectedSavings *float64 `json:"expectedSavings,omitempty"`
	// Totals are the sorted simulated totals, kept only with Config.KeepTotals.
	Totals []float64 `json:"-"`
}

// Simulator runs bootstrap repair-cost simulations.
type Simulator struct {
	cfg Config
	log logrus.FieldLogger
}

// New returns a Simulator for cfg. Zero fields take their defaults.
func New(cfg Config) (*Simulator, error) {
	norm, err := cfg.normalized()
	if err != nil {
		return nil, err
	}
	return &Simulator{cfg: norm, log: logrus.StandardLogger()}, nil
}

// WithLogger replaces the logger used for run diagnostics.
func (s *Simulator) WithLogger(l logrus.FieldLogger) *Simulator {
	if l != nil {
		s.log = l
	}
	return s
}

// Config returns the normalized configuration.
func (s *Simulator) Config() Config { return s.cfg }

// ScenarioLabel formats a reduction fraction as "<percent>% Reduction".
func ScenarioLabel(r float64) string {
	pct := math.Round(r*100*1e6) / 1e6
	return fmt.Sprintf("%s%% Reduction", trimFloat(pct))
}

func trimFloat(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprintf("%g", f)
}

// Run simulates every configured scenario and returns one Result per scenario
// in configuration order. onProgress, when non-nil, receives increasing
// percentages starting at 0 and ending with exactly one 100 once the results
// are ready. It is called from worker goroutines, never concurrently.
//
// Each scenario draws Simulations*sampleSize values, so a run over a large
// dataset is CPU heavy; callers driving an interactive surface should use
// Start instead.
func (s *Simulator) Run(ctx context.Context, costs []float64, onProgress ProgressFunc) ([]Result, error) {
	if len(costs) == 0 {
		return nil, ErrInsufficientData
	}
	pool := append([]float64(nil), costs...)
	cfg := s.cfg
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	progress := newProgressTracker(int64(len(cfg.Scenarios))*int64(cfg.Simulations), onProgress)
	results := make([]Result, len(cfg.Scenarios))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, r := range cfg.Scenarios {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(seed, uint64(i)))
			res, err := simulateScenario(gctx, rng, pool, r, cfg.Simulations, progress)
			if err != nil {
				return err
			}
			if !cfg.KeepTotals {
				res.Totals = nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("simulation aborted: %w", err)
	}

	applySavings(results)
	progress.finish()
	s.log.WithFields(logrus.Fields{
		"scenarios":   len(results),
		"simulations": cfg.Simulations,
		"records":     len(pool),
	}).Debug("monte carlo run complete")
	return results, nil
}

func simulateScenario(ctx context.Context, rng *rand.Rand, costs []float64, r float64, sims int, progress *progressTracker) (Result, error) {
	sampleSize := int(math.Floor(float64(len(costs)) * (1 - r)))
	totals := make([]float64, sims)
	chunk := sims / chunksPerScenario
	if chunk < 1 {
		chunk = 1
	}
	n := len(costs)
	for start := 0; start < sims; start += chunk {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		end := min(start+chunk, sims)
		for t := start; t < end; t++ {
			var total float64
			for k := 0; k < sampleSize; k++ {
				total += costs[rng.IntN(n)]
			}
			totals[t] = total
		}
		progress.add(end - start)
	}
	sort.Float64s(totals)

	mean, std := summarize(totals)
	return Result{
		Scenario:   ScenarioLabel(r),
		Reduction:  r,
		SampleSize: sampleSize,
		MeanCost:   mean,
		StdDevCost: std,
		Percentiles: Percentiles{
			P5:  nearestRank(totals, 0.05),
			P50: nearestRank(totals, 0.50),
			P95: nearestRank(totals, 0.95),
		},
		Totals: totals,
	}, nil
}

// summarize returns the mean and sample standard deviation. A single total
// has a standard deviation of 0.
func summarize(totals []float64) (mean, std float64) {
	switch len(totals) {
	case 0:
		return 0, 0
	case 1:
		return totals[0], 0
	}
	mean, std = stat.MeanStdDev(totals, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std
}

// nearestRank indexes sorted at floor(n*p), clamped to the last element.
func nearestRank(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Floor(float64(len(sorted)) * p))
	return sorted[min(idx, len(sorted)-1)]
}

// applySavings sets ExpectedSavings on every scenario but the zero-reduction
// baseline. Without a baseline no savings are reported.
func applySavings(results []Result) {
	baseline := -1
	for i, r := range results {
		if r.Reduction == 0 {
			baseline = i
			break
		}
	}
	if baseline < 0 {
		return
	}
	base := results[baseline].MeanCost
	for i := range results {
		if results[i].Reduction == 0 {
			continue
		}
		saving := base - results[i].MeanCost
		results[i].ExpectedSavings = &saving
	}
}

// TotalCost sums observed repair costs.
func TotalCost(costs []float64) float64 { return floats.Sum(costs) }
