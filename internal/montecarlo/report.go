package montecarlo

import (
	"time"

	"github.com/google/uuid"
)

// RunReport is the envelope around one simulation run.
type RunReport struct {
	RunID       string    `json:"runId"`
	Dataset     string    `json:"dataset"`
	Records     int       `json:"records"`
	TotalCost   float64   `json:"totalCost"`
	Simulations int       `json:"simulations"`
	Seed        uint64    `json:"seed,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
	DurationMS  int64     `json:"durationMs"`
	Results     []Result  `json:"results"`
}

// NewRunReport stamps a fresh run id and the run's start time.
func (s *Simulator) NewRunReport(dataset string, costs []float64) *RunReport {
	return &RunReport{
		RunID:       uuid.NewString(),
		Dataset:     dataset,
		Records:     len(costs),
		TotalCost:   TotalCost(costs),
		Simulations: s.cfg.Simulations,
		Seed:        s.cfg.Seed,
		StartedAt:   time.Now().UTC(),
	}
}

// Complete records the results and elapsed time.
func (r *RunReport) Complete(results []Result) *RunReport {
	r.Results = results
	r.DurationMS = time.Since(r.StartedAt).Milliseconds()
	return r
}
