// Package stats implements the descriptive statistics used for defect repair
// costs and categorical defect attributes.
//
// Every function is pure: inputs are never mutated and empty inputs yield zero
// values (or nil / empty collections) instead of errors or NaN.
package stats

import (
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"
)

// NumericalStats summarizes a numeric column.
type NumericalStats struct {
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Mode     Mode    `json:"mode"`
	StdDev   float64 `json:"stdDev"`
	Variance float64 `json:"variance"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Range    float64 `json:"range"`
	Q1       float64 `json:"q1"`
	Q3       float64 `json:"q3"`
	IQR      float64 `json:"iqr"`
}

// MinMax holds the extremes of a column and their difference.
type MinMax struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Range float64 `json:"range"`
}

// QuartileSet holds the 25th/75th percentiles and the interquartile range.
type QuartileSet struct {
	Q1  float64 `json:"q1"`
	Q3  float64 `json:"q3"`
	IQR float64 `json:"iqr"`
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	m, err := mstats.Mean(xs)
	if err != nil {
		return 0
	}
	return m
}

// Median returns the middle value of the sorted input (the average of the two
// middle values for even lengths), or 0 for an empty slice.
func Median(xs []float64) float64 {
	m, err := mstats.Median(xs)
	if err != nil {
		return 0
	}
	return m
}

// Variance returns the sample variance (divided by n-1). Inputs with fewer
// than two values have variance 0.
func Variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	v, err := mstats.SampleVariance(xs)
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}

// StdDev returns the square root of Variance.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return math.Sqrt(Variance(xs))
}

// MinMaxRange returns the minimum, maximum and range; all zero when empty.
func MinMaxRange(xs []float64) MinMax {
	if len(xs) == 0 {
		return MinMax{}
	}
	lo, _ := mstats.Min(xs)
	hi, _ := mstats.Max(xs)
	return MinMax{Min: lo, Max: hi, Range: hi - lo}
}

// Quartiles computes Q1 and Q3 by linear interpolation between closest ranks
// (the R-7 / spreadsheet method) and their difference.
func Quartiles(xs []float64) QuartileSet {
	if len(xs) == 0 {
		return QuartileSet{}
	}
	sorted := sortedCopy(xs)
	q1 := interpolatedQuantile(sorted, 0.25)
	q3 := interpolatedQuantile(sorted, 0.75)
	return QuartileSet{Q1: q1, Q3: q3, IQR: q3 - q1}
}

// Describe bundles every numeric statistic. ok is false for an empty input.
func Describe(xs []float64) (s *NumericalStats, ok bool) {
	if len(xs) == 0 {
		return nil, false
	}
	mm := MinMaxRange(xs)
	q := Quartiles(xs)
	return &NumericalStats{
		Mean:     Mean(xs),
		Median:   Median(xs),
		Mode:     ModeOf(xs),
		StdDev:   StdDev(xs),
		Variance: Variance(xs),
		Min:      mm.Min,
		Max:      mm.Max,
		Range:    mm.Range,
		Q1:       q.Q1,
		Q3:       q.Q3,
		IQR:      q.IQR,
	}, true
}

// interpolatedQuantile expects sorted input with at least one element.
func interpolatedQuantile(sorted []float64, p float64) float64 {
	pos := float64(len(sorted)-1) * p
	base := int(math.Floor(pos))
	rest := pos - float64(base)
	if base+1 >= len(sorted) {
		return sorted[base]
	}
	return sorted[base] + rest*(sorted[base+1]-sorted[base])
}

func sortedCopy(xs []float64) []float64 {
	cp := make([]float64, len(xs))
	copy(cp, xs)
	sort.Float64s(cp)
	return cp
}
