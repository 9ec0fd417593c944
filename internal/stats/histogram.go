package stats

import (
	"fmt"
	"math"
)

// DefaultBins is the bin count used when none (or a non-positive one) is given.
const DefaultBins = 10

// HistogramBin is one equal-width bucket of a histogram.
type HistogramBin struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Histogram buckets xs into numBins half-open bins [lo, hi) spanning
// [min, max]. The maximum value always lands in the last bin. A column with a
// single distinct value yields one bin labeled with that value.
func Histogram(xs []float64, numBins int) []HistogramBin {
	if len(xs) == 0 {
		return []HistogramBin{}
	}
	if numBins < 1 {
		numBins = DefaultBins
	}
	mm := MinMaxRange(xs)
	lo, hi := mm.Min, mm.Max
	if lo == hi {
		return []HistogramBin{{Label: fmt.Sprintf("%.2f", lo), Count: len(xs), Lower: lo, Upper: hi}}
	}
	binSize := (hi - lo) / float64(numBins)
	if binSize == 0 {
		return []HistogramBin{{Label: fmt.Sprintf("%.2f - %.2f", lo, hi), Count: len(xs), Lower: lo, Upper: hi}}
	}

	bins := make([]HistogramBin, numBins)
	for i := range bins {
		lower := lo + float64(i)*binSize
		upper := lo + float64(i+1)*binSize
		bins[i] = HistogramBin{Label: fmt.Sprintf("%.2f-%.2f", lower, upper), Lower: lower, Upper: upper}
	}
	for _, v := range xs {
		idx := int(math.Floor((v - lo) / binSize))
		switch {
		case v == hi || idx >= numBins:
			idx = numBins - 1
		case idx < 0:
			idx = 0
		}
		bins[idx].Count++
	}
	return bins
}
