package stats

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyInputs(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 0.0, Variance(nil))
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, MinMax{}, MinMaxRange(nil))
	assert.Equal(t, QuartileSet{}, Quartiles(nil))
	assert.Equal(t, NoMode, ModeOf(nil).Kind)
	assert.Empty(t, Histogram(nil, 10))
	assert.NotNil(t, Histogram([]float64{}, 10))
	assert.Empty(t, FrequencyDistribution([]string{}))

	s, ok := Describe(nil)
	assert.False(t, ok)
	assert.Nil(t, s)
}

func TestMeanMedian(t *testing.T) {
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-12)
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	xs := []float64{3, 1, 2}
	_ = Median(xs)
	_ = Quartiles(xs)
	assert.Equal(t, []float64{3, 1, 2}, xs)
}

func TestVarianceAndStdDev(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	// sum of squared deviations is 32, n-1 = 7
	assert.InDelta(t, 32.0/7.0, Variance(xs), 1e-12)
	assert.InDelta(t, math.Sqrt(32.0/7.0), StdDev(xs), 1e-12)

	assert.Equal(t, 0.0, Variance([]float64{42}))
	assert.Equal(t, 0.0, StdDev([]float64{42}))
	assert.Equal(t, 0.0, Variance([]float64{3, 3, 3, 3}))
}

func TestVarianceNonNegative(t *testing.T) {
	cases := [][]float64{
		{1},
		{1, 1},
		{0.1, 0.2, 0.3},
		{1e9, 1e9 + 1, 1e9 + 2},
		{-5, 5, -5, 5},
	}
	for _, xs := range cases {
		assert.GreaterOrEqual(t, Variance(xs), 0.0, "xs=%v", xs)
	}
}

func TestMinMaxRange(t *testing.T) {
	mm := MinMaxRange([]float64{7, -2, 10, 3})
	assert.Equal(t, MinMax{Min: -2, Max: 10, Range: 12}, mm)
}

func TestQuartilesLinearInterpolation(t *testing.T) {
	q := Quartiles([]float64{1, 2, 3, 4})
	assert.InDelta(t, 1.75, q.Q1, 1e-12)
	assert.InDelta(t, 3.25, q.Q3, 1e-12)
	assert.InDelta(t, 1.5, q.IQR, 1e-12)

	single := Quartiles([]float64{9})
	assert.Equal(t, QuartileSet{Q1: 9, Q3: 9, IQR: 0}, single)

	unsorted := Quartiles([]float64{4, 1, 3, 2})
	assert.InDelta(t, 1.75, unsorted.Q1, 1e-12)
}

func TestQuartileOrdering(t *testing.T) {
	cases := [][]float64{
		{1},
		{5, 5},
		{1, 2, 3, 4, 5},
		{120.5, 80, 80, 300, 45.25, 999, 12},
		{0.01, 1000, 3, 3, 3, 7},
	}
	for _, xs := range cases {
		s, ok := Describe(xs)
		require.True(t, ok)
		assert.LessOrEqual(t, s.Min, s.Q1, "xs=%v", xs)
		assert.LessOrEqual(t, s.Q1, s.Median, "xs=%v", xs)
		assert.LessOrEqual(t, s.Median, s.Q3, "xs=%v", xs)
		assert.LessOrEqual(t, s.Q3, s.Max, "xs=%v", xs)
	}
}

func TestModeOf(t *testing.T) {
	assert.Equal(t, NoMode, ModeOf([]float64{1, 2, 3}).Kind)

	m := ModeOf([]float64{1, 1, 2})
	v, ok := m.Single()
	require.True(t, ok)
	assert.Equal(t, NumberValue(1), v)

	tied := ModeOf([]float64{2, 2, 1, 1})
	assert.Equal(t, TiedModes, tied.Kind)
	assert.Equal(t, []Value{NumberValue(1), NumberValue(2)}, tied.Values)

	// a lone value is "all unique"
	assert.Equal(t, NoMode, ModeOf([]float64{5}).Kind)

	same := ModeOf([]float64{5, 5, 5})
	assert.Equal(t, SingleMode, same.Kind)
}

func TestModeOfStrings(t *testing.T) {
	assert.Equal(t, NoMode, ModeOfStrings([]string{"a", "b"}).Kind)

	single := ModeOfStrings([]string{"Crack", "Crack", "Dent"})
	v, ok := single.Single()
	require.True(t, ok)
	assert.Equal(t, TextValue("Crack"), v)

	mixed := ModeOfStrings([]string{"Dent", "10", "Dent", "10", "2.5", "2.5", "x"})
	assert.Equal(t, TiedModes, mixed.Kind)
	assert.Equal(t, []Value{NumberValue(2.5), NumberValue(10), TextValue("Dent")}, mixed.Values)
}

func TestModeJSON(t *testing.T) {
	cases := []struct {
		name string
		in   Mode
		want string
	}{
		{"none", Mode{Kind: NoMode}, "null"},
		{"single", ModeOf([]float64{1, 1, 2}), "1"},
		{"tied", ModeOf([]float64{1, 1, 2, 2}), "[1,2]"},
		{"text", ModeOfStrings([]string{"a", "a", "b", "b", "c"}), `["a","b"]`},
	}
	for _, c := range cases {
		b, err := json.Marshal(c.in)
		require.NoError(t, err, c.name)
		assert.JSONEq(t, c.want, string(b), c.name)
	}
}

func TestDescribeIsIdempotent(t *testing.T) {
	xs := []float64{150, 75.5, 300, 75.5, 980, 12.25}
	a, ok := Describe(xs)
	require.True(t, ok)
	b, _ := Describe(xs)
	assert.Equal(t, *a, *b)
	assert.Equal(t, math.Float64bits(a.StdDev), math.Float64bits(b.StdDev))
}

func TestFrequencyDistribution(t *testing.T) {
	dist := FrequencyDistribution([]string{"Crack", "Dent", "Crack", "Scratch", "Crack"})
	assert.Equal(t, map[string]int{"Crack": 3, "Dent": 1, "Scratch": 1}, dist)

	nums := FrequencyDistribution([]float64{1, 1, 2})
	assert.Equal(t, 2, nums[1])

	top := TopCategories(dist, 2)
	assert.Equal(t, []CategoryCount{{Value: "Crack", Count: 3}, {Value: "Dent", Count: 1}}, top)
	assert.Len(t, TopCategories(dist, 0), 3)
}

func TestHistogramSingleValue(t *testing.T) {
	bins := Histogram([]float64{5, 5, 5}, 10)
	require.Len(t, bins, 1)
	assert.Equal(t, "5.00", bins[0].Label)
	assert.Equal(t, 3, bins[0].Count)
}

func TestHistogramTenBins(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	bins := Histogram(xs, 10)
	require.Len(t, bins, 10)
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 10, total)
	assert.Equal(t, "1.00-1.90", bins[0].Label)
	assert.Equal(t, "9.10-10.00", bins[9].Label)
	for i, b := range bins {
		assert.Equal(t, 1, b.Count, "bin %d (%s)", i, b.Label)
	}
	for i := 1; i < len(bins); i++ {
		assert.Less(t, bins[i-1].Lower, bins[i].Lower)
	}
}

func TestHistogramZeroBinSize(t *testing.T) {
	// the range is positive but too small to split into bins
	bins := Histogram([]float64{0, 5e-324}, 10)
	require.Len(t, bins, 1)
	assert.Equal(t, "0.00 - 0.00", bins[0].Label)
	assert.Equal(t, 2, bins[0].Count)
}

func TestHistogramClampsToLastBin(t *testing.T) {
	cases := []struct {
		lo, hi float64
		bins   int
	}{
		{0, 0.3, 3},
		{0.1, 0.7, 3},
		{0.1, 0.7, 7},
		{1, 10, 10},
		{-2.5, 1e-9, 10},
		{3.3, 1e15, 9},
	}
	for _, c := range cases {
		below := math.Nextafter(c.hi, c.lo)
		bins := Histogram([]float64{c.lo, below, c.hi}, c.bins)
		require.Len(t, bins, c.bins)
		assert.Equal(t, 1, bins[0].Count, "lo=%v hi=%v", c.lo, c.hi)
		assert.Equal(t, 2, bins[c.bins-1].Count, "lo=%v hi=%v", c.lo, c.hi)
		total := 0
		for _, b := range bins {
			total += b.Count
		}
		assert.Equal(t, 3, total)
	}
}

func TestHistogramDefaultsBins(t *testing.T) {
	bins := Histogram([]float64{0, 100}, 0)
	require.Len(t, bins, DefaultBins)
	assert.Equal(t, 1, bins[0].Count)
	assert.Equal(t, 1, bins[DefaultBins-1].Count)
}
