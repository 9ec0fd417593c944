package stats

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ValueKind tags a Value as numeric or textual.
type ValueKind int

const (
	Number ValueKind = iota
	Text
)

// Value is a single mode value: either a number or a piece of text.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
}

// NumberValue wraps a float64.
func NumberValue(f float64) Value { return Value{Kind: Number, Num: f} }

// TextValue wraps a string.
func TextValue(s string) Value { return Value{Kind: Text, Str: s} }

func (v Value) String() string {
	if v.Kind == Number {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Str
}

// MarshalJSON renders numbers as JSON numbers and text as JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == Number {
		return json.Marshal(v.Num)
	}
	return json.Marshal(v.Str)
}

// ModeKind distinguishes the three possible mode outcomes.
type ModeKind int

const (
	// NoMode means every value is distinct.
	NoMode ModeKind = iota
	// SingleMode means exactly one value has the highest frequency.
	SingleMode
	// TiedModes means several, but not all, values share the highest frequency.
	TiedModes
)

// Mode is the result of a mode computation.
type Mode struct {
	Kind   ModeKind
	Values []Value
}

// Single returns the value of a SingleMode result.
func (m Mode) Single() (Value, bool) {
	if m.Kind != SingleMode || len(m.Values) != 1 {
		return Value{}, false
	}
	return m.Values[0], true
}

func (m Mode) String() string {
	switch m.Kind {
	case SingleMode, TiedModes:
		parts := make([]string, len(m.Values))
		for i, v := range m.Values {
			parts[i] = v.String()
		}
		return strings.Join(parts, ", ")
	default:
		return "N/A"
	}
}

// MarshalJSON encodes NoMode as null, a single mode as a scalar and tied
// modes as an array.
func (m Mode) MarshalJSON() ([]byte, error) {
	switch m.Kind {
	case SingleMode:
		if v, ok := m.Single(); ok {
			return json.Marshal(v)
		}
	case TiedModes:
		return json.Marshal(m.Values)
	}
	return []byte("null"), nil
}

// ModeOf computes the mode of a numeric column.
func ModeOf(xs []float64) Mode {
	if len(xs) == 0 {
		return Mode{Kind: NoMode}
	}
	freq := make(map[float64]int, len(xs))
	maxFreq := 0
	for _, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		freq[x]++
		if freq[x] > maxFreq {
			maxFreq = freq[x]
		}
	}
	var modes []float64
	for x, c := range freq {
		if c == maxFreq {
			modes = append(modes, x)
		}
	}
	// All values equally frequent with each one distinct.
	if len(modes) == len(xs) || len(modes) == 0 {
		return Mode{Kind: NoMode}
	}
	sort.Float64s(modes)
	if len(modes) == 1 {
		return Mode{Kind: SingleMode, Values: []Value{NumberValue(modes[0])}}
	}
	vals := make([]Value, len(modes))
	for i, x := range modes {
		vals[i] = NumberValue(x)
	}
	return Mode{Kind: TiedModes, Values: vals}
}

// ModeOfStrings computes the mode of a categorical column. A single winner is
// returned verbatim as Text; tied winners that parse as numbers become Number
// values (ascending, ahead of text values, which keep first-seen order).
func ModeOfStrings(xs []string) Mode {
	if len(xs) == 0 {
		return Mode{Kind: NoMode}
	}
	freq := make(map[string]int, len(xs))
	var order []string
	maxFreq := 0
	for _, s := range xs {
		if _, seen := freq[s]; !seen {
			order = append(order, s)
		}
		freq[s]++
		if freq[s] > maxFreq {
			maxFreq = freq[s]
		}
	}
	var modes []string
	for _, s := range order {
		if freq[s] == maxFreq {
			modes = append(modes, s)
		}
	}
	if len(modes) == len(xs) {
		return Mode{Kind: NoMode}
	}
	if len(modes) == 1 {
		return Mode{Kind: SingleMode, Values: []Value{TextValue(modes[0])}}
	}
	var nums []float64
	var texts []Value
	for _, s := range modes {
		if f, ok := numericLooking(s); ok {
			nums = append(nums, f)
			continue
		}
		texts = append(texts, TextValue(s))
	}
	sort.Float64s(nums)
	vals := make([]Value, 0, len(modes))
	for _, f := range nums {
		vals = append(vals, NumberValue(f))
	}
	vals = append(vals, texts...)
	return Mode{Kind: TiedModes, Values: vals}
}

func numericLooking(s string) (float64, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
