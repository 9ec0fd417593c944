package stats

import (
	"fmt"
	"sort"
)

// Key is the set of value types a frequency distribution can count.
type Key interface {
	~string | ~int | ~int64 | ~float64
}

// CategoryCount is one entry of a frequency distribution.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FrequencyDistribution counts the occurrences of each distinct value.
func FrequencyDistribution[T Key](values []T) map[T]int {
	dist := make(map[T]int)
	for _, v := range values {
		dist[v]++
	}
	return dist
}

// TopCategories orders a distribution by count (descending, ties by value)
// and keeps at most n entries; n <= 0 keeps everything.
func TopCategories[T Key](dist map[T]int, n int) []CategoryCount {
	out := make([]CategoryCount, 0, len(dist))
	for k, c := range dist {
		out = append(out, CategoryCount{Value: fmt.Sprint(k), Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
