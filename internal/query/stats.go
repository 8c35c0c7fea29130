package query

import (
	"math"
	"sort"
)

// Stats summarizes the expression of one gene over a set of samples.
type Stats struct {
	// ID is the canonical gene identifier the query token resolved to.
	ID          string  `json:"id"`
	Mean        float64 `json:"mean"`
	Median      float64 `json:"median"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Std         float64 `json:"std"`
	SampleCount int     `json:"sample_count"`
}

// summarize computes summary statistics over a non-empty value slice.
// Std is the population standard deviation, 0 for a single value.
func summarize(id string, values []float64) *Stats {
	s := &Stats{
		ID:          id,
		Min:         values[0],
		Max:         values[0],
		SampleCount: len(values),
	}

	var sum float64
	for _, v := range values {
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean = sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - s.Mean
		sq += d * d
	}
	s.Std = math.Sqrt(sq / float64(len(values)))

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		s.Median = sorted[mid]
	} else {
		s.Median = (sorted[mid-1] + sorted[mid]) / 2
	}

	return s
}
