package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type FitnessSummary struct {
	Generations int     `json:"generations"`
	First       float64 `json:"first"`
	Last        float64 `json:"last"`
	Best        float64 `json:"best"`
	// BestGeneration is 1-based; 0 when the series is empty.
	BestGeneration int     `json:"best_generation"`
	Mean           float64 `json:"mean"`
	StdDev         float64 `json:"stddev"`
	Improvement    float64 `json:"improvement"`
}

// SummarizeFitness condenses a best-per-generation series.
func SummarizeFitness(series []float64) FitnessSummary {
	if len(series) == 0 {
		return FitnessSummary{}
	}

	bestIdx := floats.MaxIdx(series)
	out := FitnessSummary{
		Generations:    len(series),
		First:          series[0],
		Last:           series[len(series)-1],
		Best:           series[bestIdx],
		BestGeneration: bestIdx + 1,
		Mean:           stat.Mean(series, nil),
	}
	if len(series) > 1 {
		out.StdDev = stat.StdDev(series, nil)
	}
	out.Improvement = out.Last - out.First
	return out
}

// GoalGeneration returns the first 1-based generation whose best fitness
// reached goal, or -1.
func GoalGeneration(series []float64, goal float64) int {
	for i, value := range series {
		if value >= goal {
			return i + 1
		}
	}
	return -1
}
