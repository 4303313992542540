package evo

// StopCondition is consulted after each generation has been ranked. best is
// the top fitness of that generation and generation counts from 1.
type StopCondition func(best float64, generation int, ranked []ScoredGenome) bool

// FitnessGoal stops once the best fitness reaches goal.
func FitnessGoal(goal float64) StopCondition {
	return func(best float64, _ int, _ []ScoredGenome) bool {
		return best >= goal
	}
}

func GenerationCap(n int) StopCondition {
	return func(_ float64, generation int, _ []ScoredGenome) bool {
		return generation >= n
	}
}

// AnyOf stops when any of conds does. Nil entries are ignored.
func AnyOf(conds ...StopCondition) StopCondition {
	return func(best float64, generation int, ranked []ScoredGenome) bool {
		for _, cond := range conds {
			if cond != nil && cond(best, generation, ranked) {
				return true
			}
		}
		return false
	}
}
