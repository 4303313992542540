package evo

import (
	"fmt"
	"sort"
)

// StrategyParams carries the tunables read by the named strategy constructors.
type StrategyParams struct {
	EliteSelectCount int
	TournamentSize   int
	CrossoverRate    float64
	TossProbability  float64
	MutationRate     float64
	MutationSigma    float64
}

var (
	selectorFactories = map[string]func(StrategyParams) Selector{
		"elite":      func(p StrategyParams) Selector { return EliteSelector{Count: p.EliteSelectCount} },
		"tournament": func(p StrategyParams) Selector { return TournamentSelector{Size: p.TournamentSize} },
		"roulette":   func(StrategyParams) Selector { return RouletteSelector{} },
	}
	crossoverFactories = map[string]func(StrategyParams) Crossover{
		"uniform": func(p StrategyParams) Crossover {
			return UniformCrossover{Rate: p.CrossoverRate, TossProbability: p.TossProbability}
		},
		"single_point": func(p StrategyParams) Crossover { return SinglePointCrossover{Rate: p.CrossoverRate} },
	}
	mutationFactories = map[string]func(StrategyParams) Mutation{
		"substitute": func(p StrategyParams) Mutation { return SubstituteMutation{Rate: p.MutationRate} },
		"gaussian":   func(p StrategyParams) Mutation { return GaussianMutation{Rate: p.MutationRate, Sigma: p.MutationSigma} },
	}
)

func SelectorFromName(name string, params StrategyParams) (Selector, error) {
	factory, ok := selectorFactories[name]
	if !ok {
		return nil, fmt.Errorf("unsupported selection: %s (want one of %v)", name, SelectorNames())
	}
	return factory(params), nil
}

func CrossoverFromName(name string, params StrategyParams) (Crossover, error) {
	factory, ok := crossoverFactories[name]
	if !ok {
		return nil, fmt.Errorf("unsupported crossover: %s (want one of %v)", name, CrossoverNames())
	}
	if err := validateRate("crossover rate", params.CrossoverRate); err != nil {
		return nil, err
	}
	if err := validateRate("toss probability", params.TossProbability); err != nil {
		return nil, err
	}
	return factory(params), nil
}

func MutationFromName(name string, params StrategyParams) (Mutation, error) {
	factory, ok := mutationFactories[name]
	if !ok {
		return nil, fmt.Errorf("unsupported mutation: %s (want one of %v)", name, MutationNames())
	}
	if err := validateRate("mutation rate", params.MutationRate); err != nil {
		return nil, err
	}
	return factory(params), nil
}

func SelectorNames() []string {
	return sortedKeys(selectorFactories)
}

func CrossoverNames() []string {
	return sortedKeys(crossoverFactories)
}

func MutationNames() []string {
	return sortedKeys(mutationFactories)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
