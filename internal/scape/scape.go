package scape

import "context"

type Fitness float64

type Trace map[string]any

type Agent interface {
	ID() string
}

// GenomeAgent is an agent whose behaviour is fully described by a real-valued
// genome.
type GenomeAgent interface {
	Agent
	Genes() []float64
}

type Scape interface {
	Name() string
	Evaluate(ctx context.Context, agent Agent) (Fitness, Trace, error)
}
