package demo

import (
	"fmt"
	"math/rand"
	"sort"

	"dose/internal/genetic"
)

// TournamentSelector samples candidates from the fittest part of a ranked
// slice and picks the best fitness among them.
type TournamentSelector struct {
	// PoolSize limits sampling to the first PoolSize ranked organisms. Zero
	// samples the whole slice.
	PoolSize       int
	TournamentSize int
}

func (s TournamentSelector) Pick(rng *rand.Rand, ranked []*genetic.Organism) (*genetic.Organism, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if len(ranked) == 0 {
		return nil, fmt.Errorf("no candidates")
	}

	poolSize := s.PoolSize
	if poolSize <= 0 || poolSize > len(ranked) {
		poolSize = len(ranked)
	}
	tournamentSize := s.TournamentSize
	if tournamentSize <= 0 {
		tournamentSize = 3
	}

	best := ranked[rng.Intn(poolSize)]
	for i := 1; i < tournamentSize; i++ {
		candidate := ranked[rng.Intn(poolSize)]
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best, nil
}

// rank returns agents ordered by fitness, fittest first. Ties keep
// population order.
func rank(agents []*genetic.Organism) []*genetic.Organism {
	ranked := append([]*genetic.Organism(nil), agents...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Fitness > ranked[j].Fitness
	})
	return ranked
}
