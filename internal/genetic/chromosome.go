// Package genetic holds the organism and population representation that
// simulation hooks operate on.
package genetic

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// DefaultBases are the symbols a chromosome draws from unless configured otherwise.
var DefaultBases = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}

// MutationPoint rewrites single positions, see Chromosome.PointMutation.
const MutationPoint = "point"

// ErrUnknownMutationType is returned by Mutate for a type it does not implement.
var ErrUnknownMutationType = errors.New("unknown mutation type")

// MutationTypes lists the values accepted by Mutate.
func MutationTypes() []string {
	return []string{MutationPoint}
}

// Chromosome is a sequence of bases executed by the instruction interpreter.
type Chromosome struct {
	Sequence []string `json:"sequence"`
	Bases    []string `json:"bases"`
}

func NewChromosome(sequence, bases []string) *Chromosome {
	if len(bases) == 0 {
		bases = DefaultBases
	}
	return &Chromosome{
		Sequence: append([]string(nil), sequence...),
		Bases:    append([]string(nil), bases...),
	}
}

func (c *Chromosome) Clone() *Chromosome {
	return NewChromosome(c.Sequence, c.Bases)
}

// String joins the bases into the text the interpreter reads.
func (c *Chromosome) String() string {
	return strings.Join(c.Sequence, "")
}

// PointMutation replaces each base with a random base with probability rate
// and returns how many positions were rewritten.
func (c *Chromosome) PointMutation(rng *rand.Rand, rate float64) (int, error) {
	if rng == nil {
		return 0, fmt.Errorf("random source is required")
	}
	if rate < 0 || rate > 1 {
		return 0, fmt.Errorf("mutation rate must be in [0, 1], got %f", rate)
	}
	if len(c.Bases) == 0 {
		return 0, errors.New("chromosome has no bases")
	}
	mutated := 0
	for i := range c.Sequence {
		if rng.Float64() < rate {
			c.Sequence[i] = c.Bases[rng.Intn(len(c.Bases))]
			mutated++
		}
	}
	return mutated, nil
}

// Mutate applies the named mutation operator at rate.
func (c *Chromosome) Mutate(rng *rand.Rand, mutationType string, rate float64) (int, error) {
	switch mutationType {
	case MutationPoint:
		return c.PointMutation(rng, rate)
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMutationType, mutationType)
}

// Crossover exchanges the tails of two chromosomes after a random cut point
// and returns the two children. Parents are left untouched.
func Crossover(a, b *Chromosome, rng *rand.Rand) (*Chromosome, *Chromosome, error) {
	if a == nil || b == nil {
		return nil, nil, errors.New("crossover requires two chromosomes")
	}
	if rng == nil {
		return nil, nil, fmt.Errorf("random source is required")
	}
	limit := min(len(a.Sequence), len(b.Sequence))
	cut := 0
	if limit > 0 {
		cut = rng.Intn(limit + 1)
	}

	childA := make([]string, 0, len(b.Sequence))
	childA = append(childA, a.Sequence[:cut]...)
	childA = append(childA, b.Sequence[cut:]...)

	childB := make([]string, 0, len(a.Sequence))
	childB = append(childB, b.Sequence[:cut]...)
	childB = append(childB, a.Sequence[cut:]...)

	return NewChromosome(childA, a.Bases), NewChromosome(childB, b.Bases), nil
}
