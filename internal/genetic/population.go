package genetic

import (
	"fmt"
	"sort"

	"dose/internal/world"
)

// Population is a named, ordered collection of organisms.
type Population struct {
	Name       string      `json:"name"`
	Agents     []*Organism `json:"agents"`
	Generation int         `json:"generation"`
}

// Populations maps population names to populations.
type Populations map[string]*Population

// Names returns population names in ascending order, which is the order a
// run processes them in.
func (p Populations) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named population or an error naming the missing key.
func (p Populations) Lookup(name string) (*Population, error) {
	pop, ok := p[name]
	if !ok || pop == nil {
		return nil, fmt.Errorf("population %q not found", name)
	}
	return pop, nil
}

// NewPopulation builds size organisms, each carrying genomeSize copies of the
// initial chromosome.
func NewPopulation(name string, size, genomeSize int, initial []string, bases []string) (*Population, error) {
	if name == "" {
		return nil, fmt.Errorf("population name is required")
	}
	if size < 0 {
		return nil, fmt.Errorf("population size must be >= 0")
	}
	if genomeSize <= 0 {
		return nil, fmt.Errorf("genome size must be > 0")
	}

	template := make([]*Chromosome, genomeSize)
	for i := range template {
		template[i] = NewChromosome(initial, bases)
	}
	agents := make([]*Organism, size)
	for i := range agents {
		agents[i] = NewOrganism(template)
		agents[i].Deme = name
	}
	return &Population{Name: name, Agents: agents}, nil
}

// Clone copies the population and its organisms, keeping organism ids.
func (p *Population) Clone() *Population {
	out := &Population{Name: p.Name, Generation: p.Generation}
	if p.Agents != nil {
		out.Agents = make([]*Organism, len(p.Agents))
		for i, agent := range p.Agents {
			out.Agents[i] = agent.copy()
		}
	}
	return out
}

// Locations returns the location of every agent in population order.
func (p *Population) Locations() []world.Location {
	out := make([]world.Location, len(p.Agents))
	for i, agent := range p.Agents {
		out[i] = agent.Location
	}
	return out
}

// Alive returns the agents still marked alive, in population order.
func (p *Population) Alive() []*Organism {
	out := make([]*Organism, 0, len(p.Agents))
	for _, agent := range p.Agents {
		if agent.Alive {
			out = append(out, agent)
		}
	}
	return out
}
