package genetic

import (
	"maps"

	"github.com/google/uuid"

	"dose/internal/world"
)

// Organism is one simulated individual.
//
// The attributes every simulation relies on are fields; anything a simulation
// invents lives in Status.
type Organism struct {
	ID       string         `json:"id"`
	Genome   []*Chromosome  `json:"genome"`
	Age      float64        `json:"age"`
	Gender   string         `json:"gender"`
	Deme     string         `json:"deme"`
	Location world.Location `json:"location"`
	Vitality float64        `json:"vitality"`
	Fitness  float64        `json:"fitness"`
	Alive    bool           `json:"alive"`
	Status   map[string]any `json:"status,omitempty"`
}

func NewOrganism(genome []*Chromosome) *Organism {
	chromosomes := make([]*Chromosome, len(genome))
	for i, c := range genome {
		chromosomes[i] = c.Clone()
	}
	return &Organism{
		ID:       uuid.NewString(),
		Genome:   chromosomes,
		Vitality: 100,
		Alive:    true,
		Status:   make(map[string]any),
	}
}

// StatusValue returns the attribute stored under key. Well-known attribute
// names resolve to their fields before Status is consulted.
func (o *Organism) StatusValue(key string) (any, bool) {
	switch key {
	case "id":
		return o.ID, true
	case "age":
		return o.Age, true
	case "gender":
		return o.Gender, true
	case "deme":
		return o.Deme, true
	case "location":
		return o.Location, true
	case "vitality":
		return o.Vitality, true
	case "fitness":
		return o.Fitness, true
	case "alive":
		return o.Alive, true
	}
	v, ok := o.Status[key]
	return v, ok
}

// SetStatus stores an open attribute.
func (o *Organism) SetStatus(key string, value any) {
	if o.Status == nil {
		o.Status = make(map[string]any)
	}
	o.Status[key] = value
}

// Clone copies the organism under a fresh id. Status values are copied
// shallowly.
func (o *Organism) Clone() *Organism {
	out := o.copy()
	out.ID = uuid.NewString()
	return out
}

func (o *Organism) copy() *Organism {
	out := *o
	out.Genome = make([]*Chromosome, len(o.Genome))
	for i, c := range o.Genome {
		out.Genome[i] = c.Clone()
	}
	out.Status = maps.Clone(o.Status)
	if out.Status == nil {
		out.Status = make(map[string]any)
	}
	return &out
}
