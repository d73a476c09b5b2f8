// Package demo is a small reference simulation: organisms whose fitness is
// the number of values their chromosomes emit, living on a grid whose cells
// exchange those values with their neighbours.
//
// Population size stays constant. Controls and events mark organisms dead
// and mating refills the dead slots with offspring in place, so hooks that
// have no world to update never change cell occupancy.
package demo

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"strings"

	"dose/internal/config"
	"dose/internal/filter"
	"dose/internal/genetic"
	"dose/internal/hooks"
	"dose/internal/simcalls"
	"dose/internal/world"
)

type Simulation struct {
	Rand     *rand.Rand
	Selector TournamentSelector

	MutationType string
	// MutationRate is the per-base rate applied to every organism each
	// generation.
	MutationRate float64
	// BirthMutationRate is applied once more to offspring genomes.
	BirthMutationRate float64
	// AdultAge separates juveniles from adults.
	AdultAge float64
	// JuvenileVitality is the vitality below which a juvenile dies.
	JuvenileVitality float64
	MaxAge           float64
	EpidemicChance   float64
	EpidemicSeverity float64
	MoveChance       float64
	MigrationChance  float64
	// Decay is the fraction of local input lost at every ecoregulation.
	Decay float64
	// Diffusion is the fraction of a cell's output passed to each neighbour.
	Diffusion float64
	// MaxLocal bounds the values kept in a cell's local input and output.
	MaxLocal int
}

var _ hooks.Hooks = (*Simulation)(nil)

func New(seed int64) *Simulation {
	return &Simulation{
		Rand:             rand.New(rand.NewSource(seed)),
		Selector:         TournamentSelector{TournamentSize: 3},
		MutationType:     genetic.MutationPoint,
		MutationRate:     0.01,
		AdultAge:         3,
		JuvenileVitality: 20,
		MaxAge:           12,
		EpidemicChance:   0.05,
		EpidemicSeverity: 40,
		MoveChance:       0.3,
		MigrationChance:  0.01,
		Decay:            0.1,
		Diffusion:        0.25,
		MaxLocal:         10,
	}
}

// FromConfig builds the simulation with the seed and mutation settings of a
// run configuration.
func FromConfig(cfg *config.RunConfiguration) *Simulation {
	s := New(cfg.Seed)
	s.MutationType = cfg.MutationType
	s.MutationRate = cfg.BackgroundMutation
	s.BirthMutationRate = cfg.AdditionalMutation
	return s
}

// Params are the parameters the demo simulation runs with by default.
func Params() map[string]any {
	return map[string]any{
		"simulation_name":      "demo",
		"world_x":              5,
		"world_y":              5,
		"world_z":              1,
		"population_names":     []string{"pop_01"},
		"population_size":      20,
		"chromosome_size":      30,
		"maximum_generations":  20,
		"ragaraja_version":     "1",
		"print_frequency":      5,
		"max_tape_length":      50,
		"max_codon":            200,
		"deployment_code":      config.DeployUserScheme,
		"eco_buried_frequency": 5,
		"background_mutation":  0.01,
		"additional_mutation":  0.02,
	}
}

func (s *Simulation) MutationScheme(org *genetic.Organism) error {
	return s.mutate(org, s.MutationRate)
}

func (s *Simulation) mutate(org *genetic.Organism, rate float64) error {
	if rate == 0 {
		return nil
	}
	for _, chromosome := range org.Genome {
		if _, err := chromosome.Mutate(s.Rand, s.MutationType, rate); err != nil {
			return err
		}
	}
	return nil
}

// PrepopulationControl kills weak juveniles.
func (s *Simulation) PrepopulationControl(pops genetic.Populations, name string) error {
	pop, err := pops.Lookup(name)
	if err != nil {
		return err
	}
	juveniles := filter.Age(0, s.AdultAge, pop.Alive())
	for _, org := range filter.Vitality(math.Inf(-1), s.JuvenileVitality, juveniles) {
		org.Alive = false
	}
	return nil
}

// Fitness is the number of values an organism emitted in its last
// interpretation.
func (s *Simulation) Fitness(pops genetic.Populations, name string) error {
	pop, err := pops.Lookup(name)
	if err != nil {
		return err
	}
	for _, org := range pop.Alive() {
		blood, _ := org.StatusValue(simcalls.BloodStatus)
		outputs, _ := blood.([]float64)
		org.Fitness = float64(len(outputs))
	}
	return nil
}

// Mating replaces every dead organism with the offspring of two parents from
// the same deme chosen by tournament.
func (s *Simulation) Mating(pops genetic.Populations, name string) error {
	pop, err := pops.Lookup(name)
	if err != nil {
		return err
	}
	ranked := rank(pop.Alive())
	if len(ranked) == 0 {
		return nil
	}

	for i, org := range pop.Agents {
		if org.Alive {
			continue
		}
		mother, err := s.Selector.Pick(s.Rand, ranked)
		if err != nil {
			return err
		}
		father, err := s.Selector.Pick(s.Rand, filter.Deme(mother.Deme, ranked))
		if err != nil {
			return err
		}
		child, err := s.offspring(mother, father)
		if err != nil {
			return err
		}
		child.Location = org.Location
		pop.Agents[i] = child
	}
	return nil
}

func (s *Simulation) offspring(mother, father *genetic.Organism) (*genetic.Organism, error) {
	genome := make([]*genetic.Chromosome, len(mother.Genome))
	for i := range mother.Genome {
		if i >= len(father.Genome) {
			genome[i] = mother.Genome[i].Clone()
			continue
		}
		a, _, err := genetic.Crossover(mother.Genome[i], father.Genome[i], s.Rand)
		if err != nil {
			return nil, err
		}
		genome[i] = a
	}
	child := genetic.NewOrganism(genome)
	child.Deme = mother.Deme
	child.Gender = mother.Gender
	child.SetStatus("parents", []string{mother.ID, father.ID})
	if err := s.mutate(child, s.BirthMutationRate); err != nil {
		return nil, err
	}
	return child, nil
}

// PostpopulationControl kills organisms past MaxAge.
func (s *Simulation) PostpopulationControl(pops genetic.Populations, name string) error {
	pop, err := pops.Lookup(name)
	if err != nil {
		return err
	}
	for _, org := range filter.Age(s.MaxAge, math.Inf(1), pop.Alive()) {
		org.Alive = false
	}
	return nil
}

// GenerationEvents occasionally strikes the population with an epidemic.
func (s *Simulation) GenerationEvents(pops genetic.Populations, name string) error {
	pop, err := pops.Lookup(name)
	if err != nil {
		return err
	}
	if s.Rand.Float64() >= s.EpidemicChance {
		return nil
	}
	for _, org := range pop.Alive() {
		org.Vitality -= s.EpidemicSeverity * s.Rand.Float64()
		if org.Vitality <= 0 {
			org.Vitality = 0
			org.Alive = false
		}
	}
	return nil
}

// PopulationReport writes one tab-separated line per live organism.
func (s *Simulation) PopulationReport(pops genetic.Populations, name string) (string, error) {
	pop, err := pops.Lookup(name)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, org := range pop.Alive() {
		chromosomes := make([]string, len(org.Genome))
		for i, c := range org.Genome {
			chromosomes[i] = c.String()
		}
		fmt.Fprintf(&b, "%s\t%s\t%g\t%g\t%s\n", org.ID, org.Location, org.Age, org.Fitness, strings.Join(chromosomes, "|"))
	}
	return b.String(), nil
}

// OrganismMovement moves live organisms to a random neighbouring cell.
func (s *Simulation) OrganismMovement(pops genetic.Populations, name string, w *world.World) error {
	return s.relocate(pops, name, w, s.MoveChance, w.Neighbours)
}

// OrganismLocation migrates live organisms to any cell of the world.
func (s *Simulation) OrganismLocation(pops genetic.Populations, name string, w *world.World) error {
	all := w.Locations()
	return s.relocate(pops, name, w, s.MigrationChance, func(world.Location) []world.Location {
		return all
	})
}

func (s *Simulation) relocate(pops genetic.Populations, name string, w *world.World, chance float64, targets func(world.Location) []world.Location) error {
	pop, err := pops.Lookup(name)
	if err != nil {
		return err
	}
	for _, org := range pop.Alive() {
		if s.Rand.Float64() >= chance {
			continue
		}
		options := targets(org.Location)
		if len(options) == 0 {
			continue
		}
		to := options[s.Rand.Intn(len(options))]
		if err := w.Move(org.Location, to); err != nil {
			return err
		}
		org.Location = to
	}
	return nil
}

// Ecoregulate decays the local input of every cell.
func (s *Simulation) Ecoregulate(w *world.World) error {
	return w.EachCell(func(x, y, z int) error {
		cell := w.Cell(x, y, z)
		for i := range cell.LocalInput {
			cell.LocalInput[i] *= 1 - s.Decay
		}
		return nil
	})
}

// UpdateEcology folds the cell's temporary output into its local output and
// passes a share of it to the neighbours' temporary input.
func (s *Simulation) UpdateEcology(w *world.World, x, y, z int) error {
	cell := w.Cell(x, y, z)
	if cell == nil {
		return fmt.Errorf("update ecology (%d, %d, %d): %w", x, y, z, world.ErrOutOfBounds)
	}
	produced := cell.TemporaryOutput
	cell.LocalOutput = s.bound(append(cell.LocalOutput, produced...))
	cell.TemporaryOutput = nil
	if len(produced) == 0 {
		return nil
	}

	share := make([]float64, len(produced))
	for i, v := range produced {
		share[i] = v * s.Diffusion
	}
	for _, loc := range w.Neighbours(world.Location{X: x, Y: y, Z: z}) {
		neighbour := w.At(loc)
		neighbour.TemporaryInput = append(neighbour.TemporaryInput, share...)
	}
	return nil
}

// UpdateLocal folds what the neighbours passed in into the cell's local input.
func (s *Simulation) UpdateLocal(w *world.World, x, y, z int) error {
	cell := w.Cell(x, y, z)
	if cell == nil {
		return fmt.Errorf("update local (%d, %d, %d): %w", x, y, z, world.ErrOutOfBounds)
	}
	cell.LocalInput = s.bound(append(cell.LocalInput, cell.TemporaryInput...))
	cell.TemporaryInput = nil
	return nil
}

func (s *Simulation) bound(values []float64) []float64 {
	if s.MaxLocal > 0 && len(values) > s.MaxLocal {
		values = slices.Clone(values[len(values)-s.MaxLocal:])
	}
	return values
}

func (s *Simulation) Report(*world.World) error {
	return nil
}

// DeploymentScheme scatters the population uniformly over the world.
func (s *Simulation) DeploymentScheme(pops genetic.Populations, name string, w *world.World) error {
	pop, err := pops.Lookup(name)
	if err != nil {
		return err
	}
	for _, org := range pop.Agents {
		org.Location = world.Location{X: s.Rand.Intn(w.X), Y: s.Rand.Intn(w.Y), Z: s.Rand.Intn(w.Z)}
	}
	return nil
}
