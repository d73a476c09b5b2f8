// Package hooks defines the capability set a concrete simulation supplies to
// a run.
package hooks

import (
	"errors"
	"fmt"

	"dose/internal/genetic"
	"dose/internal/world"
)

// ErrUnimplementedCapability marks a hook the simulation never provided.
var ErrUnimplementedCapability = errors.New("unimplemented capability")

// CapabilityError names the hook that was called without an implementation.
type CapabilityError struct {
	Capability string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s: %v", e.Capability, ErrUnimplementedCapability)
}

func (e *CapabilityError) Unwrap() error {
	return ErrUnimplementedCapability
}

// Hooks is the full set of simulation-specific behaviour. A run holds one
// Hooks value for its whole lifetime.
type Hooks interface {
	// MutationScheme mutates the chromosomes of one organism in place.
	MutationScheme(org *genetic.Organism) error
	// PrepopulationControl removes or marks agents before mating, e.g. juvenile death.
	PrepopulationControl(pops genetic.Populations, name string) error
	// Fitness stores a fitness value on every agent of the population.
	Fitness(pops genetic.Populations, name string) error
	// Mating selects mates, produces offspring and adds or replaces agents.
	// It owns the progeny count.
	Mating(pops genetic.Populations, name string) error
	// PostpopulationControl removes or marks agents after mating, e.g. senescence.
	PostpopulationControl(pops genetic.Populations, name string) error
	// GenerationEvents applies irregular events such as epidemics.
	GenerationEvents(pops genetic.Populations, name string) error
	// PopulationReport renders the population at the current generation.
	PopulationReport(pops genetic.Populations, name string) (string, error)
	// OrganismMovement relocates agents over short distances. Implementations
	// must update both the agent location and the occupancy of the source and
	// destination cells; World.Move does both counts.
	OrganismMovement(pops genetic.Populations, name string, w *world.World) error
	// OrganismLocation relocates agents over long distances, with the same
	// obligations as OrganismMovement.
	OrganismLocation(pops genetic.Populations, name string, w *world.World) error
	// Ecoregulate modulates the local state of every cell. It must not touch agents.
	Ecoregulate(w *world.World) error
	// UpdateEcology folds the temporary state of cell (x, y, z) into its local
	// state and diffuses it outwards to the neighbours.
	UpdateEcology(w *world.World, x, y, z int) error
	// UpdateLocal pulls the neighbours' local state into cell (x, y, z).
	UpdateLocal(w *world.World, x, y, z int) error
	// Report is called once per cell after movement, each generation.
	Report(w *world.World) error
	// DeploymentScheme chooses the initial Location of every agent when the
	// run uses the user-defined deployment code. Occupancy is recorded by the
	// deploy step afterwards.
	DeploymentScheme(pops genetic.Populations, name string, w *world.World) error
}

// Capability names, in the order Hooks declares them.
const (
	CapMutationScheme        = "mutation_scheme"
	CapPrepopulationControl  = "prepopulation_control"
	CapFitness               = "fitness"
	CapMating                = "mating"
	CapPostpopulationControl = "postpopulation_control"
	CapGenerationEvents      = "generation_events"
	CapPopulationReport      = "population_report"
	CapOrganismMovement      = "organism_movement"
	CapOrganismLocation      = "organism_location"
	CapEcoregulate           = "ecoregulate"
	CapUpdateEcology         = "update_ecology"
	CapUpdateLocal           = "update_local"
	CapReport                = "report"
	CapDeploymentScheme      = "deployment_scheme"
)

// Capabilities lists every hook name.
func Capabilities() []string {
	return []string{
		CapMutationScheme,
		CapPrepopulationControl,
		CapFitness,
		CapMating,
		CapPostpopulationControl,
		CapGenerationEvents,
		CapPopulationReport,
		CapOrganismMovement,
		CapOrganismLocation,
		CapEcoregulate,
		CapUpdateEcology,
		CapUpdateLocal,
		CapReport,
		CapDeploymentScheme,
	}
}
