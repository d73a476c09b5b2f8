package hooks

import (
	"dose/internal/genetic"
	"dose/internal/world"
)

// Unimplemented fails every hook with a CapabilityError and leaves its
// arguments alone. Embed it in a simulation and override what the
// simulation needs; anything left over fails the run on first use.
type Unimplemented struct{}

var _ Hooks = Unimplemented{}

func unimplemented(capability string) error {
	return &CapabilityError{Capability: capability}
}

func (Unimplemented) MutationScheme(*genetic.Organism) error {
	return unimplemented(CapMutationScheme)
}

func (Unimplemented) PrepopulationControl(genetic.Populations, string) error {
	return unimplemented(CapPrepopulationControl)
}

func (Unimplemented) Fitness(genetic.Populations, string) error {
	return unimplemented(CapFitness)
}

func (Unimplemented) Mating(genetic.Populations, string) error {
	return unimplemented(CapMating)
}

func (Unimplemented) PostpopulationControl(genetic.Populations, string) error {
	return unimplemented(CapPostpopulationControl)
}

func (Unimplemented) GenerationEvents(genetic.Populations, string) error {
	return unimplemented(CapGenerationEvents)
}

func (Unimplemented) PopulationReport(genetic.Populations, string) (string, error) {
	return "", unimplemented(CapPopulationReport)
}

func (Unimplemented) OrganismMovement(genetic.Populations, string, *world.World) error {
	return unimplemented(CapOrganismMovement)
}

func (Unimplemented) OrganismLocation(genetic.Populations, string, *world.World) error {
	return unimplemented(CapOrganismLocation)
}

func (Unimplemented) Ecoregulate(*world.World) error {
	return unimplemented(CapEcoregulate)
}

func (Unimplemented) UpdateEcology(*world.World, int, int, int) error {
	return unimplemented(CapUpdateEcology)
}

func (Unimplemented) UpdateLocal(*world.World, int, int, int) error {
	return unimplemented(CapUpdateLocal)
}

func (Unimplemented) Report(*world.World) error {
	return unimplemented(CapReport)
}

func (Unimplemented) DeploymentScheme(genetic.Populations, string, *world.World) error {
	return unimplemented(CapDeploymentScheme)
}
