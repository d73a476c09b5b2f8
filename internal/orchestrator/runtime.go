package orchestrator

import (
	"context"

	"dose/internal/config"
	"dose/internal/genetic"
	"dose/internal/hooks"
	"dose/internal/world"
)

// Runtime is the set of collaborators a run delegates to. simcalls.Calls is
// the default implementation.
type Runtime interface {
	// SpawnPopulations builds the initial populations keyed by name.
	SpawnPopulations(cfg *config.RunConfiguration) (genetic.Populations, error)
	// Deploy places the named population's agents into w.
	Deploy(cfg *config.RunConfiguration, pops genetic.Populations, name string, w *world.World) error
	// EcoCellIterator applies fn to every cell of w once, in x, y, z
	// ascending order.
	EcoCellIterator(w *world.World, cfg *config.RunConfiguration, fn world.CellFunc) error
	// InterpretChromosome executes every agent's chromosomes against the
	// current world and population state.
	InterpretChromosome(cfg *config.RunConfiguration, pops genetic.Populations, name string, w *world.World) error
	// ReportGeneration invokes PopulationReport and persists its output
	// according to the collaborator's print frequency policy.
	ReportGeneration(ctx context.Context, cfg *config.RunConfiguration, pops genetic.Populations, name string, h hooks.Hooks, generation int) error
	// BuryWorld persists the state of w for one generation of a population.
	BuryWorld(ctx context.Context, cfg *config.RunConfiguration, w *world.World, name string, generation int) error
	WriteParameters(cfg *config.RunConfiguration, name string) error
	CloseResults(ctx context.Context, cfg *config.RunConfiguration, name string) error
	// ActivateVersion selects the chromosome interpreter dialect.
	ActivateVersion(version string) error
}
