// Package simcalls is the default set of collaborators a run uses to spawn,
// place, interpret, report on and persist its populations and world.
package simcalls

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math/rand"
	"path/filepath"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"dose/internal/config"
	"dose/internal/genetic"
	"dose/internal/hooks"
	"dose/internal/model"
	"dose/internal/ragaraja"
	"dose/internal/results"
	"dose/internal/storage"
	"dose/internal/world"
)

// BloodStatus is the status key holding an organism's latest interpreter outputs.
const BloodStatus = "blood"

type Config struct {
	// Store receives buried worlds, population snapshots and run records.
	// Persistence is skipped when nil.
	Store  storage.Store
	Logger *zap.Logger
	Now    func() time.Time
}

// Calls implements the run collaborators on top of the results files and a
// Store. A Calls value serves one run at a time.
type Calls struct {
	store  storage.Store
	logger *zap.Logger
	now    func() time.Time
	rng    *rand.Rand
}

func New(cfg Config) *Calls {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Calls{store: cfg.Store, logger: logger, now: now}
}

func (c *Calls) random(cfg *config.RunConfiguration) *rand.Rand {
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(cfg.Seed))
	}
	return c.rng
}

// SpawnPopulations builds one population per configured name. The random
// source used by the rest of the run is seeded here.
func (c *Calls) SpawnPopulations(cfg *config.RunConfiguration) (genetic.Populations, error) {
	c.rng = rand.New(rand.NewSource(cfg.Seed))

	initial := cfg.InitialChromosome
	if len(initial) == 0 {
		initial = slices.Repeat([]string{"0"}, cfg.ChromosomeSize)
	}
	pops := make(genetic.Populations, len(cfg.PopulationNames))
	for _, name := range cfg.PopulationNames {
		pop, err := genetic.NewPopulation(name, cfg.PopulationSize, cfg.GenomeSize, initial, cfg.ChromosomeBases)
		if err != nil {
			return nil, fmt.Errorf("spawn %s: %w", name, err)
		}
		pops[name] = pop
	}
	c.logger.Info("populations spawned",
		zap.Strings("populations", pops.Names()),
		zap.Int("size", cfg.PopulationSize),
	)
	return pops, nil
}

// Deploy places every agent of the named population into w according to the
// configured deployment code and records the occupancy.
func (c *Calls) Deploy(cfg *config.RunConfiguration, pops genetic.Populations, name string, w *world.World) error {
	pop, err := pops.Lookup(name)
	if err != nil {
		return err
	}

	switch cfg.DeploymentCode {
	case config.DeployUserScheme:
		if cfg.DeploymentScheme == nil {
			return &config.ConfigurationError{Field: "deployment_scheme", Reason: "required for deployment code 0"}
		}
		if err := cfg.DeploymentScheme(pops, name, w); err != nil {
			return err
		}
	case config.DeploySingleCell:
		for _, agent := range pop.Agents {
			agent.Location = world.Location{}
		}
	case config.DeployRandom:
		rng := c.random(cfg)
		for _, agent := range pop.Agents {
			agent.Location = world.Location{X: rng.Intn(w.X), Y: rng.Intn(w.Y), Z: rng.Intn(w.Z)}
		}
	case config.DeployEven:
		locations := w.Locations()
		for i, agent := range pop.Agents {
			agent.Location = locations[i%len(locations)]
		}
	case config.DeployCentre:
		centre := w.Centre()
		for _, agent := range pop.Agents {
			agent.Location = centre
		}
	default:
		return &config.ConfigurationError{Field: "deployment_code", Reason: fmt.Sprintf("unknown code %d", cfg.DeploymentCode)}
	}

	for _, agent := range pop.Agents {
		if err := w.Place(agent.Location); err != nil {
			return fmt.Errorf("deploy %s agent %s: %w", name, agent.ID, err)
		}
	}
	c.logger.Debug("population deployed",
		zap.String("population", name),
		zap.Int("code", cfg.DeploymentCode),
		zap.Int("agents", len(pop.Agents)),
	)
	return nil
}

// EcoCellIterator applies fn to every cell of w in x, y, z ascending order.
func (c *Calls) EcoCellIterator(w *world.World, _ *config.RunConfiguration, fn world.CellFunc) error {
	return w.EachCell(func(x, y, z int) error {
		return fn(w, x, y, z)
	})
}

// InterpretChromosome runs every live agent's chromosomes against the local
// input of the cell it stands in. Outputs go to the cell's temporary output
// and to the agent's blood status. Chromosomes with unbalanced loops produce
// no output. With clean_cell set, occupied cells drop their temporary input
// and output first.
func (c *Calls) InterpretChromosome(cfg *config.RunConfiguration, pops genetic.Populations, name string, w *world.World) error {
	if !cfg.InterpretChromosome {
		return nil
	}
	pop, err := pops.Lookup(name)
	if err != nil {
		return err
	}

	alive := pop.Alive()
	for _, agent := range alive {
		if !w.Contains(agent.Location) {
			return fmt.Errorf("interpret agent %s at %s: %w", agent.ID, agent.Location, world.ErrOutOfBounds)
		}
		if cfg.CleanCell {
			w.At(agent.Location).ClearTemporary()
		}
	}

	machine := ragaraja.New(cfg.MaxTapeLength, cfg.MaxCodon)
	for _, agent := range alive {
		cell := w.At(agent.Location)
		var blood []float64
		for _, chromosome := range agent.Genome {
			result, err := machine.Interpret(chromosome.String(), cell.LocalInput)
			if errors.Is(err, ragaraja.ErrUnbalancedLoop) {
				// A malformed program emits nothing.
				continue
			}
			if err != nil {
				return fmt.Errorf("interpret agent %s: %w", agent.ID, err)
			}
			blood = append(blood, result.Outputs...)
		}
		cell.TemporaryOutput = append(cell.TemporaryOutput, blood...)
		agent.SetStatus(BloodStatus, blood)
	}
	return nil
}

// Step advances one population by a generation: every agent's mutation
// scheme, then the population controls, fitness, mating and events hooks in
// that order. The generation counter and agent ages advance only when every
// hook succeeded. When a hook fails the population is restored to its state
// before the step.
func Step(h hooks.Hooks, pops genetic.Populations, name string) error {
	pop, err := pops.Lookup(name)
	if err != nil {
		return err
	}
	snapshot := pop.Clone()
	if err := lifecycle(h, pops, name, pop); err != nil {
		pops[name] = snapshot
		return err
	}

	// Hooks may have replaced the population.
	pop, err = pops.Lookup(name)
	if err != nil {
		return err
	}
	pop.Generation++
	for _, agent := range pop.Agents {
		agent.Age++
	}
	return nil
}

func lifecycle(h hooks.Hooks, pops genetic.Populations, name string, pop *genetic.Population) error {
	for _, agent := range pop.Agents {
		if err := h.MutationScheme(agent); err != nil {
			return err
		}
	}
	for _, hook := range []func(genetic.Populations, string) error{
		h.PrepopulationControl,
		h.Fitness,
		h.Mating,
		h.PostpopulationControl,
		h.GenerationEvents,
	} {
		if err := hook(pops, name); err != nil {
			return err
		}
	}
	return nil
}

// ReportGeneration steps the population, then writes its report when the
// generation is a multiple of the print frequency and snapshots it into the
// store when the database logging frequency divides the generation.
func (c *Calls) ReportGeneration(ctx context.Context, cfg *config.RunConfiguration, pops genetic.Populations, name string, h hooks.Hooks, generation int) error {
	if err := Step(h, pops, name); err != nil {
		return err
	}

	if generation%cfg.PrintFrequency == 0 {
		report, err := h.PopulationReport(pops, name)
		if err != nil {
			return err
		}
		if err := results.AppendReport(cfg.Directory, name, generation, report); err != nil {
			return fmt.Errorf("append report: %w", err)
		}
	}

	if c.store == nil || cfg.DatabaseLoggingFrequency <= 0 || generation%cfg.DatabaseLoggingFrequency != 0 {
		return nil
	}
	pop, err := pops.Lookup(name)
	if err != nil {
		return err
	}
	agents, err := json.Marshal(pop.Agents)
	if err != nil {
		return fmt.Errorf("encode population %s: %w", name, err)
	}
	return c.store.SavePopulation(ctx, model.PopulationRecord{
		VersionedRecord: storage.Versioned(),
		RunID:           cfg.RunID,
		Name:            name,
		Generation:      generation,
		Agents:          agents,
	})
}

// BuryWorld stores a snapshot of w when the generation is a multiple of the
// burial frequency. A zero frequency or a missing store disables burial.
func (c *Calls) BuryWorld(ctx context.Context, cfg *config.RunConfiguration, w *world.World, name string, generation int) error {
	if c.store == nil || cfg.EcoBuriedFrequency <= 0 || generation%cfg.EcoBuriedFrequency != 0 {
		return nil
	}
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode world: %w", err)
	}
	if err := c.store.SaveWorld(ctx, model.WorldRecord{
		VersionedRecord: storage.Versioned(),
		RunID:           cfg.RunID,
		Population:      name,
		Generation:      generation,
		World:           data,
	}); err != nil {
		return err
	}
	c.logger.Debug("world buried",
		zap.String("population", name),
		zap.Int("generation", generation),
		zap.String("size", humanize.Bytes(uint64(len(data)))),
	)
	return nil
}

// WriteParameters starts the population's result file.
func (c *Calls) WriteParameters(cfg *config.RunConfiguration, name string) error {
	return results.WriteParameters(cfg, name)
}

// CloseResults finishes the population's result file, records it in the run
// index and updates the run record in the store.
func (c *Calls) CloseResults(ctx context.Context, cfg *config.RunConfiguration, name string) error {
	end := c.now().UTC()
	if err := results.Close(cfg, name, end); err != nil {
		return err
	}
	if err := results.AppendRunIndex(filepath.Dir(cfg.Directory), results.RunIndexEntry{
		RunID:          cfg.RunID,
		SimulationName: cfg.SimulationName,
		Population:     name,
		Directory:      cfg.Directory,
		Generations:    cfg.MaximumGenerations,
		StartedAtUTC:   cfg.StartingTime.Format(time.RFC3339),
		FinishedAtUTC:  end.Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("update run index: %w", err)
	}
	if c.store == nil {
		return nil
	}

	run, ok, err := c.store.GetRun(ctx, cfg.RunID)
	if err != nil {
		return err
	}
	if !ok {
		run = model.RunRecord{
			RunID:          cfg.RunID,
			SimulationName: cfg.SimulationName,
			Directory:      cfg.Directory,
			StartedAt:      cfg.StartingTime,
		}
	}
	run.VersionedRecord = storage.Versioned()
	run.Generations = maps.Clone(run.Generations)
	if run.Generations == nil {
		run.Generations = make(map[string]int)
	}
	run.Generations[name] = cfg.MaximumGenerations
	run.FinishedAt = end
	return c.store.SaveRun(ctx, run)
}

// ActivateVersion selects the interpreter dialect for the run.
func (c *Calls) ActivateVersion(version string) error {
	return ragaraja.ActivateVersion(version)
}
