// Package orchestrator drives a simulation run: setup, then for each
// population a fixed sequence of phases per generation until the configured
// generation count is reached.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"dose/internal/config"
	"dose/internal/genetic"
	"dose/internal/hooks"
	"dose/internal/world"
)

type Config struct {
	Runtime Runtime
	Logger  *zap.Logger
	Now     func() time.Time
	// Getwd supplies the base directory when the run configuration has none.
	Getwd    func() (string, error)
	MkdirAll func(path string, perm os.FileMode) error
}

type Orchestrator struct {
	runtime  Runtime
	logger   *zap.Logger
	now      func() time.Time
	getwd    func() (string, error)
	mkdirAll func(string, os.FileMode) error
}

// Run is a set-up simulation ready to execute.
type Run struct {
	Config      *config.RunConfiguration
	World       *world.World
	Populations genetic.Populations
	Hooks       hooks.Hooks
	// DirectoryCreated is false when the run directory already existed.
	DirectoryCreated bool
}

// Summary reports a completed run.
type Summary struct {
	RunID     string
	Directory string
	// Generations holds the last generation executed per population.
	Generations map[string]int
}

func New(cfg Config) (*Orchestrator, error) {
	if cfg.Runtime == nil {
		return nil, errors.New("runtime is required")
	}
	o := &Orchestrator{
		runtime:  cfg.Runtime,
		logger:   cfg.Logger,
		now:      cfg.Now,
		getwd:    cfg.Getwd,
		mkdirAll: cfg.MkdirAll,
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.getwd == nil {
		o.getwd = os.Getwd
	}
	if o.mkdirAll == nil {
		o.mkdirAll = os.MkdirAll
	}
	return o, nil
}

// Simulate sets up a run from simulation parameters and executes every
// population to completion.
func (o *Orchestrator) Simulate(ctx context.Context, params map[string]any, h hooks.Hooks) (Summary, error) {
	run, err := o.Setup(params, h)
	if err != nil {
		return Summary{}, err
	}
	return o.Execute(ctx, run)
}

// Setup builds the run configuration from params and prepares a run.
func (o *Orchestrator) Setup(params map[string]any, h hooks.Hooks) (*Run, error) {
	cfg, err := config.FromMap(params)
	if err != nil {
		return nil, err
	}
	return o.SetupConfig(cfg, h)
}

// SetupConfig validates cfg, creates the world and the run directory, spawns
// the populations and activates the interpreter dialect. Nothing is spawned
// when the configuration is invalid.
func (o *Orchestrator) SetupConfig(cfg *config.RunConfiguration, h hooks.Hooks) (*Run, error) {
	if h == nil {
		return nil, errors.New("hooks are required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w, err := world.New(cfg.WorldX, cfg.WorldY, cfg.WorldZ)
	if err != nil {
		return nil, err
	}

	cwd := ""
	if cfg.BaseDir == "" {
		if cwd, err = o.getwd(); err != nil {
			return nil, fmt.Errorf("working directory: %w", err)
		}
	}
	cfg.Derive(o.now(), cwd)
	created, err := o.ensureDirectory(cfg.Directory)
	if err != nil {
		return nil, err
	}
	cfg.DeploymentScheme = h.DeploymentScheme

	pops, err := o.runtime.SpawnPopulations(cfg)
	if err != nil {
		return nil, fmt.Errorf("spawn populations: %w", err)
	}
	if err := o.runtime.ActivateVersion(cfg.RagarajaVersion); err != nil {
		return nil, fmt.Errorf("activate ragaraja version: %w", err)
	}

	o.logger.Info("run set up",
		zap.String("run_id", cfg.RunID),
		zap.String("simulation", cfg.SimulationName),
		zap.String("directory", cfg.Directory),
		zap.Bool("directory_created", created),
		zap.Strings("populations", pops.Names()),
	)
	return &Run{
		Config:           cfg,
		World:            w,
		Populations:      pops,
		Hooks:            h,
		DirectoryCreated: created,
	}, nil
}

func (o *Orchestrator) ensureDirectory(dir string) (bool, error) {
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return false, nil
	case err == nil:
		return false, fmt.Errorf("run directory %s is not a directory", dir)
	case !errors.Is(err, os.ErrNotExist):
		return false, fmt.Errorf("run directory: %w", err)
	}
	if err := o.mkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create run directory: %w", err)
	}
	return true, nil
}

// Execute runs every population of run in name order, each to completion,
// on the same world.
func (o *Orchestrator) Execute(ctx context.Context, run *Run) (Summary, error) {
	summary := Summary{
		RunID:       run.Config.RunID,
		Directory:   run.Config.Directory,
		Generations: make(map[string]int, len(run.Populations)),
	}
	for _, name := range run.Populations.Names() {
		last, err := o.runPopulation(ctx, run, name)
		if err != nil {
			return summary, err
		}
		summary.Generations[name] = last
	}
	return summary, nil
}

func (o *Orchestrator) runPopulation(ctx context.Context, run *Run, name string) (int, error) {
	cfg := run.Config
	logger := o.logger.With(zap.String("run_id", cfg.RunID), zap.String("population", name))

	if err := o.runtime.WriteParameters(cfg, name); err != nil {
		return 0, &PhaseError{Population: name, Phase: PhaseWriteParameters, Err: err}
	}
	if err := o.runtime.Deploy(cfg, run.Populations, name, run.World); err != nil {
		return 0, &PhaseError{Population: name, Phase: PhaseDeploy, Err: err}
	}
	logger.Info("population started", zap.Int("generations", cfg.MaximumGenerations))

	last := 0
	for generation := 1; generation <= cfg.MaximumGenerations; generation++ {
		if err := o.generation(ctx, run, name, generation); err != nil {
			return last, err
		}
		last = generation
		logger.Debug("generation complete", zap.Int("generation", generation))
	}

	if err := o.runtime.CloseResults(ctx, cfg, name); err != nil {
		return last, &PhaseError{Population: name, Phase: PhaseClose, Err: err}
	}
	logger.Info("population closed", zap.Int("generations", last))
	return last, nil
}

// generation executes one generation's phases in their fixed order. Every
// cell receives UpdateEcology before any cell receives UpdateLocal.
func (o *Orchestrator) generation(ctx context.Context, run *Run, name string, generation int) error {
	cfg, w, pops, h := run.Config, run.World, run.Populations, run.Hooks
	fail := func(phase Phase, err error) error {
		return &PhaseError{Population: name, Generation: generation, Phase: phase, Err: err}
	}

	if err := h.Ecoregulate(w); err != nil {
		return fail(PhaseEcoregulate, err)
	}
	if err := o.runtime.EcoCellIterator(w, cfg, h.UpdateEcology); err != nil {
		return fail(PhaseUpdateEcology, err)
	}
	if err := o.runtime.EcoCellIterator(w, cfg, h.UpdateLocal); err != nil {
		return fail(PhaseUpdateLocal, err)
	}
	if err := o.runtime.InterpretChromosome(cfg, pops, name, w); err != nil {
		return fail(PhaseInterpret, err)
	}
	if err := o.runtime.ReportGeneration(ctx, cfg, pops, name, h, generation); err != nil {
		return fail(PhaseReport, err)
	}
	if err := h.OrganismMovement(pops, name, w); err != nil {
		return fail(PhaseMovement, err)
	}
	if err := h.OrganismLocation(pops, name, w); err != nil {
		return fail(PhaseLocation, err)
	}
	report := func(w *world.World, _, _, _ int) error {
		return h.Report(w)
	}
	if err := o.runtime.EcoCellIterator(w, cfg, report); err != nil {
		return fail(PhaseCellReport, err)
	}
	if err := o.runtime.BuryWorld(ctx, cfg, w, name, generation); err != nil {
		return fail(PhaseBury, err)
	}
	return nil
}
