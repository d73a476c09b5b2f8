// Package dose is the public API for running digital organism simulations.
package dose

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dose/internal/config"
	"dose/internal/filter"
	"dose/internal/genetic"
	"dose/internal/hooks"
	"dose/internal/orchestrator"
	"dose/internal/ragaraja"
	"dose/internal/results"
	"dose/internal/simcalls"
	"dose/internal/storage"
	"dose/internal/world"
)

type (
	Hooks              = hooks.Hooks
	Unimplemented      = hooks.Unimplemented
	CapabilityError    = hooks.CapabilityError
	Organism           = genetic.Organism
	Chromosome         = genetic.Chromosome
	Population         = genetic.Population
	Populations        = genetic.Populations
	World              = world.World
	Cell               = world.Cell
	Location           = world.Location
	RunConfiguration   = config.RunConfiguration
	ConfigurationError = config.ConfigurationError
	ConversionError    = filter.ConversionError
	Condition          = filter.Condition
	PhaseError         = orchestrator.PhaseError
	Summary            = orchestrator.Summary
	RunIndexEntry      = results.RunIndexEntry
)

var ErrUnimplementedCapability = hooks.ErrUnimplementedCapability

const defaultDBPath = "dose.db"

type Options struct {
	StoreKind string
	DBPath    string
	Logger    *zap.Logger
}

type Client struct {
	store  storage.Store
	logger *zap.Logger
}

type RunItem struct {
	RunID          string
	SimulationName string
	Directory      string
	StartedAt      time.Time
	FinishedAt     time.Time
	Generations    map[string]int
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store, logger: logger}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// Simulate runs h with the given simulation parameters.
func (c *Client) Simulate(ctx context.Context, params map[string]any, h Hooks) (Summary, error) {
	cfg, err := config.FromMap(params)
	if err != nil {
		return Summary{}, err
	}
	return c.SimulateConfig(ctx, cfg, h)
}

// SimulateConfig runs h with an already loaded configuration.
func (c *Client) SimulateConfig(ctx context.Context, cfg *RunConfiguration, h Hooks) (Summary, error) {
	if err := c.Init(ctx); err != nil {
		return Summary{}, err
	}
	o, err := orchestrator.New(orchestrator.Config{
		Runtime: simcalls.New(simcalls.Config{Store: c.store, Logger: c.logger}),
		Logger:  c.logger,
	})
	if err != nil {
		return Summary{}, err
	}
	run, err := o.SetupConfig(cfg, h)
	if err != nil {
		return Summary{}, err
	}
	return o.Execute(ctx, run)
}

// Runs lists stored run records, newest first.
func (c *Client) Runs(ctx context.Context, limit int) ([]RunItem, error) {
	if limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	records, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	out := make([]RunItem, 0, len(records))
	for _, r := range records {
		out = append(out, RunItem{
			RunID:          r.RunID,
			SimulationName: r.SimulationName,
			Directory:      r.Directory,
			StartedAt:      r.StartedAt,
			FinishedAt:     r.FinishedAt,
			Generations:    r.Generations,
		})
	}
	return out, nil
}

// BuriedGenerations lists the generations whose world was buried for a
// population of a run.
func (c *Client) BuriedGenerations(ctx context.Context, runID, population string) ([]int, error) {
	if runID == "" {
		return nil, errors.New("run id is required")
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c.store.ListWorldGenerations(ctx, runID, population)
}

// BuriedWorld restores the world buried at one generation.
func (c *Client) BuriedWorld(ctx context.Context, runID, population string, generation int) (*World, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	record, ok, err := c.store.GetWorld(ctx, runID, population, generation)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no world buried for run %s population %s generation %d", runID, population, generation)
	}
	var w World
	if err := json.Unmarshal(record.World, &w); err != nil {
		return nil, fmt.Errorf("decode world: %w", err)
	}
	return &w, nil
}

// PopulationSnapshot returns the organisms of a population as logged at one
// generation. Snapshots exist for the generations divisible by
// database_logging_frequency.
func (c *Client) PopulationSnapshot(ctx context.Context, runID, population string, generation int) ([]*Organism, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	record, ok, err := c.store.GetPopulation(ctx, runID, population, generation)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no snapshot for run %s population %s generation %d", runID, population, generation)
	}
	var agents []*Organism
	if err := json.Unmarshal(record.Agents, &agents); err != nil {
		return nil, fmt.Errorf("decode population: %w", err)
	}
	return agents, nil
}

// LoadConfig reads and validates a configuration file with environment overrides.
func LoadConfig(path string) (*RunConfiguration, error) {
	return config.Load(path)
}

// Validate checks simulation parameters without running anything.
func Validate(params map[string]any) error {
	_, err := config.FromMap(params)
	return err
}

// RunIndex lists the per-population entries recorded under a Simulations
// directory, newest first.
func RunIndex(simulationsDir string) ([]RunIndexEntry, error) {
	return results.ListRunIndex(simulationsDir)
}

// RagarajaVersions lists the interpreter dialects a configuration may select.
func RagarajaVersions() []string {
	return ragaraja.Versions()
}

func Exact(v any) Condition { return filter.Exact(v) }

func Range(min, max float64) Condition { return filter.Range(min, max) }

func FilterDeme(name string, agents []*Organism) []*Organism { return filter.Deme(name, agents) }

func FilterGender(value string, agents []*Organism) []*Organism { return filter.Gender(value, agents) }

func FilterLocation(loc Location, agents []*Organism) []*Organism {
	return filter.Location(loc, agents)
}

func FilterAge(min, max float64, agents []*Organism) []*Organism { return filter.Age(min, max, agents) }

func FilterVitality(min, max float64, agents []*Organism) []*Organism {
	return filter.Vitality(min, max, agents)
}

func FilterStatus(key string, cond Condition, agents []*Organism) ([]*Organism, error) {
	return filter.Status(key, cond, agents)
}
