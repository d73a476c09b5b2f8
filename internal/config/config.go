// Package config holds the run configuration: the parameters a simulation
// author supplies plus the values derived when a run is set up.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"dose/internal/genetic"
	"dose/internal/ragaraja"
	"dose/internal/world"
)

// Deployment codes understood by the default deploy collaborator.
const (
	DeployUserScheme = 0
	DeploySingleCell = 1
	DeployRandom     = 2
	DeployEven       = 3
	DeployCentre     = 4
)

// RunConfiguration is validated once at setup and read-only afterwards.
type RunConfiguration struct {
	// Required.
	WorldX             int    `mapstructure:"world_x" yaml:"world_x" json:"world_x"`
	WorldY             int    `mapstructure:"world_y" yaml:"world_y" json:"world_y"`
	WorldZ             int    `mapstructure:"world_z" yaml:"world_z" json:"world_z"`
	ChromosomeSize     int    `mapstructure:"chromosome_size" yaml:"chromosome_size" json:"chromosome_size"`
	MaximumGenerations int    `mapstructure:"maximum_generations" yaml:"maximum_generations" json:"maximum_generations"`
	SimulationName     string `mapstructure:"simulation_name" yaml:"simulation_name" json:"simulation_name"`
	RagarajaVersion    string `mapstructure:"ragaraja_version" yaml:"ragaraja_version" json:"ragaraja_version"`
	PrintFrequency     int    `mapstructure:"print_frequency" yaml:"print_frequency" json:"print_frequency"`

	PopulationNames          []string `mapstructure:"population_names" yaml:"population_names" json:"population_names"`
	PopulationSize           int      `mapstructure:"population_size" yaml:"population_size" json:"population_size"`
	GenomeSize               int      `mapstructure:"genome_size" yaml:"genome_size" json:"genome_size"`
	ChromosomeBases          []string `mapstructure:"chromosome_bases" yaml:"chromosome_bases" json:"chromosome_bases"`
	BackgroundMutation       float64  `mapstructure:"background_mutation" yaml:"background_mutation" json:"background_mutation"`
	AdditionalMutation       float64  `mapstructure:"additional_mutation" yaml:"additional_mutation" json:"additional_mutation"`
	MutationType             string   `mapstructure:"mutation_type" yaml:"mutation_type" json:"mutation_type"`
	MaxTapeLength            int      `mapstructure:"max_tape_length" yaml:"max_tape_length" json:"max_tape_length"`
	MaxCodon                 int      `mapstructure:"max_codon" yaml:"max_codon" json:"max_codon"`
	InterpretChromosome      bool     `mapstructure:"interpret_chromosome" yaml:"interpret_chromosome" json:"interpret_chromosome"`
	CleanCell                bool     `mapstructure:"clean_cell" yaml:"clean_cell" json:"clean_cell"`
	DeploymentCode           int      `mapstructure:"deployment_code" yaml:"deployment_code" json:"deployment_code"`
	EcoBuriedFrequency       int      `mapstructure:"eco_buried_frequency" yaml:"eco_buried_frequency" json:"eco_buried_frequency"`
	DatabaseFile             string   `mapstructure:"database_file" yaml:"database_file" json:"database_file"`
	DatabaseLoggingFrequency int      `mapstructure:"database_logging_frequency" yaml:"database_logging_frequency" json:"database_logging_frequency"`
	BaseDir                  string   `mapstructure:"base_dir" yaml:"base_dir" json:"base_dir"`
	Seed                     int64    `mapstructure:"seed" yaml:"seed" json:"seed"`

	// Derived at setup.
	RunID             string    `mapstructure:"-" yaml:"run_id" json:"run_id"`
	InitialChromosome []string  `mapstructure:"-" yaml:"-" json:"-"`
	StartingTime      time.Time `mapstructure:"-" yaml:"starting_time" json:"starting_time"`
	Directory         string    `mapstructure:"-" yaml:"directory" json:"directory"`

	// DeploymentScheme is the simulation's own placement policy, used when
	// DeploymentCode is DeployUserScheme.
	DeploymentScheme func(genetic.Populations, string, *world.World) error `mapstructure:"-" yaml:"-" json:"-"`
}

// ConfigurationError reports one missing or inconsistent parameter.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

// Validate checks every parameter and returns all problems joined.
func (c *RunConfiguration) Validate() error {
	var errs []error
	fail := func(field, reason string) {
		errs = append(errs, &ConfigurationError{Field: field, Reason: reason})
	}

	for _, dim := range []struct {
		name  string
		value int
	}{{"world_x", c.WorldX}, {"world_y", c.WorldY}, {"world_z", c.WorldZ}} {
		if dim.value <= 0 {
			fail(dim.name, "must be > 0")
		}
	}
	if c.ChromosomeSize <= 0 {
		fail("chromosome_size", "must be > 0")
	}
	if c.MaximumGenerations <= 0 {
		fail("maximum_generations", "must be > 0")
	}
	if strings.TrimSpace(c.SimulationName) == "" {
		fail("simulation_name", "is required")
	} else if strings.ContainsAny(c.SimulationName, `/\`) {
		fail("simulation_name", "must not contain path separators")
	}
	if c.RagarajaVersion == "" {
		fail("ragaraja_version", "is required")
	} else if !slices.Contains(ragaraja.Versions(), c.RagarajaVersion) {
		fail("ragaraja_version", fmt.Sprintf("unknown version %q, want one of %s", c.RagarajaVersion, strings.Join(ragaraja.Versions(), ", ")))
	}
	if c.PrintFrequency <= 0 {
		fail("print_frequency", "must be > 0")
	}

	if len(c.PopulationNames) == 0 {
		fail("population_names", "at least one population is required")
	}
	seen := make(map[string]struct{}, len(c.PopulationNames))
	for _, name := range c.PopulationNames {
		if name == "" {
			fail("population_names", "names must not be empty")
			continue
		}
		if _, dup := seen[name]; dup {
			fail("population_names", fmt.Sprintf("duplicate population %q", name))
		}
		seen[name] = struct{}{}
	}
	if c.PopulationSize < 0 {
		fail("population_size", "must be >= 0")
	}
	if c.GenomeSize <= 0 {
		fail("genome_size", "must be > 0")
	}
	if c.BackgroundMutation < 0 || c.BackgroundMutation > 1 {
		fail("background_mutation", "must be in [0, 1]")
	}
	if c.AdditionalMutation < 0 || c.AdditionalMutation > 1 {
		fail("additional_mutation", "must be in [0, 1]")
	}
	if !slices.Contains(genetic.MutationTypes(), c.MutationType) {
		fail("mutation_type", fmt.Sprintf("unknown type %q, want one of %s", c.MutationType, strings.Join(genetic.MutationTypes(), ", ")))
	}
	if c.DeploymentCode < DeployUserScheme || c.DeploymentCode > DeployCentre {
		fail("deployment_code", fmt.Sprintf("must be in [%d, %d]", DeployUserScheme, DeployCentre))
	}
	if c.EcoBuriedFrequency < 0 {
		fail("eco_buried_frequency", "must be >= 0")
	}
	if c.DatabaseLoggingFrequency < 0 {
		fail("database_logging_frequency", "must be >= 0")
	}

	return errors.Join(errs...)
}

// Parameters renders the configuration as YAML, the form written at the top
// of every result file.
func (c *RunConfiguration) Parameters() ([]byte, error) {
	return yaml.Marshal(c)
}

// Cells returns the number of world cells the configuration describes.
func (c *RunConfiguration) Cells() int {
	return c.WorldX * c.WorldY * c.WorldZ
}
