package config

import (
	"fmt"

	"github.com/spf13/viper"

	"dose/internal/genetic"
)

// EnvPrefix namespaces environment overrides, e.g. DOSE_MAXIMUM_GENERATIONS.
const EnvPrefix = "DOSE"

var requiredKeys = []string{
	"world_x",
	"world_y",
	"world_z",
	"chromosome_size",
	"maximum_generations",
	"simulation_name",
	"ragaraja_version",
	"print_frequency",
}

// Default returns the optional parameters a run falls back to. Required
// parameters are left zero so that Validate reports them.
func Default() RunConfiguration {
	return RunConfiguration{
		PopulationNames:          []string{"pop_01"},
		PopulationSize:           100,
		GenomeSize:               1,
		ChromosomeBases:          []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"},
		BackgroundMutation:       0.1,
		AdditionalMutation:       0,
		MutationType:             genetic.MutationPoint,
		MaxTapeLength:            50,
		MaxCodon:                 2000,
		InterpretChromosome:      true,
		CleanCell:                false,
		DeploymentCode:           DeploySingleCell,
		EcoBuriedFrequency:       1,
		DatabaseFile:             "",
		DatabaseLoggingFrequency: 0,
		Seed:                     1,
	}
}

// SetDefaults registers the optional parameters with v and binds the required
// ones to the environment.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("population_names", defaults.PopulationNames)
	v.SetDefault("population_size", defaults.PopulationSize)
	v.SetDefault("genome_size", defaults.GenomeSize)
	v.SetDefault("chromosome_bases", defaults.ChromosomeBases)
	v.SetDefault("background_mutation", defaults.BackgroundMutation)
	v.SetDefault("additional_mutation", defaults.AdditionalMutation)
	v.SetDefault("mutation_type", defaults.MutationType)
	v.SetDefault("max_tape_length", defaults.MaxTapeLength)
	v.SetDefault("max_codon", defaults.MaxCodon)
	v.SetDefault("interpret_chromosome", defaults.InterpretChromosome)
	v.SetDefault("clean_cell", defaults.CleanCell)
	v.SetDefault("deployment_code", defaults.DeploymentCode)
	v.SetDefault("eco_buried_frequency", defaults.EcoBuriedFrequency)
	v.SetDefault("database_file", defaults.DatabaseFile)
	v.SetDefault("database_logging_frequency", defaults.DatabaseLoggingFrequency)
	v.SetDefault("base_dir", defaults.BaseDir)
	v.SetDefault("seed", defaults.Seed)

	for _, key := range requiredKeys {
		_ = v.BindEnv(key)
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads a configuration file (YAML, JSON or TOML, by extension),
// applies environment overrides and validates the result. An empty path
// reads the environment and defaults only.
func Load(path string) (*RunConfiguration, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return decode(v)
}

// FromMap builds a configuration from a parameter mapping keyed by the
// snake_case parameter names, the way simulations declare their parameters.
func FromMap(params map[string]any) (*RunConfiguration, error) {
	v := newViper()
	if err := v.MergeConfigMap(params); err != nil {
		return nil, fmt.Errorf("merge parameters: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*RunConfiguration, error) {
	var cfg RunConfiguration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
