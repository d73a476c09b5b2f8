package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func validParams() map[string]any {
	return map[string]any{
		"world_x":             2,
		"world_y":             3,
		"world_z":             1,
		"chromosome_size":     30,
		"maximum_generations": 5,
		"simulation_name":     "basic",
		"ragaraja_version":    "0.1",
		"print_frequency":     1,
	}
}

func TestFromMapAppliesDefaults(t *testing.T) {
	cfg, err := FromMap(validParams())
	if err != nil {
		t.Fatalf("from map: %v", err)
	}
	if cfg.WorldX != 2 || cfg.WorldY != 3 || cfg.WorldZ != 1 || cfg.Cells() != 6 {
		t.Fatalf("unexpected dims: %+v", cfg)
	}
	if cfg.SimulationName != "basic" || cfg.RagarajaVersion != "0.1" {
		t.Fatalf("unexpected names: %+v", cfg)
	}
	defaults := Default()
	if diff := cmp.Diff(defaults.PopulationNames, cfg.PopulationNames); diff != "" {
		t.Fatalf("population names mismatch (-want +got):\n%s", diff)
	}
	if cfg.PopulationSize != defaults.PopulationSize || cfg.DeploymentCode != DeploySingleCell || !cfg.InterpretChromosome {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestFromMapOverridesDefaults(t *testing.T) {
	params := validParams()
	params["population_names"] = []string{"north", "south"}
	params["population_size"] = 7
	params["deployment_code"] = DeployEven
	cfg, err := FromMap(params)
	if err != nil {
		t.Fatalf("from map: %v", err)
	}
	if diff := cmp.Diff([]string{"north", "south"}, cfg.PopulationNames); diff != "" {
		t.Fatalf("population names mismatch (-want +got):\n%s", diff)
	}
	if cfg.PopulationSize != 7 || cfg.DeploymentCode != DeployEven {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	params := validParams()
	params["world_x"] = 0
	params["world_z"] = -1
	params["print_frequency"] = 0
	delete(params, "simulation_name")

	_, err := FromMap(params)
	if err == nil {
		t.Fatal("expected configuration error")
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
	for _, field := range []string{"world_x", "world_z", "print_frequency", "simulation_name"} {
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("error does not mention %s: %v", field, err)
		}
	}
	if strings.Contains(err.Error(), "world_y") {
		t.Fatalf("valid field reported: %v", err)
	}
}

func TestValidateRejectsDuplicatePopulationsAndBadDeployment(t *testing.T) {
	params := validParams()
	params["population_names"] = []string{"a", "a"}
	params["deployment_code"] = 9
	_, err := FromMap(params)
	if err == nil || !strings.Contains(err.Error(), "duplicate") || !strings.Contains(err.Error(), "deployment_code") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsUnknownDialectAndMutationType(t *testing.T) {
	params := validParams()
	params["ragaraja_version"] = "9.9"
	params["mutation_type"] = "inversion"
	_, err := FromMap(params)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	for _, want := range []string{"ragaraja_version", `"9.9"`, "mutation_type", `"inversion"`} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error does not mention %s: %v", want, err)
		}
	}
}

func TestLoadYAMLFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	data, err := yaml.Marshal(validParams())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DOSE_MAXIMUM_GENERATIONS", "9")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaximumGenerations != 9 {
		t.Fatalf("env override not applied: %d", cfg.MaximumGenerations)
	}
	if cfg.ChromosomeSize != 30 {
		t.Fatalf("file value not applied: %d", cfg.ChromosomeSize)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDeriveRunDirectory(t *testing.T) {
	cfg, err := FromMap(validParams())
	if err != nil {
		t.Fatalf("from map: %v", err)
	}
	start := time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("X", -2*3600))
	cfg.Derive(start, "/work")

	want := filepath.Join("/work", "Simulations", "basic_2024-03-10")
	if cfg.Directory != want {
		t.Fatalf("directory = %s, want %s", cfg.Directory, want)
	}
	if cfg.RunID == "" || len(cfg.InitialChromosome) != 30 || cfg.InitialChromosome[29] != "0" {
		t.Fatalf("unexpected derived values: run=%q chromosome=%d", cfg.RunID, len(cfg.InitialChromosome))
	}
	if !cfg.StartingTime.Equal(start) || cfg.StartingTime.Location() != time.UTC {
		t.Fatalf("unexpected starting time: %v", cfg.StartingTime)
	}

	cfg.BaseDir = "/elsewhere"
	cfg.Derive(start, "/work")
	if !strings.HasPrefix(cfg.Directory, "/elsewhere") {
		t.Fatalf("base dir ignored: %s", cfg.Directory)
	}
}

func TestParametersRenderYAML(t *testing.T) {
	cfg, err := FromMap(validParams())
	if err != nil {
		t.Fatalf("from map: %v", err)
	}
	data, err := cfg.Parameters()
	if err != nil {
		t.Fatalf("parameters: %v", err)
	}
	var decoded map[string]any
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["simulation_name"] != "basic" || decoded["world_y"] != 3 {
		t.Fatalf("unexpected rendered parameters: %v", decoded)
	}
}
