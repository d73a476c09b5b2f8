package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"dose/internal/config"
	"dose/internal/sims"
	"dose/pkg/dose"
)

func loadConfig(entry sims.Entry, path, baseDir string) (*dose.RunConfiguration, error) {
	var (
		cfg *dose.RunConfiguration
		err error
	)
	if path == "" {
		params := entry.Params()
		if baseDir != "" {
			params["base_dir"] = baseDir
		}
		cfg, err = config.FromMap(params)
	} else {
		cfg, err = dose.LoadConfig(path)
	}
	if err != nil {
		return nil, err
	}
	if baseDir != "" {
		cfg.BaseDir = baseDir
	}
	return cfg, nil
}

func (a *app) newRunCmd() *cobra.Command {
	var (
		simName    string
		configPath string
		baseDir    string
		jsonOut    bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a registered simulation",
		Long: `Runs the simulation named by --sim with the parameters from --config, or
with the simulation's own parameters when no file is given. Environment
variables prefixed with DOSE_ override file values, e.g.
DOSE_MAXIMUM_GENERATIONS=50.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := sims.Builtin().Lookup(simName)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(entry, configPath, baseDir)
			if err != nil {
				return err
			}
			client, err := a.runClient(cmd, cfg.DatabaseFile)
			if err != nil {
				return err
			}
			defer client.Close()

			summary, err := client.SimulateConfig(cmd.Context(), cfg, entry.New(cfg))
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run_id=%s directory=%s\n", summary.RunID, summary.Directory)
			names := make([]string, 0, len(summary.Generations))
			for name := range summary.Generations {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "population=%s generations=%d\n", name, summary.Generations[name])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&simName, "sim", "demo", "registered simulation to run")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "simulation config file (yaml, json or toml)")
	cmd.Flags().StringVar(&baseDir, "base-dir", "", "directory holding Simulations/ (default: working directory)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the run summary as JSON")
	return cmd
}

func (a *app) newValidateCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a simulation config without running it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return errors.New("--config is required")
			}
			cfg, err := dose.LoadConfig(configPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config ok: simulation=%s cells=%d populations=%s generations=%d\n",
				cfg.SimulationName,
				cfg.Cells(),
				strings.Join(cfg.PopulationNames, ","),
				cfg.MaximumGenerations,
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "simulation config file")
	return cmd
}

func (a *app) newRunsCmd() *cobra.Command {
	var (
		baseDir string
		limit   int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List finished population runs from the run index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return errors.New("limit must be > 0")
			}
			if baseDir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				baseDir = wd
			}
			entries, err := dose.RunIndex(filepath.Join(baseDir, config.SimulationsDir))
			if err != nil {
				return err
			}
			if len(entries) > limit {
				entries = entries[:limit]
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs found")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "run_id=%s simulation=%s population=%s gens=%d started_at=%s finished_at=%s\n",
					e.RunID,
					e.SimulationName,
					e.Population,
					e.Generations,
					e.StartedAtUTC,
					e.FinishedAtUTC,
				)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseDir, "base-dir", "", "directory holding Simulations/ (default: working directory)")
	cmd.Flags().IntVar(&limit, "limit", 20, "max runs to list")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit runs as JSON")
	return cmd
}

func (a *app) newWorldsCmd() *cobra.Command {
	var (
		runID      string
		population string
		generation int
	)
	cmd := &cobra.Command{
		Use:   "worlds",
		Short: "List buried generations, or dump one buried world as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runID == "" || population == "" {
				return errors.New("--run-id and --population are required")
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			defer client.Close()

			if generation > 0 {
				w, err := client.BuriedWorld(cmd.Context(), runID, population, generation)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), w)
			}
			generations, err := client.BuriedGenerations(cmd.Context(), runID, population)
			if err != nil {
				return err
			}
			if len(generations) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no buried worlds found")
				return nil
			}
			for _, g := range generations {
				fmt.Fprintf(cmd.OutOrStdout(), "run_id=%s population=%s generation=%d\n", runID, population, g)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&runID, "run-id", "", "run id")
	cmd.Flags().StringVar(&population, "population", "", "population name")
	cmd.Flags().IntVar(&generation, "generation", 0, "dump the world buried at this generation")
	return cmd
}

func newVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List the ragaraja interpreter versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, v := range dose.RagarajaVersions() {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
}

func newSimsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sims",
		Short: "List the registered simulations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := sims.Builtin()
			for _, name := range registry.Names() {
				entry, err := registry.Lookup(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", entry.Name, entry.Description)
			}
			return nil
		},
	}
}
