// Package results writes the per-population result files and the run index
// shared by every run under a Simulations directory.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"dose/internal/config"
)

const (
	runIndexFile     = "run_index.json"
	resultFileSuffix = ".result.txt"
	reportSeparator  = "------------------------------------------------------------"
)

// ResultPath returns the text result file of one population in a run directory.
func ResultPath(dir, population string) string {
	return filepath.Join(dir, population+resultFileSuffix)
}

// WriteParameters creates the population's result file and writes the run
// parameters at its top. An existing file is truncated.
func WriteParameters(cfg *config.RunConfiguration, population string) error {
	if cfg.Directory == "" {
		return fmt.Errorf("run directory is required")
	}
	if population == "" {
		return fmt.Errorf("population name is required")
	}
	params, err := cfg.Parameters()
	if err != nil {
		return fmt.Errorf("render parameters: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SIMULATION NAME: %s\n", cfg.SimulationName)
	fmt.Fprintf(&b, "POPULATION NAME: %s\n", population)
	fmt.Fprintf(&b, "RUN ID: %s\n", cfg.RunID)
	fmt.Fprintf(&b, "STARTING TIME: %s\n", cfg.StartingTime.Format(time.RFC3339))
	b.WriteString(reportSeparator + "\n")
	b.Write(params)
	b.WriteString(reportSeparator + "\n")
	b.WriteString("REPORT\n")

	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return err
	}
	return os.WriteFile(ResultPath(cfg.Directory, population), []byte(b.String()), 0o644)
}

// AppendReport adds one generation's population report to the result file.
func AppendReport(dir, population string, generation int, report string) error {
	block := fmt.Sprintf("[generation %d]\n%s", generation, report)
	if !strings.HasSuffix(block, "\n") {
		block += "\n"
	}
	return appendText(ResultPath(dir, population), block)
}

// Close writes the footer of a population's result file.
func Close(cfg *config.RunConfiguration, population string, end time.Time) error {
	end = end.UTC()
	footer := fmt.Sprintf("%s\nENDING TIME: %s\nELAPSED: %s\n",
		reportSeparator,
		end.Format(time.RFC3339),
		strings.TrimSpace(humanize.RelTime(cfg.StartingTime, end, "", "")),
	)
	return appendText(ResultPath(cfg.Directory, population), footer)
}

func appendText(path, text string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open result file: %w", err)
	}
	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// RunIndexEntry summarises one population run in the run index.
type RunIndexEntry struct {
	RunID          string `json:"run_id"`
	SimulationName string `json:"simulation_name"`
	Population     string `json:"population"`
	Directory      string `json:"directory"`
	Generations    int    `json:"generations"`
	StartedAtUTC   string `json:"started_at_utc"`
	FinishedAtUTC  string `json:"finished_at_utc"`
}

// AppendRunIndex records entry in <baseDir>/run_index.json, replacing an
// existing entry for the same run and population.
func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}
	for i := range index {
		if index[i].RunID == entry.RunID && index[i].Population == entry.Population {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}
	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns the index newest first. A missing index is empty.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].FinishedAtUTC > entries[j].FinishedAtUTC
	})
	return entries, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
