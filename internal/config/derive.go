package config

import (
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
)

// SimulationsDir is the directory under the base directory that holds run directories.
const SimulationsDir = "Simulations"

// RunDirectory returns <base>/Simulations/<name>_<YYYY-MM-DD> for the UTC
// date of start.
func RunDirectory(base, name string, start time.Time) string {
	return filepath.Join(base, SimulationsDir, name+"_"+start.UTC().Format(time.DateOnly))
}

// Derive fills in the values a run computes at setup: run id, initial
// chromosome, starting time and run directory. cwd is used when BaseDir is
// empty.
func (c *RunConfiguration) Derive(start time.Time, cwd string) {
	c.RunID = uuid.NewString()
	c.InitialChromosome = slices.Repeat([]string{"0"}, c.ChromosomeSize)
	c.StartingTime = start.UTC()
	base := c.BaseDir
	if base == "" {
		base = cwd
	}
	c.Directory = RunDirectory(base, c.SimulationName, c.StartingTime)
}
