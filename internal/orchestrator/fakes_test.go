package orchestrator

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"dose/internal/config"
	"dose/internal/genetic"
	"dose/internal/hooks"
	"dose/internal/world"
)

// trace is the ordered log shared by the fake runtime and the trace hooks.
type trace struct {
	events []string
}

func (t *trace) add(format string, args ...any) {
	t.events = append(t.events, fmt.Sprintf(format, args...))
}

type fakeRuntime struct {
	trace   *trace
	reports []string
	buried  int
	worlds  []*world.World
	buryErr error
}

func (r *fakeRuntime) SpawnPopulations(cfg *config.RunConfiguration) (genetic.Populations, error) {
	r.trace.add("spawn")
	pops := make(genetic.Populations)
	for _, name := range cfg.PopulationNames {
		pop, err := genetic.NewPopulation(name, cfg.PopulationSize, cfg.GenomeSize, cfg.InitialChromosome, cfg.ChromosomeBases)
		if err != nil {
			return nil, err
		}
		pops[name] = pop
	}
	return pops, nil
}

func (r *fakeRuntime) Deploy(_ *config.RunConfiguration, pops genetic.Populations, name string, w *world.World) error {
	r.trace.add("deploy:%s", name)
	r.worlds = append(r.worlds, w)
	for _, agent := range pops[name].Agents {
		if err := w.Place(agent.Location); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeRuntime) EcoCellIterator(w *world.World, _ *config.RunConfiguration, fn world.CellFunc) error {
	return w.EachCell(func(x, y, z int) error {
		return fn(w, x, y, z)
	})
}

func (r *fakeRuntime) InterpretChromosome(*config.RunConfiguration, genetic.Populations, string, *world.World) error {
	r.trace.add("interpret_chromosome")
	return nil
}

func (r *fakeRuntime) ReportGeneration(_ context.Context, cfg *config.RunConfiguration, pops genetic.Populations, name string, h hooks.Hooks, generation int) error {
	r.trace.add("report_generation")
	if generation%cfg.PrintFrequency != 0 {
		return nil
	}
	report, err := h.PopulationReport(pops, name)
	if err != nil {
		return err
	}
	r.reports = append(r.reports, report)
	return nil
}

func (r *fakeRuntime) BuryWorld(_ context.Context, _ *config.RunConfiguration, _ *world.World, name string, generation int) error {
	r.trace.add("bury_world")
	if r.buryErr != nil && generation == 2 {
		return r.buryErr
	}
	r.buried++
	return nil
}

func (r *fakeRuntime) WriteParameters(_ *config.RunConfiguration, name string) error {
	r.trace.add("write_parameters:%s", name)
	return nil
}

func (r *fakeRuntime) CloseResults(_ context.Context, _ *config.RunConfiguration, name string) error {
	r.trace.add("close_results:%s", name)
	return nil
}

func (r *fakeRuntime) ActivateVersion(version string) error {
	r.trace.add("activate:%s", version)
	return nil
}

// traceHooks implements every hook as a no-op that records the call.
type traceHooks struct {
	trace  *trace
	report string
	cells  bool
}

func (h *traceHooks) MutationScheme(*genetic.Organism) error { return nil }

func (h *traceHooks) PrepopulationControl(genetic.Populations, string) error { return nil }

func (h *traceHooks) Fitness(genetic.Populations, string) error { return nil }

func (h *traceHooks) Mating(genetic.Populations, string) error { return nil }

func (h *traceHooks) PostpopulationControl(genetic.Populations, string) error { return nil }

func (h *traceHooks) GenerationEvents(genetic.Populations, string) error { return nil }

func (h *traceHooks) PopulationReport(genetic.Populations, string) (string, error) {
	return h.report, nil
}

func (h *traceHooks) OrganismMovement(genetic.Populations, string, *world.World) error {
	h.trace.add("organism_movement")
	return nil
}

func (h *traceHooks) OrganismLocation(genetic.Populations, string, *world.World) error {
	h.trace.add("organism_location")
	return nil
}

func (h *traceHooks) Ecoregulate(*world.World) error {
	h.trace.add("ecoregulate")
	return nil
}

func (h *traceHooks) UpdateEcology(_ *world.World, x, y, z int) error {
	if h.cells {
		h.trace.add("update_ecology(%d,%d,%d)", x, y, z)
	} else {
		h.trace.add("update_ecology")
	}
	return nil
}

func (h *traceHooks) UpdateLocal(_ *world.World, x, y, z int) error {
	if h.cells {
		h.trace.add("update_local(%d,%d,%d)", x, y, z)
	} else {
		h.trace.add("update_local")
	}
	return nil
}

func (h *traceHooks) Report(*world.World) error {
	h.trace.add("report")
	return nil
}

func (h *traceHooks) DeploymentScheme(genetic.Populations, string, *world.World) error { return nil }

var fixedNow = time.Date(2024, 7, 14, 9, 30, 0, 0, time.UTC)

type harness struct {
	orchestrator *Orchestrator
	runtime      *fakeRuntime
	trace        *trace
	mkdirs       int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{trace: &trace{}}
	h.runtime = &fakeRuntime{trace: h.trace}
	o, err := New(Config{
		Runtime: h.runtime,
		Now:     func() time.Time { return fixedNow },
		Getwd:   func() (string, error) { return t.TempDir(), nil },
		MkdirAll: func(path string, perm os.FileMode) error {
			h.mkdirs++
			return os.MkdirAll(path, perm)
		},
	})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	h.orchestrator = o
	return h
}

func baseParams(t *testing.T) map[string]any {
	return map[string]any{
		"world_x":             1,
		"world_y":             1,
		"world_z":             1,
		"chromosome_size":     3,
		"maximum_generations": 2,
		"simulation_name":     "e2e",
		"ragaraja_version":    "1",
		"print_frequency":     1,
		"population_size":     3,
		"base_dir":            t.TempDir(),
	}
}

func count(events []string, name string) int {
	n := 0
	for _, e := range events {
		if e == name {
			n++
		}
	}
	return n
}

// collapse drops consecutive repeats of the same event.
func collapse(events []string) []string {
	var out []string
	for _, e := range events {
		if len(out) == 0 || out[len(out)-1] != e {
			out = append(out, e)
		}
	}
	return out
}
