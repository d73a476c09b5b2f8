package results

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"dose/internal/config"
)

func testConfig(t *testing.T) *config.RunConfiguration {
	t.Helper()
	cfg, err := config.FromMap(map[string]any{
		"world_x":             1,
		"world_y":             1,
		"world_z":             1,
		"chromosome_size":     3,
		"maximum_generations": 2,
		"simulation_name":     "basic",
		"ragaraja_version":    "1",
		"print_frequency":     1,
		"base_dir":            t.TempDir(),
	})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Derive(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "")
	return cfg
}

func TestResultFileLifecycle(t *testing.T) {
	cfg := testConfig(t)
	if err := WriteParameters(cfg, "pop_01"); err != nil {
		t.Fatalf("write parameters: %v", err)
	}
	if err := AppendReport(cfg.Directory, "pop_01", 1, "gen-report"); err != nil {
		t.Fatalf("append report: %v", err)
	}
	if err := AppendReport(cfg.Directory, "pop_01", 2, "gen-report\n"); err != nil {
		t.Fatalf("append report: %v", err)
	}
	if err := Close(cfg, "pop_01", cfg.StartingTime.Add(90*time.Second)); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(ResultPath(cfg.Directory, "pop_01"))
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		"SIMULATION NAME: basic",
		"POPULATION NAME: pop_01",
		"RUN ID: " + cfg.RunID,
		"simulation_name: basic",
		"[generation 1]\ngen-report\n[generation 2]\ngen-report\n",
		"ENDING TIME: 2024-01-02T03:05:35Z",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("result file missing %q:\n%s", want, text)
		}
	}
	if strings.Index(text, "REPORT") > strings.Index(text, "[generation 1]") {
		t.Fatalf("report written before header:\n%s", text)
	}
}

func TestAppendReportRequiresResultFile(t *testing.T) {
	if err := AppendReport(t.TempDir(), "missing", 1, "x"); err == nil {
		t.Fatal("expected error for missing result file")
	}
}

func TestWriteParametersRequiresDirectory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Directory = ""
	if err := WriteParameters(cfg, "pop_01"); err == nil {
		t.Fatal("expected error for empty directory")
	}
}

func TestRunIndexReplacesAndOrders(t *testing.T) {
	base := filepath.Join(t.TempDir(), "Simulations")

	entries, err := ListRunIndex(base)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty index, got %v (%v)", entries, err)
	}

	for _, entry := range []RunIndexEntry{
		{RunID: "a", Population: "p", Generations: 1, FinishedAtUTC: "2024-01-01T00:00:00Z"},
		{RunID: "b", Population: "p", Generations: 1, FinishedAtUTC: "2024-01-03T00:00:00Z"},
		{RunID: "a", Population: "p", Generations: 5, FinishedAtUTC: "2024-01-02T00:00:00Z"},
	} {
		if err := AppendRunIndex(base, entry); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	entries, err = ListRunIndex(base)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got []string
	for _, entry := range entries {
		got = append(got, entry.RunID)
	}
	if diff := cmp.Diff([]string{"b", "a"}, got); diff != "" {
		t.Fatalf("index order mismatch (-want +got):\n%s", diff)
	}
	if entries[1].Generations != 5 {
		t.Fatalf("entry not replaced: %+v", entries[1])
	}
	if err := AppendRunIndex(base, RunIndexEntry{}); err == nil {
		t.Fatal("expected error for missing run id")
	}
}
