package filter

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"dose/internal/genetic"
	"dose/internal/world"
)

func organism(id string, mutate func(*genetic.Organism)) *genetic.Organism {
	o := genetic.NewOrganism(nil)
	o.ID = id
	mutate(o)
	return o
}

func ids(agents []*genetic.Organism) []string {
	out := make([]string, len(agents))
	for i, a := range agents {
		out[i] = a.ID
	}
	return out
}

func TestDemeAndGenderCaseInsensitiveAndOrdered(t *testing.T) {
	agents := []*genetic.Organism{
		organism("a", func(o *genetic.Organism) { o.Deme = "North"; o.Gender = "F" }),
		organism("b", func(o *genetic.Organism) { o.Deme = "south"; o.Gender = "m" }),
		organism("c", func(o *genetic.Organism) { o.Deme = "NORTH"; o.Gender = "f" }),
		organism("d", func(o *genetic.Organism) { o.Deme = "South"; o.Gender = "M" }),
	}

	if diff := cmp.Diff([]string{"a", "c"}, ids(Deme("north", agents))); diff != "" {
		t.Fatalf("deme mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "d"}, ids(Gender("M", agents))); diff != "" {
		t.Fatalf("gender mismatch (-want +got):\n%s", diff)
	}

	covered := len(Deme("north", agents)) + len(Deme("south", agents))
	if covered != len(agents) {
		t.Fatalf("deme partition covers %d of %d agents", covered, len(agents))
	}
	if agents[0].Deme != "North" {
		t.Fatal("filter modified input")
	}
}

func TestLocationExactMatch(t *testing.T) {
	agents := []*genetic.Organism{
		organism("a", func(o *genetic.Organism) { o.Location = world.Location{X: 1, Y: 2, Z: 0} }),
		organism("b", func(o *genetic.Organism) { o.Location = world.Location{X: 1, Y: 2, Z: 1} }),
	}
	got := Location(world.Location{X: 1, Y: 2, Z: 0}, agents)
	if diff := cmp.Diff([]string{"a"}, ids(got)); diff != "" {
		t.Fatalf("location mismatch (-want +got):\n%s", diff)
	}
}

func TestAgeToleranceBoundary(t *testing.T) {
	ages := map[string]float64{"lo": 10, "hi": 20, "out": 9.98, "edge": 9.99, "mid": 15, "over": 20.02}
	var agents []*genetic.Organism
	for _, id := range []string{"lo", "hi", "out", "edge", "mid", "over"} {
		age := ages[id]
		agents = append(agents, organism(id, func(o *genetic.Organism) { o.Age = age }))
	}

	got := Age(10, 20, agents)
	if diff := cmp.Diff([]string{"lo", "hi", "edge", "mid"}, ids(got)); diff != "" {
		t.Fatalf("age mismatch (-want +got):\n%s", diff)
	}
}

func TestVitalityRange(t *testing.T) {
	agents := []*genetic.Organism{
		organism("a", func(o *genetic.Organism) { o.Vitality = 50 }),
		organism("b", func(o *genetic.Organism) { o.Vitality = 100 }),
		organism("c", func(o *genetic.Organism) { o.Vitality = 0 }),
	}
	if diff := cmp.Diff([]string{"a", "b"}, ids(Vitality(50, 100, agents))); diff != "" {
		t.Fatalf("vitality mismatch (-want +got):\n%s", diff)
	}
}

func TestStatusExact(t *testing.T) {
	agents := []*genetic.Organism{
		organism("a", func(o *genetic.Organism) { o.SetStatus("k", 5) }),
		organism("b", func(o *genetic.Organism) { o.SetStatus("k", 5.0) }),
		organism("c", func(o *genetic.Organism) { o.SetStatus("k", 4.999) }),
		organism("d", func(o *genetic.Organism) { o.SetStatus("k", "5") }),
		organism("e", func(o *genetic.Organism) {}),
	}
	got, err := Status("k", Exact(5), agents)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, ids(got)); diff != "" {
		t.Fatalf("exact mismatch (-want +got):\n%s", diff)
	}

	got, err = Status("k", Exact("5"), agents)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if diff := cmp.Diff([]string{"d"}, ids(got)); diff != "" {
		t.Fatalf("exact string mismatch (-want +got):\n%s", diff)
	}
}

func TestStatusExactBoolean(t *testing.T) {
	agents := []*genetic.Organism{
		organism("a", func(o *genetic.Organism) { o.SetStatus("infected", true) }),
		organism("b", func(o *genetic.Organism) { o.SetStatus("infected", false) }),
		organism("c", func(o *genetic.Organism) { o.SetStatus("infected", 1) }),
	}
	got, err := Status("infected", Exact(true), agents)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, ids(got)); diff != "" {
		t.Fatalf("bool mismatch (-want +got):\n%s", diff)
	}
}

func TestStatusRange(t *testing.T) {
	agents := []*genetic.Organism{
		organism("a", func(o *genetic.Organism) { o.SetStatus("k", 1) }),
		organism("b", func(o *genetic.Organism) { o.SetStatus("k", "5.005") }),
		organism("c", func(o *genetic.Organism) { o.SetStatus("k", 5.02) }),
		organism("d", func(o *genetic.Organism) { o.SetStatus("k", int64(0)) }),
		organism("e", func(o *genetic.Organism) { o.SetStatus("k", float32(0.995)) }),
	}
	got, err := Status("k", Range(1, 5), agents)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "e"}, ids(got)); diff != "" {
		t.Fatalf("range mismatch (-want +got):\n%s", diff)
	}
}

func TestStatusRangeOnWellKnownField(t *testing.T) {
	agents := []*genetic.Organism{
		organism("a", func(o *genetic.Organism) { o.Age = 3 }),
		organism("b", func(o *genetic.Organism) { o.Age = 8 }),
	}
	got, err := Status("age", Range(0, 5), agents)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, ids(got)); diff != "" {
		t.Fatalf("age range mismatch (-want +got):\n%s", diff)
	}
}

func TestStatusRangeConversionError(t *testing.T) {
	agents := []*genetic.Organism{
		organism("a", func(o *genetic.Organism) { o.SetStatus("k", 2) }),
		organism("b", func(o *genetic.Organism) { o.SetStatus("k", "tall") }),
	}
	_, err := Status("k", Range(1, 5), agents)
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected conversion error, got %v", err)
	}
	if convErr.Key != "k" || convErr.Value != "tall" {
		t.Fatalf("unexpected conversion error: %+v", convErr)
	}

	_, err = Status("missing", Range(1, 5), agents)
	if !errors.As(err, &convErr) {
		t.Fatalf("expected conversion error for missing key, got %v", err)
	}
}

func TestStatusRequiresCondition(t *testing.T) {
	if _, err := Status("k", nil, nil); err == nil {
		t.Fatal("expected error for nil condition")
	}
}
