// Package sims registers the simulations the CLI can run by name.
package sims

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"dose/internal/config"
	"dose/internal/hooks"
	"dose/internal/sims/demo"
)

var (
	ErrSimulationExists   = errors.New("simulation already registered")
	ErrSimulationNotFound = errors.New("simulation not found")
)

// Entry describes one runnable simulation.
type Entry struct {
	Name        string
	Description string
	// Params returns the parameters the simulation runs with when no config
	// file is given.
	Params func() map[string]any
	// New builds the hooks for one run of cfg.
	New func(cfg *config.RunConfiguration) hooks.Hooks
}

type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

func (r *Registry) Register(entry Entry) error {
	name := strings.TrimSpace(entry.Name)
	if name == "" {
		return errors.New("simulation name is required")
	}
	if entry.Params == nil || entry.New == nil {
		return fmt.Errorf("simulation %s: params and constructor are required", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("%w: %s", ErrSimulationExists, name)
	}
	entry.Name = name
	r.entries[name] = entry
	return nil
}

func (r *Registry) Lookup(name string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrSimulationNotFound, name)
	}
	return entry, nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin returns a registry holding the simulations shipped with dose.
func Builtin() *Registry {
	r := NewRegistry()
	_ = r.Register(Entry{
		Name:        "demo",
		Description: "output-counting organisms on a diffusing grid",
		Params:      demo.Params,
		New: func(cfg *config.RunConfiguration) hooks.Hooks {
			return demo.FromConfig(cfg)
		},
	})
	return r
}
