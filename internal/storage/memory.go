package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"dose/internal/model"
)

type worldKey struct {
	runID      string
	population string
	generation int
}

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	worlds      map[worldKey]model.WorldRecord
	populations map[worldKey]model.PopulationRecord
	runs        map[string]model.RunRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.initialized = true
	s.worlds = make(map[worldKey]model.WorldRecord)
	s.populations = make(map[worldKey]model.PopulationRecord)
	s.runs = make(map[string]model.RunRecord)
	return nil
}

func (s *MemoryStore) SaveWorld(_ context.Context, record model.WorldRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.worlds[worldKey{record.RunID, record.Population, record.Generation}] = record
	return nil
}

func (s *MemoryStore) GetWorld(_ context.Context, runID, population string, generation int) (model.WorldRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.worlds[worldKey{runID, population, generation}]
	return record, ok, nil
}

func (s *MemoryStore) ListWorldGenerations(_ context.Context, runID, population string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []int
	for key := range s.worlds {
		if key.runID == runID && key.population == population {
			out = append(out, key.generation)
		}
	}
	sort.Ints(out)
	return out, nil
}

func (s *MemoryStore) SavePopulation(_ context.Context, record model.PopulationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.populations[worldKey{record.RunID, record.Name, record.Generation}] = record
	return nil
}

func (s *MemoryStore) GetPopulation(_ context.Context, runID, name string, generation int) (model.PopulationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.populations[worldKey{runID, name, generation}]
	return record, ok, nil
}

func (s *MemoryStore) SaveRun(_ context.Context, record model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.runs[record.RunID] = record
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, runID string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.runs[runID]
	return record, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.RunRecord, 0, len(s.runs))
	for _, record := range s.runs {
		out = append(out, record)
	}
	sortRuns(out)
	return out, nil
}

var errNotInitialized = errors.New("store is not initialized")

// sortRuns orders runs newest first, breaking ties by id.
func sortRuns(runs []model.RunRecord) {
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].RunID < runs[j].RunID
	})
}
