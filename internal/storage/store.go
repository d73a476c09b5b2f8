package storage

import (
	"context"

	"dose/internal/model"
)

// Store persists buried worlds, population snapshots and run summaries.
type Store interface {
	Init(ctx context.Context) error
	SaveWorld(ctx context.Context, record model.WorldRecord) error
	GetWorld(ctx context.Context, runID, population string, generation int) (model.WorldRecord, bool, error)
	ListWorldGenerations(ctx context.Context, runID, population string) ([]int, error)
	SavePopulation(ctx context.Context, record model.PopulationRecord) error
	GetPopulation(ctx context.Context, runID, name string, generation int) (model.PopulationRecord, bool, error)
	SaveRun(ctx context.Context, record model.RunRecord) error
	GetRun(ctx context.Context, runID string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
}
