package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"dose/internal/model"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveWorld(ctx context.Context, record model.WorldRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeWorld(record)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO worlds (run_id, population, generation, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, population, generation) DO UPDATE SET
			payload = excluded.payload
	`, record.RunID, record.Population, record.Generation, payload)
	return err
}

func (s *SQLiteStore) GetWorld(ctx context.Context, runID, population string, generation int) (model.WorldRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.WorldRecord{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `
		SELECT payload FROM worlds WHERE run_id = ? AND population = ? AND generation = ?
	`, runID, population, generation).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.WorldRecord{}, false, nil
		}
		return model.WorldRecord{}, false, err
	}

	record, err := DecodeWorld(payload)
	if err != nil {
		return model.WorldRecord{}, false, fmt.Errorf("decode world %s/%s/%d: %w", runID, population, generation, err)
	}
	return record, true, nil
}

func (s *SQLiteStore) ListWorldGenerations(ctx context.Context, runID, population string) ([]int, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT generation FROM worlds WHERE run_id = ? AND population = ? ORDER BY generation
	`, runID, population)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var generation int
		if err := rows.Scan(&generation); err != nil {
			return nil, err
		}
		out = append(out, generation)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SavePopulation(ctx context.Context, record model.PopulationRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodePopulation(record)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO populations (run_id, name, generation, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, name, generation) DO UPDATE SET
			payload = excluded.payload
	`, record.RunID, record.Name, record.Generation, payload)
	return err
}

func (s *SQLiteStore) GetPopulation(ctx context.Context, runID, name string, generation int) (model.PopulationRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.PopulationRecord{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `
		SELECT payload FROM populations WHERE run_id = ? AND name = ? AND generation = ?
	`, runID, name, generation).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PopulationRecord{}, false, nil
		}
		return model.PopulationRecord{}, false, err
	}

	record, err := DecodePopulation(payload)
	if err != nil {
		return model.PopulationRecord{}, false, fmt.Errorf("decode population %s/%s/%d: %w", runID, name, generation, err)
	}
	return record, true, nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, record model.RunRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeRun(record)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (run_id, started_at, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			started_at = excluded.started_at,
			payload = excluded.payload
	`, record.RunID, record.StartedAt.UnixNano(), payload)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (model.RunRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.RunRecord{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE run_id = ?`, runID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RunRecord{}, false, nil
		}
		return model.RunRecord{}, false, err
	}

	record, err := DecodeRun(payload)
	if err != nil {
		return model.RunRecord{}, false, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return record, true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]model.RunRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT payload FROM runs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RunRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		record, err := DecodeRun(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortRuns(out)
	return out, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS worlds (
			run_id TEXT NOT NULL,
			population TEXT NOT NULL,
			generation INTEGER NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run_id, population, generation)
		);
		CREATE TABLE IF NOT EXISTS populations (
			run_id TEXT NOT NULL,
			name TEXT NOT NULL,
			generation INTEGER NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run_id, name, generation)
		);
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}
