package model

import (
	"encoding/json"
	"time"
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// WorldRecord is the buried state of the world after one generation.
type WorldRecord struct {
	VersionedRecord
	RunID      string          `json:"run_id"`
	Population string          `json:"population"`
	Generation int             `json:"generation"`
	World      json.RawMessage `json:"world"`
}

// PopulationRecord is a snapshot of one population at one generation.
type PopulationRecord struct {
	VersionedRecord
	RunID      string          `json:"run_id"`
	Name       string          `json:"name"`
	Generation int             `json:"generation"`
	Agents     json.RawMessage `json:"agents"`
}

// RunRecord summarises one orchestrator run.
type RunRecord struct {
	VersionedRecord
	RunID          string         `json:"run_id"`
	SimulationName string         `json:"simulation_name"`
	Directory      string         `json:"directory"`
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     time.Time      `json:"finished_at,omitempty"`
	Generations    map[string]int `json:"generations"`
}
