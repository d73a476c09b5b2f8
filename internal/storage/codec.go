package storage

import (
	"encoding/json"
	"errors"

	"dose/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// Versioned stamps the current schema and codec versions.
func Versioned() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeWorld(r model.WorldRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeWorld(data []byte) (model.WorldRecord, error) {
	var record model.WorldRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.WorldRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.WorldRecord{}, err
	}
	return record, nil
}

func EncodePopulation(r model.PopulationRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodePopulation(data []byte) (model.PopulationRecord, error) {
	var record model.PopulationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.PopulationRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.PopulationRecord{}, err
	}
	return record, nil
}

func EncodeRun(r model.RunRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var record model.RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return record, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
