package storage

import (
	"mtest/internal/config"
	"mtest/internal/domain"
)

// Storage persists and loads test run results (e.g. for the faills viewer).
type Storage interface {
	Save(meta domain.TestResultsMeta, failures []domain.TestFailure) error
	Load() (*domain.TestResultsOutput, error)
	// SaveOutput writes the full output (e.g. after resolved flags change).
	SaveOutput(output *domain.TestResultsOutput) error
}

// JSONStorage stores results in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}

var _ Storage = (*JSONStorage)(nil)
