package storage

import (
	"context"
	"fmt"
	"os"

	"tsp/internal/config"
	"tsp/internal/weight"
)

// HistoryStore persists and loads recorded test file durations
type HistoryStore interface {
	// LoadHistory returns only valid durations; malformed entries are dropped.
	LoadHistory(ctx context.Context) (weight.History, error)
	// Record merges an observed duration (seconds) for a test file.
	Record(ctx context.Context, path string, seconds float64) error
}

// Open returns the HistoryStore selected by cfg.HistoryBackend
func Open(cfg *config.Config) (HistoryStore, error) {
	switch cfg.HistoryBackend {
	case config.BackendJSON, "":
		return NewJSONStorage(cfg.GetHistoryPath(), cfg.BlendAlpha), nil
	case config.BackendMySQL:
		dsn := cfg.HistoryDSN
		if dsn == "" {
			dsn = DSNFromEnv(os.Getenv)
		}
		return OpenMySQL(dsn, cfg.BlendAlpha)
	}
	return nil, fmt.Errorf("unknown history backend %q (want %s or %s)", cfg.HistoryBackend, config.BackendJSON, config.BackendMySQL)
}

func validateObservation(path string, seconds float64) error {
	if path == "" {
		return fmt.Errorf("record duration: empty test file path")
	}
	if !weight.Valid(seconds) {
		return fmt.Errorf("record duration for %s: %v is not a positive duration", path, seconds)
	}
	return nil
}
