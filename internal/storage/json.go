package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"tsp/internal/weight"
)

// JSONStorage stores durations in a JSON object keyed by test file path
type JSONStorage struct {
	path  string
	alpha float64
	mu    sync.Mutex
}

// NewJSONStorage returns a HistoryStore backed by the JSON file at path.
// alpha weighs new observations when recording (see weight.Blend).
func NewJSONStorage(path string, alpha float64) *JSONStorage {
	return &JSONStorage{path: path, alpha: alpha}
}

// Path returns the history file location
func (s *JSONStorage) Path() string {
	return s.path
}

// LoadHistory reads the history file. A missing file is an empty history.
func (s *JSONStorage) LoadHistory(ctx context.Context) (weight.History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, _, err := s.load()
	return h, err
}

// load returns the valid entries and how many were discarded
func (s *JSONStorage) load() (weight.History, int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return weight.History{}, 0, nil
		}
		return nil, 0, fmt.Errorf("read history file: %w", err)
	}
	return ParseHistory(data)
}

// ParseHistory decodes a JSON history object, discarding entries that are
// not positive finite numbers. It fails only when data is not a JSON object.
func ParseHistory(data []byte) (weight.History, int, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("parse history: %w", err)
	}

	values := make(map[string]float64, len(raw))
	dropped := 0
	for path, msg := range raw {
		var v float64
		if err := json.Unmarshal(msg, &v); err != nil {
			dropped++
			continue
		}
		values[path] = v
	}

	h, invalid := weight.Sanitize(values)
	return h, dropped + invalid, nil
}

// Record blends seconds into the stored value for path and rewrites the file
func (s *JSONStorage) Record(ctx context.Context, path string, seconds float64) error {
	if err := validateObservation(path, seconds); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h, _, err := s.load()
	if err != nil {
		return err
	}
	h[path] = weight.Blend(h[path], seconds, s.alpha)
	return s.save(h)
}

// Save replaces the stored history with h
func (s *JSONStorage) Save(h weight.History) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clean, _ := weight.Sanitize(h)
	return s.save(clean)
}

func (s *JSONStorage) save(h weight.History) error {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
