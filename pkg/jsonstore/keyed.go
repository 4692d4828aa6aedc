package jsonstore

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Keyed persists a map of records keyed by a string in a single JSON
// file. The user directory (data/users.json, keyed by username) is the
// one map-shaped collection in the hub.
type Keyed[T any] struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewKeyed creates a map-shaped store backed by path.
func NewKeyed[T any](path string, logger *zap.Logger) *Keyed[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Keyed[T]{path: path, logger: logger}
}

// Path returns the backing file path.
func (k *Keyed[T]) Path() string { return k.path }

// Load reads the whole map. A missing file is an empty map.
func (k *Keyed[T]) Load(ctx context.Context) (map[string]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var records map[string]T
	if err := readJSON(k.path, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = map[string]T{}
	}
	return records, nil
}

// Save replaces the entire map on disk.
func (k *Keyed[T]) Save(ctx context.Context, records map[string]T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if records == nil {
		records = map[string]T{}
	}
	return writeJSON(k.path, records)
}

// Mutate runs fn on a fresh load and saves its result under the store
// mutex.
func (k *Keyed[T]) Mutate(ctx context.Context, fn func(map[string]T) (map[string]T, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	var records map[string]T
	if err := readJSON(k.path, &records); err != nil {
		return err
	}
	if records == nil {
		records = map[string]T{}
	}
	updated, err := fn(records)
	if err != nil {
		return err
	}
	if updated == nil {
		updated = map[string]T{}
	}
	if err := writeJSON(k.path, updated); err != nil {
		return err
	}
	k.logger.Debug("keyed collection saved", zap.String("path", k.path), zap.Int("records", len(updated)))
	return nil
}
