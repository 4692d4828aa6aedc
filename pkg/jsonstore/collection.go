// Package jsonstore provides flat-file JSON persistence for entity
// collections. Each collection is one file holding either a list of
// records, a map keyed by a string, or a single document. Writes
// rewrite the whole file through an atomic rename; reads of a missing
// file yield an empty collection, reads of a malformed file yield
// ErrCorrupt.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// ErrCorrupt marks a backing file that exists but does not contain
// valid JSON of the expected shape. Callers distinguish it from a
// legitimately empty collection with errors.Is.
var ErrCorrupt = errors.New("jsonstore: corrupt data file")

// Collection persists a list of records in a single JSON file.
// All mutations within one process are serialized by the collection's
// mutex; across processes the semantics stay last-writer-wins at file
// granularity.
type Collection[T any] struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewCollection creates a list-shaped store backed by path.
func NewCollection[T any](path string, logger *zap.Logger) *Collection[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection[T]{path: path, logger: logger}
}

// Path returns the backing file path.
func (c *Collection[T]) Path() string { return c.path }

// Load reads the whole collection. A missing file is an empty
// collection, not an error.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var records []T
	if err := readJSON(c.path, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Save replaces the entire collection on disk.
func (c *Collection[T]) Save(ctx context.Context, records []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if records == nil {
		records = []T{}
	}
	return writeJSON(c.path, records)
}

// Mutate runs fn on a fresh load and saves its result, holding the
// collection mutex across the whole load-modify-save cycle so
// concurrent mutations in this process cannot clobber each other.
func (c *Collection[T]) Mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var records []T
	if err := readJSON(c.path, &records); err != nil {
		return err
	}
	if records == nil {
		records = []T{}
	}
	updated, err := fn(records)
	if err != nil {
		return err
	}
	if updated == nil {
		updated = []T{}
	}
	if err := writeJSON(c.path, updated); err != nil {
		return err
	}
	c.logger.Debug("collection saved", zap.String("path", c.path), zap.Int("records", len(updated)))
	return nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return nil
}

// writeJSON writes the value to a temp file in the target directory
// and renames it into place, so a crash mid-write never truncates the
// existing file. Output is indented to stay byte-compatible with data
// files produced by earlier versions of the hub.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
