package jsonstore

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Document persists a single record in its own JSON file
// (data/settings.json). Load reports whether the file existed so a
// caller can fall back to defaults without writing them.
type Document[T any] struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewDocument creates a single-document store backed by path.
func NewDocument[T any](path string, logger *zap.Logger) *Document[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Document[T]{path: path, logger: logger}
}

// Load reads the document. found is false when the file does not exist.
func (d *Document[T]) Load(ctx context.Context) (doc T, found bool, err error) {
	if err = ctx.Err(); err != nil {
		return doc, false, err
	}
	var probe *T
	if err = readJSON(d.path, &probe); err != nil {
		return doc, false, err
	}
	if probe == nil {
		return doc, false, nil
	}
	return *probe, true, nil
}

// Mutate loads the document, applies fn and saves the result, all
// under the store's lock. found is false when no document exists yet;
// fn's return value is written either way.
func (d *Document[T]) Mutate(ctx context.Context, fn func(doc T, found bool) (T, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var doc T
	found := false
	var probe *T
	if err := readJSON(d.path, &probe); err != nil {
		return err
	}
	if probe != nil {
		doc = *probe
		found = true
	}
	out, err := fn(doc, found)
	if err != nil {
		return err
	}
	if err := writeJSON(d.path, out); err != nil {
		return err
	}
	d.logger.Debug("document saved", zap.String("path", d.path))
	return nil
}

// Save replaces the document on disk.
func (d *Document[T]) Save(ctx context.Context, doc T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := writeJSON(d.path, doc); err != nil {
		return err
	}
	d.logger.Debug("document saved", zap.String("path", d.path))
	return nil
}
