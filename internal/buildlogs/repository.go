// Package buildlogs implements the build logbook over
// data/logs/build_logs.json.
package buildlogs

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/ids"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
)

// ErrNotFound is returned when no log entry has the requested id.
var ErrNotFound = errors.New("build log not found")

// Repository handles build log persistence.
type Repository struct {
	col    *jsonstore.Collection[models.BuildLog]
	logger *zap.Logger
}

// NewRepository creates a build log repository.
func NewRepository(col *jsonstore.Collection[models.BuildLog], logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{col: col, logger: logger}
}

// List returns all log entries.
func (r *Repository) List(ctx context.Context) ([]models.BuildLog, error) {
	return r.col.Load(ctx)
}

// Get returns a log entry by id.
func (r *Repository) Get(ctx context.Context, id string) (models.BuildLog, error) {
	all, err := r.col.Load(ctx)
	if err != nil {
		return models.BuildLog{}, err
	}
	for _, l := range all {
		if l.ID == id {
			return l, nil
		}
	}
	return models.BuildLog{}, ErrNotFound
}

// Create assigns an id and appends the entry. Date defaults to now
// when the author did not backdate the entry.
func (r *Repository) Create(ctx context.Context, l models.BuildLog) (models.BuildLog, error) {
	l.ID = ids.New()
	if l.Date.IsZero() {
		l.Date = models.Now()
	}
	err := r.col.Mutate(ctx, func(all []models.BuildLog) ([]models.BuildLog, error) {
		return append(all, l), nil
	})
	if err != nil {
		return models.BuildLog{}, err
	}
	r.logger.Info("build log created", zap.String("id", l.ID), zap.String("title", l.Title))
	return l, nil
}

// Update applies fn to the entry with the given id.
func (r *Repository) Update(ctx context.Context, id string, fn func(*models.BuildLog)) (models.BuildLog, error) {
	var updated models.BuildLog
	err := r.col.Mutate(ctx, func(all []models.BuildLog) ([]models.BuildLog, error) {
		for i := range all {
			if all[i].ID == id {
				fn(&all[i])
				updated = all[i]
				return all, nil
			}
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return models.BuildLog{}, err
	}
	return updated, nil
}

// Delete removes the entry with the given id; unknown ids are a no-op.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.col.Mutate(ctx, func(all []models.BuildLog) ([]models.BuildLog, error) {
		out := all[:0]
		for _, l := range all {
			if l.ID != id {
				out = append(out, l)
			}
		}
		return out, nil
	})
}
