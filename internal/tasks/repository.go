// Package tasks implements the project-management board: task CRUD
// over the data/tasks/tasks.json collection.
package tasks

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/ids"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
)

// ErrNotFound is returned when no task has the requested id.
var ErrNotFound = errors.New("task not found")

// Repository handles task persistence.
type Repository struct {
	col    *jsonstore.Collection[models.Task]
	logger *zap.Logger
}

// NewRepository creates a task repository.
func NewRepository(col *jsonstore.Collection[models.Task], logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{col: col, logger: logger}
}

// List returns all tasks. Filtering and sorting happen in the handler,
// after a full load, the way the original pages worked.
func (r *Repository) List(ctx context.Context) ([]models.Task, error) {
	return r.col.Load(ctx)
}

// Get returns a task by id.
func (r *Repository) Get(ctx context.Context, id string) (models.Task, error) {
	all, err := r.col.Load(ctx)
	if err != nil {
		return models.Task{}, err
	}
	for _, t := range all {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Task{}, ErrNotFound
}

// Create assigns an id and creation time and appends the task.
func (r *Repository) Create(ctx context.Context, t models.Task) (models.Task, error) {
	t.ID = ids.New()
	t.CreatedAt = models.Now()
	err := r.col.Mutate(ctx, func(all []models.Task) ([]models.Task, error) {
		return append(all, t), nil
	})
	if err != nil {
		return models.Task{}, err
	}
	r.logger.Info("task created", zap.String("id", t.ID), zap.String("title", t.Title))
	return t, nil
}

// Update applies fn to the task with the given id and persists the
// collection.
func (r *Repository) Update(ctx context.Context, id string, fn func(*models.Task)) (models.Task, error) {
	var updated models.Task
	err := r.col.Mutate(ctx, func(all []models.Task) ([]models.Task, error) {
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
		return models.Task{}, err
	}
	return updated, nil
}

// Delete removes the task with the given id. Deleting an id that does
// not exist is a no-op.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.col.Mutate(ctx, func(all []models.Task) ([]models.Task, error) {
		out := all[:0]
		for _, t := range all {
			if t.ID != id {
				out = append(out, t)
			}
		}
		return out, nil
	})
}
