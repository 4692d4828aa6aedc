// Package resources implements the shared document library over
// data/resources/resources.json, with the files themselves stored
// under uploads/resources.
package resources

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/ids"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
)

// ErrNotFound is returned when no resource has the requested id.
var ErrNotFound = errors.New("resource not found")

// Repository handles resource persistence.
type Repository struct {
	col    *jsonstore.Collection[models.Resource]
	logger *zap.Logger
}

// NewRepository creates a resource repository.
func NewRepository(col *jsonstore.Collection[models.Resource], logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{col: col, logger: logger}
}

// List returns all resources.
func (r *Repository) List(ctx context.Context) ([]models.Resource, error) {
	return r.col.Load(ctx)
}

// Get returns a resource by id.
func (r *Repository) Get(ctx context.Context, id string) (models.Resource, error) {
	all, err := r.col.Load(ctx)
	if err != nil {
		return models.Resource{}, err
	}
	for _, res := range all {
		if res.ID == id {
			return res, nil
		}
	}
	return models.Resource{}, ErrNotFound
}

// Create appends the resource, assigning an id unless the record
// already carries one. Upload handlers pre-assign the id so the stored
// file name is settled before any record is written.
func (r *Repository) Create(ctx context.Context, res models.Resource) (models.Resource, error) {
	if res.ID == "" {
		res.ID = ids.New()
	}
	if res.Tags == nil {
		res.Tags = []string{}
	}
	err := r.col.Mutate(ctx, func(all []models.Resource) ([]models.Resource, error) {
		return append(all, res), nil
	})
	if err != nil {
		return models.Resource{}, err
	}
	r.logger.Info("resource created", zap.String("id", res.ID), zap.String("title", res.Title))
	return res, nil
}

// Update applies fn to the resource with the given id.
func (r *Repository) Update(ctx context.Context, id string, fn func(*models.Resource)) (models.Resource, error) {
	var updated models.Resource
	err := r.col.Mutate(ctx, func(all []models.Resource) ([]models.Resource, error) {
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
		return models.Resource{}, err
	}
	return updated, nil
}

// Delete removes the resource with the given id and returns the removed
// record so the caller can clean up its file. Unknown ids are a no-op
// and return a zero record.
func (r *Repository) Delete(ctx context.Context, id string) (models.Resource, error) {
	var removed models.Resource
	err := r.col.Mutate(ctx, func(all []models.Resource) ([]models.Resource, error) {
		out := all[:0]
		for _, res := range all {
			if res.ID == id {
				removed = res
				continue
			}
			out = append(out, res)
		}
		return out, nil
	})
	if err != nil {
		return models.Resource{}, err
	}
	return removed, nil
}
