// Package sponsors implements sponsor outreach tracking over
// data/sponsors/sponsors.json.
package sponsors

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/ids"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
)

// ErrNotFound is returned when no sponsor has the requested id.
var ErrNotFound = errors.New("sponsor not found")

// Repository handles sponsor persistence.
type Repository struct {
	col    *jsonstore.Collection[models.Sponsor]
	logger *zap.Logger
}

// NewRepository creates a sponsor repository.
func NewRepository(col *jsonstore.Collection[models.Sponsor], logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{col: col, logger: logger}
}

// List returns all sponsors.
func (r *Repository) List(ctx context.Context) ([]models.Sponsor, error) {
	return r.col.Load(ctx)
}

// Get returns a sponsor by id.
func (r *Repository) Get(ctx context.Context, id string) (models.Sponsor, error) {
	all, err := r.col.Load(ctx)
	if err != nil {
		return models.Sponsor{}, err
	}
	for _, s := range all {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Sponsor{}, ErrNotFound
}

// Create assigns an id and appends the sponsor.
func (r *Repository) Create(ctx context.Context, s models.Sponsor) (models.Sponsor, error) {
	s.ID = ids.New()
	err := r.col.Mutate(ctx, func(all []models.Sponsor) ([]models.Sponsor, error) {
		return append(all, s), nil
	})
	if err != nil {
		return models.Sponsor{}, err
	}
	r.logger.Info("sponsor created", zap.String("id", s.ID), zap.String("name", s.Name))
	return s, nil
}

// Update applies fn to the sponsor with the given id.
func (r *Repository) Update(ctx context.Context, id string, fn func(*models.Sponsor)) (models.Sponsor, error) {
	var updated models.Sponsor
	err := r.col.Mutate(ctx, func(all []models.Sponsor) ([]models.Sponsor, error) {
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
		return models.Sponsor{}, err
	}
	return updated, nil
}

// Delete removes the sponsor with the given id; unknown ids are a no-op.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.col.Mutate(ctx, func(all []models.Sponsor) ([]models.Sponsor, error) {
		out := all[:0]
		for _, s := range all {
			if s.ID != id {
				out = append(out, s)
			}
		}
		return out, nil
	})
}
