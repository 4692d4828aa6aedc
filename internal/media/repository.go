// Package media implements the photo and video gallery over
// data/media/media_items.json, with files under uploads/media.
package media

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/ids"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
)

// ErrNotFound is returned when no media item has the requested id.
var ErrNotFound = errors.New("media item not found")

// Repository handles media item persistence.
type Repository struct {
	col    *jsonstore.Collection[models.MediaItem]
	logger *zap.Logger
}

// NewRepository creates a media repository.
func NewRepository(col *jsonstore.Collection[models.MediaItem], logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{col: col, logger: logger}
}

// List returns all media items.
func (r *Repository) List(ctx context.Context) ([]models.MediaItem, error) {
	return r.col.Load(ctx)
}

// Get returns a media item by id.
func (r *Repository) Get(ctx context.Context, id string) (models.MediaItem, error) {
	all, err := r.col.Load(ctx)
	if err != nil {
		return models.MediaItem{}, err
	}
	for _, m := range all {
		if m.ID == id {
			return m, nil
		}
	}
	return models.MediaItem{}, ErrNotFound
}

// Create appends the item, assigning an id unless the record already
// carries one. Upload handlers pre-assign the id so the stored file
// name is settled before any record is written.
func (r *Repository) Create(ctx context.Context, m models.MediaItem) (models.MediaItem, error) {
	if m.ID == "" {
		m.ID = ids.New()
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	err := r.col.Mutate(ctx, func(all []models.MediaItem) ([]models.MediaItem, error) {
		return append(all, m), nil
	})
	if err != nil {
		return models.MediaItem{}, err
	}
	r.logger.Info("media item created", zap.String("id", m.ID), zap.String("title", m.Title))
	return m, nil
}

// Update applies fn to the item with the given id.
func (r *Repository) Update(ctx context.Context, id string, fn func(*models.MediaItem)) (models.MediaItem, error) {
	var updated models.MediaItem
	err := r.col.Mutate(ctx, func(all []models.MediaItem) ([]models.MediaItem, error) {
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
		return models.MediaItem{}, err
	}
	return updated, nil
}

// Delete removes the item with the given id and returns the removed
// record so the caller can clean up its file. Unknown ids are a no-op
// and return a zero record.
func (r *Repository) Delete(ctx context.Context, id string) (models.MediaItem, error) {
	var removed models.MediaItem
	err := r.col.Mutate(ctx, func(all []models.MediaItem) ([]models.MediaItem, error) {
		out := all[:0]
		for _, m := range all {
			if m.ID == id {
				removed = m
				continue
			}
			out = append(out, m)
		}
		return out, nil
	})
	if err != nil {
		return models.MediaItem{}, err
	}
	return removed, nil
}
