// Package events implements the team calendar over
// data/events/events.json.
package events

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/ids"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
)

var (
	// ErrNotFound is returned when no event has the requested id.
	ErrNotFound = errors.New("event not found")
	// ErrInvertedRange is returned when an update would leave the
	// event ending before it starts.
	ErrInvertedRange = errors.New("event end_time before start_time")
)

// Repository handles calendar event persistence.
type Repository struct {
	col    *jsonstore.Collection[models.Event]
	logger *zap.Logger
}

// NewRepository creates an event repository.
func NewRepository(col *jsonstore.Collection[models.Event], logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{col: col, logger: logger}
}

// List returns all events.
func (r *Repository) List(ctx context.Context) ([]models.Event, error) {
	return r.col.Load(ctx)
}

// Get returns an event by id.
func (r *Repository) Get(ctx context.Context, id string) (models.Event, error) {
	all, err := r.col.Load(ctx)
	if err != nil {
		return models.Event{}, err
	}
	for _, e := range all {
		if e.ID == id {
			return e, nil
		}
	}
	return models.Event{}, ErrNotFound
}

// Create assigns an id and appends the event.
func (r *Repository) Create(ctx context.Context, e models.Event) (models.Event, error) {
	e.ID = ids.New()
	if e.Participants == nil {
		e.Participants = []string{}
	}
	err := r.col.Mutate(ctx, func(all []models.Event) ([]models.Event, error) {
		return append(all, e), nil
	})
	if err != nil {
		return models.Event{}, err
	}
	r.logger.Info("event created", zap.String("id", e.ID), zap.String("title", e.Title))
	return e, nil
}

// Update applies fn to the event with the given id. An error from fn
// aborts the mutation with nothing written, so callers can validate
// the merged record before it reaches the data file.
func (r *Repository) Update(ctx context.Context, id string, fn func(*models.Event) error) (models.Event, error) {
	var updated models.Event
	err := r.col.Mutate(ctx, func(all []models.Event) ([]models.Event, error) {
		for i := range all {
			if all[i].ID == id {
				if err := fn(&all[i]); err != nil {
					return nil, err
				}
				updated = all[i]
				return all, nil
			}
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return models.Event{}, err
	}
	return updated, nil
}

// Delete removes the event with the given id; unknown ids are a no-op.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.col.Mutate(ctx, func(all []models.Event) ([]models.Event, error) {
		out := all[:0]
		for _, e := range all {
			if e.ID != id {
				out = append(out, e)
			}
		}
		return out, nil
	})
}
