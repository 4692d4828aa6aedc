// Package messages implements the team message board over
// data/messages/messages.json. Threads are one level deep: a reply
// points at its parent and never has replies of its own.
package messages

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/ids"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
)

// Errors returned by the repository.
var (
	ErrNotFound     = errors.New("message not found")
	ErrReplyToReply = errors.New("cannot reply to a reply")
	ErrNotAuthor    = errors.New("not the message author")
)

// ReplyCategory marks a record as part of a thread rather than the
// start of one.
const ReplyCategory = "Response"

// Repository handles message persistence.
type Repository struct {
	col    *jsonstore.Collection[models.Message]
	logger *zap.Logger
}

// NewRepository creates a message repository.
func NewRepository(col *jsonstore.Collection[models.Message], logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{col: col, logger: logger}
}

// List returns all messages.
func (r *Repository) List(ctx context.Context) ([]models.Message, error) {
	return r.col.Load(ctx)
}

// Get returns a message by id.
func (r *Repository) Get(ctx context.Context, id string) (models.Message, error) {
	all, err := r.col.Load(ctx)
	if err != nil {
		return models.Message{}, err
	}
	for _, m := range all {
		if m.ID == id {
			return m, nil
		}
	}
	return models.Message{}, ErrNotFound
}

// Create assigns an id and timestamp and appends the message.
func (r *Repository) Create(ctx context.Context, m models.Message) (models.Message, error) {
	m.ID = ids.New()
	if m.Timestamp.IsZero() {
		m.Timestamp = models.Now()
	}
	err := r.col.Mutate(ctx, func(all []models.Message) ([]models.Message, error) {
		return append(all, m), nil
	})
	if err != nil {
		return models.Message{}, err
	}
	r.logger.Info("message posted", zap.String("id", m.ID), zap.String("channel", m.Channel))
	return m, nil
}

// Reply appends a response to the top-level message with the given id.
// The reply inherits the parent's channel, carries no title and gets
// the reply category.
func (r *Repository) Reply(ctx context.Context, parentID, author, content string) (models.Message, error) {
	reply := models.Message{
		ID:        ids.New(),
		Content:   content,
		Author:    author,
		Timestamp: models.Now(),
		Category:  ReplyCategory,
		ParentID:  parentID,
	}
	err := r.col.Mutate(ctx, func(all []models.Message) ([]models.Message, error) {
		for _, m := range all {
			if m.ID == parentID {
				if m.IsReply() {
					return nil, ErrReplyToReply
				}
				reply.Channel = m.Channel
				return append(all, reply), nil
			}
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return models.Message{}, err
	}
	return reply, nil
}

// UpdateContent rewrites the content of a message. Only the author may
// edit; admins delete rather than edit.
func (r *Repository) UpdateContent(ctx context.Context, id, author, content string) (models.Message, error) {
	var updated models.Message
	err := r.col.Mutate(ctx, func(all []models.Message) ([]models.Message, error) {
		for i := range all {
			if all[i].ID == id {
				if all[i].Author != author {
					return nil, ErrNotAuthor
				}
				all[i].Content = content
				updated = all[i]
				return all, nil
			}
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return models.Message{}, err
	}
	return updated, nil
}

// Delete removes a message and, for a top-level message, its replies.
// Unknown ids are a no-op.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.col.Mutate(ctx, func(all []models.Message) ([]models.Message, error) {
		out := all[:0]
		for _, m := range all {
			if m.ID == id || m.ParentID == id {
				continue
			}
			out = append(out, m)
		}
		return out, nil
	})
}

// PruneOlderThan removes top-level messages (and their replies) whose
// timestamp is before cutoff, returning how many records went away.
func (r *Repository) PruneOlderThan(ctx context.Context, cutoff models.Timestamp) (int, error) {
	removed := 0
	err := r.col.Mutate(ctx, func(all []models.Message) ([]models.Message, error) {
		stale := make(map[string]bool)
		for _, m := range all {
			if !m.IsReply() && m.Timestamp.Before(cutoff.Time) {
				stale[m.ID] = true
			}
		}
		out := all[:0]
		for _, m := range all {
			if stale[m.ID] || stale[m.ParentID] {
				removed++
				continue
			}
			out = append(out, m)
		}
		return out, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
