package messages

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	col := jsonstore.NewCollection[models.Message](filepath.Join(t.TempDir(), "messages", "messages.json"), nil)
	return NewRepository(col, nil)
}

func TestCreate_StampsIDAndTimestamp(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.Message{
		Title: "Kickoff", Content: "Season starts Saturday", Author: "Maria Garcia", Channel: "General",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.Timestamp.IsZero())
	assert.False(t, created.IsReply())
}

func TestReply_InheritsChannelAndCategory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	parent, err := repo.Create(ctx, models.Message{
		Title: "Motor specs", Content: "Which motor?", Author: "Maria Garcia", Channel: "Engineering",
	})
	require.NoError(t, err)

	reply, err := repo.Reply(ctx, parent.ID, "James Wilson", "The 550 held up better")
	require.NoError(t, err)
	assert.Equal(t, parent.ID, reply.ParentID)
	assert.Equal(t, "Engineering", reply.Channel)
	assert.Equal(t, ReplyCategory, reply.Category)
	assert.Empty(t, reply.Title)
	assert.True(t, reply.IsReply())
}

func TestReply_ToReplyOrMissingParentFails(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	parent, err := repo.Create(ctx, models.Message{Title: "t", Content: "c", Author: "a"})
	require.NoError(t, err)
	reply, err := repo.Reply(ctx, parent.ID, "b", "r")
	require.NoError(t, err)

	_, err = repo.Reply(ctx, reply.ID, "c", "nested")
	assert.ErrorIs(t, err, ErrReplyToReply)

	_, err = repo.Reply(ctx, "missing", "c", "r")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateContent_OnlyAuthor(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.Message{Title: "t", Content: "before", Author: "Maria Garcia"})
	require.NoError(t, err)

	updated, err := repo.UpdateContent(ctx, created.ID, "Maria Garcia", "after")
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Content)

	_, err = repo.UpdateContent(ctx, created.ID, "James Wilson", "hijack")
	assert.ErrorIs(t, err, ErrNotAuthor)
}

func TestDelete_RemovesThread(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	parent, err := repo.Create(ctx, models.Message{Title: "t", Content: "c", Author: "a"})
	require.NoError(t, err)
	_, err = repo.Reply(ctx, parent.ID, "b", "r1")
	require.NoError(t, err)
	_, err = repo.Reply(ctx, parent.ID, "c", "r2")
	require.NoError(t, err)
	other, err := repo.Create(ctx, models.Message{Title: "other", Content: "c", Author: "a"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, parent.ID))
	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, other.ID, all[0].ID)

	require.NoError(t, repo.Delete(ctx, "missing"))
}

func TestPruneOlderThan_TakesRepliesWithTheThread(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	old, err := repo.Create(ctx, models.Message{
		Title: "old", Content: "c", Author: "a",
		Timestamp: models.At(time.Now().AddDate(0, 0, -200)),
	})
	require.NoError(t, err)
	// The reply is recent but goes with its stale thread.
	_, err = repo.Reply(ctx, old.ID, "b", "late reply")
	require.NoError(t, err)
	fresh, err := repo.Create(ctx, models.Message{Title: "fresh", Content: "c", Author: "a"})
	require.NoError(t, err)

	removed, err := repo.PruneOlderThan(ctx, models.At(time.Now().AddDate(0, 0, -180)))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, fresh.ID, all[0].ID)
}
