package tasks

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	col := jsonstore.NewCollection[models.Task](filepath.Join(t.TempDir(), "tasks", "tasks.json"), nil)
	return NewRepository(col, nil)
}

func TestRepository_CreateAssignsIDAndDefaultsSurvive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.Task{
		Title:    "Test",
		Status:   models.StatusToDo,
		Priority: models.PriorityMedium,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Test", all[0].Title)
	assert.Equal(t, models.StatusToDo, all[0].Status)
	assert.Equal(t, models.PriorityMedium, all[0].Priority)
	assert.Equal(t, created.ID, all[0].ID)
}

func TestRepository_CreatedIDsAreDistinct(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seen := map[string]struct{}{}
	for i := 0; i < 25; i++ {
		created, err := repo.Create(ctx, models.Task{Title: "t"})
		require.NoError(t, err)
		_, dup := seen[created.ID]
		require.False(t, dup, "duplicate id %s", created.ID)
		seen[created.ID] = struct{}{}
	}
}

func TestRepository_GetAndUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.Task{Title: "before", Status: models.StatusToDo})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.ID, func(task *models.Task) {
		task.Title = "after"
		task.Status = models.StatusCompleted
	})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Title)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Update(ctx, "missing", func(task *models.Task) {})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_CompletedTaskCanMoveBack(t *testing.T) {
	// No transition table: the board allows any status change.
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.Task{Title: "t", Status: models.StatusCompleted})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.ID, func(task *models.Task) {
		task.Status = models.StatusToDo
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusToDo, updated.Status)
}

func TestRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.Task{Title: "t"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))
	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	// Deleting a non-existent id is a no-op, not a failure.
	require.NoError(t, repo.Delete(ctx, "missing"))
}
