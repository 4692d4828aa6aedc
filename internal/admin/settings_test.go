package admin

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

func newSettingsRepo(t *testing.T) *SettingsRepository {
	t.Helper()
	doc := jsonstore.NewDocument[models.Settings](filepath.Join(t.TempDir(), "settings.json"), nil)
	return NewSettingsRepository(doc, nil)
}

func TestSettings_DefaultsWhenUnwritten(t *testing.T) {
	repo := newSettingsRepo(t)
	s, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), s)
}

func TestSettings_UpdatePersists(t *testing.T) {
	repo := newSettingsRepo(t)
	ctx := context.Background()

	updated, err := repo.Update(ctx, func(s *models.Settings) {
		s.CompetitionName = "State Finals"
		s.MessageRetentionDays = 90
	})
	require.NoError(t, err)
	assert.Equal(t, "State Finals", updated.CompetitionName)
	// Fields not touched keep their defaults.
	assert.Equal(t, models.DefaultSettings().AppName, updated.AppName)

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 90, got.MessageRetentionDays)
}

func TestSettings_RecordBackup(t *testing.T) {
	repo := newSettingsRepo(t)
	ctx := context.Background()

	at := models.At(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	require.NoError(t, repo.RecordBackup(ctx, at))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.True(t, got.LastBackup.Equal(at.Time))
}

func TestAudit_AppendAndListNewestFirst(t *testing.T) {
	col := jsonstore.NewCollection[models.AuditEntry](filepath.Join(t.TempDir(), "admin", "audit_log.json"), nil)
	repo := NewAuditRepository(col, nil)
	ctx := context.Background()

	repo.Append(ctx, "admin", "created user sarah.chen", "10.0.0.5")
	repo.Append(ctx, "admin", "updated settings", "10.0.0.5")

	entries, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.Timestamp.IsZero())
	}

	capped, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, capped, 1)
}
