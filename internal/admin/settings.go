// Package admin implements the administration surface: user accounts,
// application settings, the audit trail and maintenance jobs.
package admin

import (
	"context"

	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
)

// SettingsRepository handles the single settings document in
// data/settings.json.
type SettingsRepository struct {
	doc    *jsonstore.Document[models.Settings]
	logger *zap.Logger
}

// NewSettingsRepository creates a settings repository.
func NewSettingsRepository(doc *jsonstore.Document[models.Settings], logger *zap.Logger) *SettingsRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsRepository{doc: doc, logger: logger}
}

// Get returns the stored settings, falling back to the defaults when
// the document has never been written.
func (r *SettingsRepository) Get(ctx context.Context) (models.Settings, error) {
	s, found, err := r.doc.Load(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	if !found {
		return models.DefaultSettings(), nil
	}
	return s, nil
}

// Update applies fn to the settings and persists the result.
func (r *SettingsRepository) Update(ctx context.Context, fn func(*models.Settings)) (models.Settings, error) {
	var updated models.Settings
	err := r.doc.Mutate(ctx, func(s models.Settings, found bool) (models.Settings, error) {
		if !found {
			s = models.DefaultSettings()
		}
		fn(&s)
		updated = s
		return s, nil
	})
	if err != nil {
		return models.Settings{}, err
	}
	r.logger.Info("settings updated")
	return updated, nil
}

// RecordBackup stamps the time of the latest successful backup.
func (r *SettingsRepository) RecordBackup(ctx context.Context, at models.Timestamp) error {
	_, err := r.Update(ctx, func(s *models.Settings) {
		s.LastBackup = at
	})
	return err
}
