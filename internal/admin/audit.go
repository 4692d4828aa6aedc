package admin

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/ids"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
)

// AuditRepository handles the admin audit trail in
// data/admin/audit_log.json.
type AuditRepository struct {
	col    *jsonstore.Collection[models.AuditEntry]
	logger *zap.Logger
}

// NewAuditRepository creates an audit repository.
func NewAuditRepository(col *jsonstore.Collection[models.AuditEntry], logger *zap.Logger) *AuditRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditRepository{col: col, logger: logger}
}

// Append records an admin action. Audit failures are logged and
// swallowed so they never fail the action itself.
func (r *AuditRepository) Append(ctx context.Context, user, action, ip string) {
	entry := models.AuditEntry{
		ID:        ids.New(),
		Timestamp: models.Now(),
		User:      user,
		Action:    action,
		IP:        ip,
	}
	err := r.col.Mutate(ctx, func(all []models.AuditEntry) ([]models.AuditEntry, error) {
		return append(all, entry), nil
	})
	if err != nil {
		r.logger.Error("audit append failed", zap.String("action", action), zap.Error(err))
	}
}

// List returns audit entries newest first, capped at limit when
// limit > 0.
func (r *AuditRepository) List(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	all, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Timestamp.After(all[j].Timestamp.Time) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
