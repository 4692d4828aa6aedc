package auth

import (
	"context"

	"github.com/circuit-breakers/teamhub/internal/models"
)

// UnknownMember is what unmatched display names render as.
const UnknownMember = "Unknown"

// Resolver maps the free-text name fields on records (assigned_to,
// author, organizer) back to team members. It is a best-effort display
// lookup: two members can share a display name, in which case the
// first match in username order wins, and nothing enforces that a
// referenced name still exists.
type Resolver struct {
	repo *Repository
}

// NewResolver creates a resolver over the user directory.
func NewResolver(repo *Repository) *Resolver {
	return &Resolver{repo: repo}
}

// ByName returns the member whose display name equals name. ok is
// false when no member matches.
func (r *Resolver) ByName(ctx context.Context, name string) (models.TeamMember, bool, error) {
	if name == "" {
		return models.TeamMember{}, false, nil
	}
	members, err := r.repo.List(ctx)
	if err != nil {
		return models.TeamMember{}, false, err
	}
	for _, m := range members {
		if m.Name == name {
			return m, true, nil
		}
	}
	return models.TeamMember{}, false, nil
}

// DisplayName returns name when it resolves to a member and
// UnknownMember otherwise. Lookup errors degrade to UnknownMember;
// enrichment never fails a page.
func (r *Resolver) DisplayName(ctx context.Context, name string) string {
	m, ok, err := r.ByName(ctx, name)
	if err != nil || !ok {
		return UnknownMember
	}
	return m.Name
}
