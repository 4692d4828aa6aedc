package auth

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/circuit-breakers/teamhub/internal/models"
	"github.com/circuit-breakers/teamhub/pkg/jsonstore"
	"github.com/circuit-breakers/teamhub/pkg/utils"
)

var (
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserNotFound is returned when a username has no entry.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when creating a duplicate username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrLastAdmin is returned when an operation would leave the team
	// without an admin.
	ErrLastAdmin = errors.New("cannot remove the last admin user")
)

// DefaultAdminUsername and DefaultAdminPassword seed the user
// directory on first run, matching the credentials the team's docs
// tell a fresh install to log in with (and change).
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

// Repository handles the user directory in data/users.json, a map
// keyed by username.
type Repository struct {
	store  *jsonstore.Keyed[models.User]
	logger *zap.Logger
}

// NewRepository creates a user repository.
func NewRepository(store *jsonstore.Keyed[models.User], logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{store: store, logger: logger}
}

// EnsureDefaultAdmin seeds the directory with the default admin
// account when no users exist yet.
func (r *Repository) EnsureDefaultAdmin(ctx context.Context) error {
	return r.store.Mutate(ctx, func(users map[string]models.User) (map[string]models.User, error) {
		if len(users) > 0 {
			return users, nil
		}
		hash, err := utils.HashPassword(DefaultAdminPassword)
		if err != nil {
			return nil, fmt.Errorf("hash default password: %w", err)
		}
		users[DefaultAdminUsername] = models.User{
			ID:        1,
			Password:  hash,
			Name:      "Admin User",
			Role:      models.RoleAdmin,
			Email:     "admin@circuitbreakers.org",
			CreatedAt: models.Now(),
		}
		r.logger.Info("seeded default admin user")
		return users, nil
	})
}

// Authenticate checks a username/password pair. A matching legacy
// SHA-256 hash is transparently upgraded to bcrypt.
func (r *Repository) Authenticate(ctx context.Context, username, password string) (models.TeamMember, error) {
	users, err := r.store.Load(ctx)
	if err != nil {
		return models.TeamMember{}, err
	}
	u, ok := users[username]
	if !ok || !utils.CheckPassword(password, u.Password) {
		return models.TeamMember{}, ErrInvalidCredentials
	}
	if utils.IsLegacyHash(u.Password) {
		if err := r.upgradeHash(ctx, username, password); err != nil {
			r.logger.Warn("legacy hash upgrade failed", zap.String("username", username), zap.Error(err))
		}
	}
	return u.Member(username), nil
}

func (r *Repository) upgradeHash(ctx context.Context, username, password string) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	return r.store.Mutate(ctx, func(users map[string]models.User) (map[string]models.User, error) {
		u, ok := users[username]
		if !ok {
			return users, nil
		}
		u.Password = hash
		users[username] = u
		return users, nil
	})
}

// Get returns a user by username.
func (r *Repository) Get(ctx context.Context, username string) (models.User, error) {
	users, err := r.store.Load(ctx)
	if err != nil {
		return models.User{}, err
	}
	u, ok := users[username]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

// List returns all team members sorted by display name.
func (r *Repository) List(ctx context.Context) ([]models.TeamMember, error) {
	users, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	members := make([]models.TeamMember, 0, len(users))
	for username, u := range users {
		members = append(members, u.Member(username))
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].Name != members[j].Name {
			return members[i].Name < members[j].Name
		}
		return members[i].Username < members[j].Username
	})
	return members, nil
}

// CreateParams holds the fields for a new user.
type CreateParams struct {
	Username   string
	Password   string
	Name       string
	Email      string
	Role       models.Role
	Department string
}

// Create adds a user to the directory. The numeric id continues the
// sequence used by the original data files (max existing id + 1).
func (r *Repository) Create(ctx context.Context, p CreateParams) (models.TeamMember, error) {
	hash, err := utils.HashPassword(p.Password)
	if err != nil {
		return models.TeamMember{}, fmt.Errorf("hash password: %w", err)
	}
	var created models.User
	err = r.store.Mutate(ctx, func(users map[string]models.User) (map[string]models.User, error) {
		if _, exists := users[p.Username]; exists {
			return nil, ErrUsernameTaken
		}
		maxID := 0
		for _, u := range users {
			if u.ID > maxID {
				maxID = u.ID
			}
		}
		created = models.User{
			ID:         maxID + 1,
			Password:   hash,
			Name:       p.Name,
			Role:       p.Role,
			Email:      p.Email,
			Department: p.Department,
			CreatedAt:  models.Now(),
		}
		users[p.Username] = created
		return users, nil
	})
	if err != nil {
		return models.TeamMember{}, err
	}
	r.logger.Info("user created", zap.String("username", p.Username), zap.String("role", string(p.Role)))
	return created.Member(p.Username), nil
}

// UpdateParams holds the fields an admin can edit. Nil pointers leave
// the current value in place; Password set to a non-empty value
// re-hashes.
type UpdateParams struct {
	Name       *string
	Email      *string
	Role       *models.Role
	Department *string
	Password   *string
}

// Update edits a user. Demoting the only remaining admin is rejected.
func (r *Repository) Update(ctx context.Context, username string, p UpdateParams) (models.TeamMember, error) {
	var updated models.User
	err := r.store.Mutate(ctx, func(users map[string]models.User) (map[string]models.User, error) {
		u, ok := users[username]
		if !ok {
			return nil, ErrUserNotFound
		}
		if p.Role != nil && u.Role == models.RoleAdmin && *p.Role != models.RoleAdmin && countAdmins(users) <= 1 {
			return nil, ErrLastAdmin
		}
		if p.Name != nil {
			u.Name = strings.TrimSpace(*p.Name)
		}
		if p.Email != nil {
			u.Email = strings.TrimSpace(*p.Email)
		}
		if p.Role != nil {
			u.Role = *p.Role
		}
		if p.Department != nil {
			u.Department = *p.Department
		}
		if p.Password != nil && *p.Password != "" {
			hash, err := utils.HashPassword(*p.Password)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			u.Password = hash
		}
		users[username] = u
		updated = u
		return users, nil
	})
	if err != nil {
		return models.TeamMember{}, err
	}
	return updated.Member(username), nil
}

// Delete removes a user. Deleting the only remaining admin is
// rejected; deleting an unknown username is a no-op.
func (r *Repository) Delete(ctx context.Context, username string) error {
	return r.store.Mutate(ctx, func(users map[string]models.User) (map[string]models.User, error) {
		u, ok := users[username]
		if !ok {
			return users, nil
		}
		if u.Role == models.RoleAdmin && countAdmins(users) <= 1 {
			return nil, ErrLastAdmin
		}
		delete(users, username)
		return users, nil
	})
}

func countAdmins(users map[string]models.User) int {
	n := 0
	for _, u := range users {
		if u.Role == models.RoleAdmin {
			n++
		}
	}
	return n
}
