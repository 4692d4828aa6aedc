package models

// Role represents a team member's access level.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleLead   Role = "lead"
	RoleMember Role = "member"
)

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleAdmin, RoleLead, RoleMember:
		return true
	}
	return false
}

// User is one entry in data/users.json. The file is a map keyed by
// username, so the username lives on the key rather than in the record.
type User struct {
	ID         int       `json:"id"`
	Password   string    `json:"password"` // bcrypt, or legacy SHA-256 hex
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	Email      string    `json:"email"`
	Department string    `json:"department,omitempty"`
	CreatedAt  Timestamp `json:"created_at"`
}

// TeamMember is the public view of a user, with the username folded in
// and the password hash dropped.
type TeamMember struct {
	Username   string    `json:"username"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	Email      string    `json:"email"`
	Department string    `json:"department,omitempty"`
	CreatedAt  Timestamp `json:"created_at"`
}

// Member builds the public view for a user stored under username.
func (u User) Member(username string) TeamMember {
	return TeamMember{
		Username:   username,
		Name:       u.Name,
		Role:       u.Role,
		Email:      u.Email,
		Department: u.Department,
		CreatedAt:  u.CreatedAt,
	}
}
