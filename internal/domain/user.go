package domain

import "time"

// UserRole differentiates requesters from resolvers.
type UserRole string

const (
	UserRoleRequester UserRole = "requester"
	UserRoleResolver  UserRole = "resolver"
	UserRoleAdmin     UserRole = "admin"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleRequester, UserRoleResolver, UserRoleAdmin:
		return true
	}
	return false
}

// Staff reports whether the role works issues rather than raising them.
func (r UserRole) Staff() bool {
	return r == UserRoleResolver || r == UserRoleAdmin
}

// User is a requester or resolver account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Viewer identifies who is reading issue data.
type Viewer struct {
	ID   string
	Role UserRole
}
