package domain

// Role represents the user's permission level in the system.
type Role string

const (
	// RoleAdmin grants full administrative access.
	RoleAdmin Role = "admin"
	// RoleUser grants standard access.
	RoleUser Role = "user"
	// RolePending indicates the user is awaiting admin approval.
	RolePending Role = "pending"
)

// User represents an account keyed by its external-identity ID
// (the subject claim from the OAuth provider). Authentication itself
// lives outside this layer; the record only carries profile and
// bookkeeping data.
type User struct {
	Tracked
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	Role        Role   `json:"role"`

	// Created counts resources this user has created, per kind.
	Created map[ResourceKind]int `json:"created,omitempty"`
}

// IsAdmin returns true if the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsPending returns true if the user is awaiting admin approval.
func (u *User) IsPending() bool {
	return u.Role == RolePending
}

// CountCreated returns how many resources of the given kind the user has created.
func (u *User) CountCreated(kind ResourceKind) int {
	return u.Created[kind]
}

// RecordCreated increments the creation counter for the given kind.
func (u *User) RecordCreated(kind ResourceKind) {
	if u.Created == nil {
		u.Created = make(map[ResourceKind]int)
	}
	u.Created[kind]++
}
