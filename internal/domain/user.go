package domain

import (
	"slices"
	"time"
)

// Role is a capability granted to a platform user.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleBroker Role = "broker"
	RoleAdmin  Role = "admin"
)

// User represents a chat user stored in the database.
type User struct {
	ID           int64
	TelegramID   int64
	FirstName    string
	LastName     string
	Username     string
	Roles        []Role
	Language     string
	CreatedAt    time.Time
	LastActiveAt time.Time
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role Role) bool {
	return u != nil && slices.Contains(u.Roles, role)
}

// IsBroker reports whether the user may submit listings.
func (u *User) IsBroker() bool { return u.HasRole(RoleBroker) }

// IsAdmin reports whether the user may moderate listings.
func (u *User) IsAdmin() bool { return u.HasRole(RoleAdmin) }
