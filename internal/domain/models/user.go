// internal/domain/models/user.go
package models

import "time"

// Role is the community role of a user.
type Role string

// Canonical role identifiers. Labels are the French names shown in the console.
const (
	RoleAdministrator Role = "administrator"
	RoleModerator     Role = "moderator"
	RoleMember        Role = "member"
)

// Roles lists every valid role, highest privilege first.
var Roles = []Role{RoleAdministrator, RoleModerator, RoleMember}

// Label returns the display name used by the dashboard.
func (r Role) Label() string {
	switch r {
	case RoleAdministrator:
		return "Administrateur"
	case RoleModerator:
		return "Modérateur"
	default:
		return "Utilisateur"
	}
}

// Valid reports whether r is one of Roles.
func (r Role) Valid() bool {
	for _, v := range Roles {
		if v == r {
			return true
		}
	}
	return false
}

// UserStatus is the account status of a user.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
)

// UserStatuses lists every valid user status in display order.
var UserStatuses = []UserStatus{UserActive, UserInactive, UserSuspended}

// Label returns the display name used by the dashboard.
func (s UserStatus) Label() string {
	switch s {
	case UserInactive:
		return "inactif"
	case UserSuspended:
		return "suspendu"
	default:
		return "actif"
	}
}

// Valid reports whether s is one of UserStatuses.
func (s UserStatus) Valid() bool {
	for _, v := range UserStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// User is a community member as held by the console.
//
// Fields the community API does not provide (email, role, status, join date,
// last active) are filled once at normalization time and stay fixed for the
// lifetime of a loaded snapshot.
type User struct {
	ID         ID         `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	Status     UserStatus `json:"status"`
	Posts      int        `json:"posts"`
	Comments   int        `json:"comments"`
	JoinDate   time.Time  `json:"join_date"`
	LastActive string     `json:"last_active"`
	Avatar     string     `json:"avatar,omitempty"`
}

// Initials returns the avatar fallback text ("Ahmed Bennani" -> "AB").
func (u User) Initials() string { return Initials(u.Name) }
