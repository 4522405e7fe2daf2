package domain

import (
	"fmt"
	"time"
)

// Role is the closed set of roles a user may hold.
type Role string

const (
	RoleReviewer Role = "REVIEWER"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole maps a stored role string onto the enum.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleReviewer:
		return RoleReviewer, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// User mirrors the persisted representation in the users table.
type User struct {
	ID             int64
	Username       string
	Email          string
	PasswordHash   string
	Role           Role
	ProfilePicture *string
	CreatedAt      time.Time
}

// Principal is the authenticated identity resolved for a single request.
// It lives only as long as the request that produced it.
type Principal struct {
	UserID   int64
	Username string
	Role     Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
