package auth

import (
	"strings"
	"time"
)

// Role is the console operator capability level. The three levels form a
// strict hierarchy: super_admin > department_admin > operator.
type Role string

const (
	RoleSuperAdmin      Role = "super_admin"
	RoleDepartmentAdmin Role = "department_admin"
	RoleOperator        Role = "operator"
)

var roleLevels = map[Role]int{
	RoleOperator:        1,
	RoleDepartmentAdmin: 2,
	RoleSuperAdmin:      3,
}

// ParseRole normalizes and validates a role value.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.TrimSpace(strings.ToLower(raw)))
	_, ok := roleLevels[role]
	return role, ok
}

// Valid reports whether the role is one of the known levels.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// AtLeast reports whether the role sits at or above min in the hierarchy.
func (r Role) AtLeast(min Role) bool {
	return roleLevels[r] >= roleLevels[min]
}

// Account is a console operator's credential and role record. The password
// hash and the dormant two-factor secret are never serialized.
type Account struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	Role             Role       `json:"role"`
	DepartmentID     string     `json:"department_id,omitempty"`
	Active           bool       `json:"active"`
	TwoFactorEnabled bool       `json:"two_factor_enabled"`
	TwoFactorSecret  string     `json:"-"`
	FailedAttempts   int        `json:"failed_attempts"`
	LockedUntil      *time.Time `json:"locked_until,omitempty"`
	LastLogin        *time.Time `json:"last_login,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Locked reports whether the account's lockout window is still open.
func (a *Account) Locked(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}

// AccountUpdate lists the admin-mutable account fields. Nil pointers leave
// the stored value untouched. Password changes travel pre-hashed.
type AccountUpdate struct {
	Name         *string
	Role         *Role
	DepartmentID *string
	Active       *bool
	PasswordHash *string
}

// NormalizeEmail lower-cases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
