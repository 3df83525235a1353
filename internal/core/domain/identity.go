package domain

import (
	"errors"
	"time"
)

// Role is the authority level of an identity.
type Role string

const (
	RoleUser       Role = "USER"
	RoleManager    Role = "MANAGER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// roleLevels orders roles by strictly increasing authority.
var roleLevels = map[Role]int{
	RoleUser:       1,
	RoleManager:    2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

// Level returns the numeric authority of the role, 0 for unknown roles.
func (r Role) Level() int {
	return roleLevels[r]
}

// AtLeast reports whether the role has at least the authority of min.
// Unknown roles never pass.
func (r Role) AtLeast(min Role) bool {
	lvl := r.Level()
	return lvl > 0 && lvl >= min.Level()
}

var ErrUnauthenticated = errors.New("unauthenticated")
var ErrForbidden = errors.New("forbidden")
var ErrIdentityNotFound = errors.New("identity not found")
var ErrIdentityExists = errors.New("identity already exists")

// Identity is the locally owned user record bridged from the external
// identity provider. SubjectID is the provider's stable subject identifier.
// CampusID is empty for identities not yet onboarded and for SUPER_ADMIN.
type Identity struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"-"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CampusID  string    `json:"campusId,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsStaff reports whether the identity can triage tickets and manage assets.
func (i *Identity) IsStaff() bool {
	return i.Role.AtLeast(RoleManager)
}
