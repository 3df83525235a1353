package ports

import (
	"context"

	"github.com/campuscare/campuscare/internal/core/domain"
)

// Profile is the subset of the external provider's user record the bridge
// needs to provision a local identity.
type Profile struct {
	Email string
	Name  string
}

// IdentityProvider is the sole interface to the external identity system.
type IdentityProvider interface {
	// Verify checks the raw bearer credential and returns the stable
	// external subject id. Any failure (missing, malformed, expired,
	// revoked, provider timeout) is an error; callers must treat it as
	// unauthenticated and never retry transparently.
	Verify(ctx context.Context, token string) (string, error)
	// GetProfile fetches the subject's profile from the provider.
	GetProfile(ctx context.Context, subjectID string) (Profile, error)
}

// IdentityRepository defines persistence for bridged identities.
type IdentityRepository interface {
	FindBySubject(ctx context.Context, subjectID string) (*domain.Identity, error)
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	// Create inserts a new identity. A duplicate subject id yields
	// domain.ErrIdentityExists so concurrent first-sight races resolve to
	// a fetch, never a hard failure.
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
	// ClaimInvite binds a pre-provisioned (invited) identity, matched by
	// email, to its real external subject id on first login.
	ClaimInvite(ctx context.Context, email, subjectID string) (*domain.Identity, error)
	// SetCampusRole moves an identity into a campus with the given role.
	SetCampusRole(ctx context.Context, id, campusID string, role domain.Role) error
	ListByCampus(ctx context.Context, campusID string) ([]*domain.Identity, error)
}

// IdentityService bridges an externally issued session token to the local
// tenant-scoped identity record.
type IdentityService interface {
	// Authenticate verifies rawToken with the provider and returns the
	// matching local identity, auto-provisioning it on first sight.
	Authenticate(ctx context.Context, rawToken string) (*domain.Identity, error)
}
