package ports

import (
	"context"

	"github.com/campuscare/campuscare/internal/core/domain"
)

// RegisterCampusInput is the DTO for campus registration.
type RegisterCampusInput struct {
	Name         string
	Type         string
	ContactEmail string
}

// CampusMember is a roster entry with live presence.
type CampusMember struct {
	*domain.Identity
	Online bool `json:"online"`
}

// CampusService owns the tenant lifecycle: registration, the exactly-once
// review by a super admin, and campus membership.
type CampusService interface {
	// Register creates a PENDING campus and promotes the registrant to
	// its ADMIN.
	Register(ctx context.Context, actor *domain.Identity, in RegisterCampusInput) (*domain.Campus, error)
	// Review approves or rejects a pending campus. Only valid once.
	Review(ctx context.Context, campusID string, approve bool) (*domain.Campus, error)
	ListPending(ctx context.Context) ([]*domain.Campus, error)
	ListActive(ctx context.Context) ([]*domain.Campus, error)
	// InviteStaff pre-provisions a MANAGER identity in the admin's campus.
	InviteStaff(ctx context.Context, actor *domain.Identity, email string) (*domain.Identity, error)
	// Members returns the actor's campus roster with presence flags.
	Members(ctx context.Context, actor *domain.Identity) ([]*CampusMember, error)
}

// CampusRepository defines persistence operations for campuses.
type CampusRepository interface {
	Create(ctx context.Context, c *domain.Campus) error
	FindByID(ctx context.Context, id string) (*domain.Campus, error)
	// Review records the verdict on a still-PENDING campus in a single
	// conditional write. When a concurrent reviewer already settled the
	// campus it returns ErrCampusReviewed, so the first verdict stands.
	Review(ctx context.Context, id string, verdict domain.CampusStatus) (*domain.Campus, error)
	ListByStatus(ctx context.Context, status domain.CampusStatus) ([]*domain.Campus, error)
}
