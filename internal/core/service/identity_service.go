package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/campuscare/campuscare/internal/core/domain"
	"github.com/campuscare/campuscare/internal/core/ports"
)

// IdentityService bridges external provider sessions to local identities.
type IdentityService struct {
	provider      ports.IdentityProvider
	repo          ports.IdentityRepository
	verifyTimeout time.Duration
	log           zerolog.Logger
}

func NewIdentityService(provider ports.IdentityProvider, repo ports.IdentityRepository, verifyTimeout time.Duration, log zerolog.Logger) *IdentityService {
	if verifyTimeout <= 0 {
		verifyTimeout = 5 * time.Second
	}
	return &IdentityService{provider: provider, repo: repo, verifyTimeout: verifyTimeout, log: log}
}

// Authenticate verifies rawToken with the provider and returns the local
// identity for its subject, creating one with role USER and no campus on
// first sight. Provisioning is idempotent: a concurrent first request that
// loses the insert race resolves to a fetch of the winner's row.
func (s *IdentityService) Authenticate(ctx context.Context, rawToken string) (*domain.Identity, error) {
	if rawToken == "" {
		return nil, domain.ErrUnauthenticated
	}

	verifyCtx, cancel := context.WithTimeout(ctx, s.verifyTimeout)
	defer cancel()

	subjectID, err := s.provider.Verify(verifyCtx, rawToken)
	if err != nil {
		// Timeouts are treated the same as invalid tokens: the caller
		// gets a 401, never a hang.
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	identity, err := s.repo.FindBySubject(ctx, subjectID)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, domain.ErrIdentityNotFound) {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	return s.provision(ctx, subjectID)
}

// provision creates the local identity for a subject seen for the first
// time. Invited staff are matched by email and claim their pre-provisioned
// row instead of getting a fresh USER one.
func (s *IdentityService) provision(ctx context.Context, subjectID string) (*domain.Identity, error) {
	profileCtx, cancel := context.WithTimeout(ctx, s.verifyTimeout)
	defer cancel()

	profile, err := s.provider.GetProfile(profileCtx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("%w: profile fetch: %v", domain.ErrUnauthenticated, err)
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("%w: provider subject has no email", domain.ErrUnauthenticated)
	}

	if claimed, err := s.repo.ClaimInvite(ctx, profile.Email, subjectID); err == nil {
		s.log.Info().Str("identity_id", claimed.ID).Str("campus_id", claimed.CampusID).Msg("staff invite claimed")
		return claimed, nil
	} else if !errors.Is(err, domain.ErrIdentityNotFound) {
		return nil, fmt.Errorf("authenticate: claim invite: %w", err)
	}

	name := profile.Name
	if name == "" {
		name = "User"
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Identity{
		SubjectID: subjectID,
		Email:     profile.Email,
		Name:      name,
		Role:      domain.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrIdentityExists) {
			// Lost the first-sight race; the winner's row is authoritative.
			return s.repo.FindBySubject(ctx, subjectID)
		}
		return nil, fmt.Errorf("authenticate: provision: %w", err)
	}

	s.log.Info().Str("identity_id", created.ID).Str("email", created.Email).Msg("identity provisioned")
	return created, nil
}
