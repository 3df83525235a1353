package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/campuscare/campuscare/internal/core/domain"
	"github.com/campuscare/campuscare/internal/core/ports"
	"github.com/campuscare/campuscare/internal/pkg/metrics"
)

// invitePrefix marks a pre-provisioned identity that has not logged in yet;
// the placeholder subject id is replaced on first authentication.
const invitePrefix = "invite:"

// CampusService owns the tenant lifecycle and campus membership.
type CampusService struct {
	campuses   ports.CampusRepository
	identities ports.IdentityRepository
	presence   ports.Presence
	bus        ports.EventBus
	log        zerolog.Logger
}

func NewCampusService(campuses ports.CampusRepository, identities ports.IdentityRepository, presence ports.Presence, bus ports.EventBus, log zerolog.Logger) *CampusService {
	return &CampusService{campuses: campuses, identities: identities, presence: presence, bus: bus, log: log}
}

// Register creates a PENDING campus and promotes the registrant to its
// ADMIN. The promotion is the only way a USER gains a campus; no
// client-supplied role hint is ever honoured.
func (s *CampusService) Register(ctx context.Context, actor *domain.Identity, in ports.RegisterCampusInput) (*domain.Campus, error) {
	campus := &domain.Campus{
		Name:         in.Name,
		Type:         in.Type,
		ContactEmail: in.ContactEmail,
		Status:       domain.CampusPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.campuses.Create(ctx, campus); err != nil {
		return nil, fmt.Errorf("register campus: %w", err)
	}

	if err := s.identities.SetCampusRole(ctx, actor.ID, campus.ID, domain.RoleAdmin); err != nil {
		return nil, fmt.Errorf("register campus: promote registrant: %w", err)
	}

	s.log.Info().Str("campus_id", campus.ID).Str("admin_id", actor.ID).Msg("campus registered, pending review")

	ev := domain.NewEvent(domain.EventCampusRegistered, campus.ID, domain.AudienceStaff)
	ev.Name = campus.Name
	s.publish(ctx, domain.PlatformChannel, ev)

	return campus, nil
}

// Review transitions a PENDING campus to ACTIVE or REJECTED, exactly once.
func (s *CampusService) Review(ctx context.Context, campusID string, approve bool) (*domain.Campus, error) {
	campus, err := s.campuses.FindByID(ctx, campusID)
	if err != nil {
		return nil, fmt.Errorf("review campus: %w", err)
	}
	if campus.Reviewed() {
		return nil, domain.ErrCampusReviewed
	}

	next := domain.CampusRejected
	if approve {
		next = domain.CampusActive
	}

	// The repository only writes while the campus is still PENDING, so a
	// reviewer racing past the check above loses here with ErrCampusReviewed.
	updated, err := s.campuses.Review(ctx, campusID, next)
	if err != nil {
		return nil, fmt.Errorf("review campus: %w", err)
	}

	s.log.Info().Str("campus_id", campusID).Str("status", string(next)).Msg("campus reviewed")
	s.notifyCampusAdmin(ctx, updated)

	return updated, nil
}

// notifyCampusAdmin delivers the review outcome directly to the campus
// admin's room.
func (s *CampusService) notifyCampusAdmin(ctx context.Context, campus *domain.Campus) {
	members, err := s.identities.ListByCampus(ctx, campus.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("campus_id", campus.ID).Msg("could not resolve campus admin for review notification")
		return
	}
	for _, m := range members {
		if m.Role != domain.RoleAdmin {
			continue
		}
		ev := domain.NewEvent(domain.EventCampusReviewed, campus.ID, m.ID)
		ev.Name = campus.Name
		ev.Status = string(campus.Status)
		s.publish(ctx, domain.CampusChannel(campus.ID), ev)
	}
}

func (s *CampusService) ListPending(ctx context.Context) ([]*domain.Campus, error) {
	return s.campuses.ListByStatus(ctx, domain.CampusPending)
}

func (s *CampusService) ListActive(ctx context.Context) ([]*domain.Campus, error) {
	return s.campuses.ListByStatus(ctx, domain.CampusActive)
}

// InviteStaff pre-provisions a MANAGER identity in the admin's campus. The
// invitee claims the row on first login through the identity bridge.
func (s *CampusService) InviteStaff(ctx context.Context, actor *domain.Identity, email string) (*domain.Identity, error) {
	if actor.Role != domain.RoleAdmin || actor.CampusID == "" {
		return nil, domain.ErrForbidden
	}

	if _, err := s.identities.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrIdentityExists
	} else if !errors.Is(err, domain.ErrIdentityNotFound) {
		return nil, fmt.Errorf("invite staff: %w", err)
	}

	now := time.Now().UTC()
	invited, err := s.identities.Create(ctx, &domain.Identity{
		SubjectID: invitePrefix + email,
		Email:     email,
		Name:      "Pending Staff",
		Role:      domain.RoleManager,
		CampusID:  actor.CampusID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("invite staff: %w", err)
	}

	s.log.Info().Str("identity_id", invited.ID).Str("campus_id", actor.CampusID).Msg("staff invited")
	return invited, nil
}

// Members returns the actor's campus roster with live presence flags.
func (s *CampusService) Members(ctx context.Context, actor *domain.Identity) ([]*ports.CampusMember, error) {
	if actor.CampusID == "" {
		return nil, domain.ErrNoCampus
	}

	identities, err := s.identities.ListByCampus(ctx, actor.CampusID)
	if err != nil {
		return nil, fmt.Errorf("campus members: %w", err)
	}

	members := make([]*ports.CampusMember, 0, len(identities))
	for _, ident := range identities {
		online, err := s.presence.IsOnline(ctx, ident.ID)
		if err != nil {
			// Presence is best-effort; a redis hiccup must not hide the roster.
			online = false
		}
		members = append(members, &ports.CampusMember{Identity: ident, Online: online})
	}
	return members, nil
}

func (s *CampusService) publish(ctx context.Context, channel string, ev *domain.Event) {
	if err := s.bus.Publish(ctx, channel, ev); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(string(ev.Type), "error").Inc()
		s.log.Error().Err(err).Str("channel", channel).Str("type", string(ev.Type)).Msg("failed to publish event")
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(string(ev.Type), "ok").Inc()
}
