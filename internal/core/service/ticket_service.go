package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/campuscare/campuscare/internal/core/domain"
	"github.com/campuscare/campuscare/internal/core/ports"
	"github.com/campuscare/campuscare/internal/pkg/metrics"
)

// TicketService owns the ticket lifecycle and emits a bus event on every
// successful transition.
type TicketService struct {
	repo            ports.TicketRepository
	classifier      ports.Classifier
	bus             ports.EventBus
	classifyTimeout time.Duration
	log             zerolog.Logger
}

func NewTicketService(repo ports.TicketRepository, classifier ports.Classifier, bus ports.EventBus, classifyTimeout time.Duration, log zerolog.Logger) *TicketService {
	if classifyTimeout <= 0 {
		classifyTimeout = 8 * time.Second
	}
	return &TicketService{repo: repo, classifier: classifier, bus: bus, classifyTimeout: classifyTimeout, log: log}
}

// Create files a new OPEN ticket for the actor's campus. The classifier is
// consulted synchronously with a bounded timeout; on any failure the
// fallback label is applied and creation proceeds.
func (s *TicketService) Create(ctx context.Context, actor *domain.Identity, in ports.CreateTicketInput) (*ports.TicketWithAnalysis, error) {
	if actor.CampusID == "" {
		return nil, domain.ErrNoCampus
	}

	analysis := s.classify(ctx, in.Description)

	now := time.Now().UTC()
	ticket := &domain.Ticket{
		CampusID:    actor.CampusID,
		CreatorID:   actor.ID,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		ImageURL:    in.ImageURL,
		Category:    analysis.Category,
		Priority:    domain.TicketPriority(analysis.Priority),
		Status:      domain.TicketOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, ticket); err != nil {
		s.log.Error().Err(err).Str("campus_id", actor.CampusID).Msg("failed to create ticket")
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	metrics.TicketsCreatedTotal.WithLabelValues(string(ticket.Priority), ticket.Category).Inc()
	s.log.Info().
		Str("ticket_id", ticket.ID).
		Str("campus_id", ticket.CampusID).
		Str("priority", string(ticket.Priority)).
		Bool("hazard", analysis.IsHazard).
		Msg("ticket created")

	ev := domain.NewEvent(domain.EventTicketCreated, ticket.CampusID, domain.AudienceStaff)
	ev.TicketID = ticket.ID
	ev.Title = ticket.Title
	ev.Priority = string(ticket.Priority)
	s.publish(ctx, domain.CampusChannel(ticket.CampusID), ev)

	return &ports.TicketWithAnalysis{Ticket: ticket, Analysis: analysis}, nil
}

// UpdateStatus applies a staff state transition. The lookup is campus
// scoped, so a ticket in another tenant is indistinguishable from a
// missing one.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.Identity, ticketID string, next domain.TicketStatus) (*domain.Ticket, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}
	if actor.CampusID == "" {
		return nil, domain.ErrNoCampus
	}

	ticket, err := s.repo.FindByID(ctx, ticketID, actor.CampusID)
	if err != nil {
		return nil, fmt.Errorf("update ticket status: %w", err)
	}

	if !ticket.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, ticket.Status, next)
	}

	// The repository re-checks the from status inside the write, so a
	// concurrent transition that lands between the read above and this
	// update surfaces as ErrInvalidTransition rather than overwriting it.
	updated, err := s.repo.UpdateStatus(ctx, ticketID, actor.CampusID, ticket.Status, next, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update ticket status: %w", err)
	}

	s.log.Info().
		Str("ticket_id", updated.ID).
		Str("from", string(ticket.Status)).
		Str("to", string(updated.Status)).
		Str("actor_id", actor.ID).
		Msg("ticket status updated")

	ev := domain.NewEvent(domain.EventTicketUpdated, updated.CampusID, updated.CreatorID)
	ev.TicketID = updated.ID
	ev.Status = string(updated.Status)
	s.publish(ctx, domain.CampusChannel(updated.CampusID), ev)

	return updated, nil
}

func (s *TicketService) ListMine(ctx context.Context, actor *domain.Identity) ([]*domain.Ticket, error) {
	if actor.CampusID == "" {
		return nil, domain.ErrNoCampus
	}
	return s.repo.ListByCreator(ctx, actor.ID, actor.CampusID)
}

func (s *TicketService) ListAll(ctx context.Context, actor *domain.Identity) ([]*domain.Ticket, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}
	if actor.CampusID == "" {
		return nil, domain.ErrNoCampus
	}
	return s.repo.ListByCampus(ctx, actor.CampusID)
}

// classify runs the external classifier with a bounded timeout, degrading
// to the safe fallback label on any error.
func (s *TicketService) classify(ctx context.Context, text string) ports.Analysis {
	classifyCtx, cancel := context.WithTimeout(ctx, s.classifyTimeout)
	defer cancel()

	analysis, err := s.classifier.Classify(classifyCtx, text)
	if err != nil {
		metrics.ClassifierFallbackTotal.Inc()
		s.log.Warn().Err(err).Msg("classifier unavailable, applying fallback label")
		return ports.FallbackAnalysis()
	}
	return analysis
}

// publish sends a lifecycle event to the bus. Failures are logged and
// swallowed: the datastore mutation is already committed and stays
// authoritative, real-time observers catch up on their next poll.
func (s *TicketService) publish(ctx context.Context, channel string, ev *domain.Event) {
	if err := s.bus.Publish(ctx, channel, ev); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(string(ev.Type), "error").Inc()
		s.log.Error().Err(err).Str("channel", channel).Str("type", string(ev.Type)).Msg("failed to publish event")
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(string(ev.Type), "ok").Inc()
}
