package ports

import (
	"context"
	"time"

	"github.com/campuscare/campuscare/internal/core/domain"
)

// CreateTicketInput is the DTO passed from the transport layer to TicketService.
type CreateTicketInput struct {
	Title       string
	Description string
	Location    string
	ImageURL    string
}

// TicketWithAnalysis pairs a created ticket with the classifier verdict
// that labelled it.
type TicketWithAnalysis struct {
	Ticket   *domain.Ticket
	Analysis Analysis
}

// TicketService owns the ticket lifecycle. Every mutating operation is
// tenant-scoped through the acting identity.
type TicketService interface {
	Create(ctx context.Context, actor *domain.Identity, in CreateTicketInput) (*TicketWithAnalysis, error)
	UpdateStatus(ctx context.Context, actor *domain.Identity, ticketID string, next domain.TicketStatus) (*domain.Ticket, error)
	// ListMine returns the actor's own tickets, newest first.
	ListMine(ctx context.Context, actor *domain.Identity) ([]*domain.Ticket, error)
	// ListAll returns every ticket of the actor's campus, newest first.
	ListAll(ctx context.Context, actor *domain.Identity) ([]*domain.Ticket, error)
}

// TicketRepository defines persistence operations for tickets. All lookups
// carry the campus id so cross-tenant reads are impossible at this layer.
type TicketRepository interface {
	Create(ctx context.Context, t *domain.Ticket) error
	FindByID(ctx context.Context, id, campusID string) (*domain.Ticket, error)
	// UpdateStatus moves a ticket from one status to another in a single
	// conditional write. The from status is part of the match, so a
	// concurrent writer that changed the ticket first makes this call fail
	// with ErrInvalidTransition instead of clobbering the newer state.
	UpdateStatus(ctx context.Context, id, campusID string, from, to domain.TicketStatus, at time.Time) (*domain.Ticket, error)
	ListByCreator(ctx context.Context, creatorID, campusID string) ([]*domain.Ticket, error)
	ListByCampus(ctx context.Context, campusID string) ([]*domain.Ticket, error)
}
