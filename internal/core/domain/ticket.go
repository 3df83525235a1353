package domain

import (
	"errors"
	"time"
)

// TicketStatus represents the lifecycle state of a ticket.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "OPEN"
	TicketInProgress TicketStatus = "IN_PROGRESS"
	TicketResolved   TicketStatus = "RESOLVED"
	TicketClosed     TicketStatus = "CLOSED"
)

// TicketPriority is assigned once at creation from the classifier result.
type TicketPriority string

const (
	PriorityLow      TicketPriority = "LOW"
	PriorityMedium   TicketPriority = "MEDIUM"
	PriorityHigh     TicketPriority = "HIGH"
	PriorityCritical TicketPriority = "CRITICAL"
)

// validTransitions defines the allowed state machine transitions.
// CLOSED is reachable from any non-terminal state (administrative close);
// RESOLVED and CLOSED have no path back to OPEN.
var validTransitions = map[TicketStatus][]TicketStatus{
	TicketOpen:       {TicketInProgress, TicketClosed},
	TicketInProgress: {TicketResolved, TicketClosed},
	TicketResolved:   {TicketClosed},
}

var ErrTicketNotFound = errors.New("ticket not found")
var ErrInvalidTransition = errors.New("invalid status transition")

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known ticket status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketOpen, TicketInProgress, TicketResolved, TicketClosed:
		return true
	}
	return false
}

// Ticket is a facility issue reported by a campus member. Category and
// priority are set synchronously at creation from the classifier result and
// never change afterwards.
type Ticket struct {
	ID          string         `json:"id"`
	CampusID    string         `json:"campusId"`
	CreatorID   string         `json:"creatorId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Location    string         `json:"location"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	Category    string         `json:"category,omitempty"`
	Priority    TicketPriority `json:"priority"`
	Status      TicketStatus   `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
