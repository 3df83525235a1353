package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// EventType identifies the kind of real-time notification carried on the bus.
type EventType string

const (
	EventTicketCreated    EventType = "TICKET_CREATED"
	EventTicketUpdated    EventType = "TICKET_UPDATED"
	EventAssetRiskUpdated EventType = "ASSET_RISK_UPDATED"
	EventCampusRegistered EventType = "CAMPUS_REGISTERED"
	EventCampusReviewed   EventType = "CAMPUS_REVIEWED"
	EventSystemAlert      EventType = "SYSTEM_ALERT"
)

// AudienceStaff is the sentinel UserID addressing the staff of the event's
// campus (or platform super admins on the platform channel) instead of a
// single identity. The gateway resolves the actual recipient set at
// dispatch time.
const AudienceStaff = "ADMIN"

// PlatformChannel carries platform-level events (campus registrations)
// consumed by super admins.
const PlatformChannel = "system:notifications"

// CampusChannelPattern matches every per-campus channel; the gateway
// pattern-subscribes to it so one tenant's event volume never requires
// enumerating tenants.
const CampusChannelPattern = "campus:*:events"

// CampusChannel returns the per-campus event channel name.
func CampusChannel(campusID string) string {
	return fmt.Sprintf("campus:%s:events", campusID)
}

// Event is an immutable, ephemeral notification. It exists only in transit
// on the bus and as a delivered socket frame; there is no replay.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	CampusID    string    `json:"campusId,omitempty"`
	TicketID    string    `json:"ticketId,omitempty"`
	AssetID     string    `json:"assetId,omitempty"`
	Title       string    `json:"title,omitempty"`
	Name        string    `json:"name,omitempty"`
	Status      string    `json:"status,omitempty"`
	Priority    string    `json:"priority,omitempty"`
	FailureRisk *float64  `json:"failureRisk,omitempty"`
	// UserID is either a specific identity id or AudienceStaff.
	UserID string `json:"userId"`
}

// NewEvent returns an Event of the given type with a fresh id, addressed to
// userID (an identity id or AudienceStaff).
func NewEvent(t EventType, campusID, userID string) *Event {
	return &Event{
		ID:       uuid.NewString(),
		Type:     t,
		CampusID: campusID,
		UserID:   userID,
	}
}
