package domain

import (
	"errors"
	"time"
)

// CampusStatus is the lifecycle state of a registered campus.
type CampusStatus string

const (
	CampusPending  CampusStatus = "PENDING"
	CampusActive   CampusStatus = "ACTIVE"
	CampusRejected CampusStatus = "REJECTED"
)

var ErrCampusNotFound = errors.New("campus not found")
var ErrCampusReviewed = errors.New("campus already reviewed")
var ErrNoCampus = errors.New("must belong to a campus")

// Campus is an isolated tenant. A campus is created PENDING by its
// registering admin and transitions to ACTIVE or REJECTED exactly once.
type Campus struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Type         string       `json:"type"`
	ContactEmail string       `json:"contactEmail"`
	Status       CampusStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Reviewed reports whether the campus has left the PENDING state.
func (c *Campus) Reviewed() bool {
	return c.Status != CampusPending
}
