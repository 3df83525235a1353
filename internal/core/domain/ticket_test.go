package domain

import "testing"

func TestTicketStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from    TicketStatus
		to      TicketStatus
		allowed bool
	}{
		{TicketOpen, TicketInProgress, true},
		{TicketOpen, TicketClosed, true},
		{TicketOpen, TicketResolved, false},
		{TicketOpen, TicketOpen, false},
		{TicketInProgress, TicketResolved, true},
		{TicketInProgress, TicketClosed, true},
		{TicketInProgress, TicketOpen, false},
		{TicketInProgress, TicketInProgress, false},
		{TicketResolved, TicketClosed, true},
		{TicketResolved, TicketOpen, false},
		{TicketResolved, TicketInProgress, false},
		{TicketClosed, TicketOpen, false},
		{TicketClosed, TicketInProgress, false},
		{TicketClosed, TicketResolved, false},
		{TicketClosed, TicketClosed, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.allowed {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.allowed)
		}
	}
}

func TestTicketStatus_Valid(t *testing.T) {
	for _, s := range []TicketStatus{TicketOpen, TicketInProgress, TicketResolved, TicketClosed} {
		if !s.Valid() {
			t.Errorf("%s must be valid", s)
		}
	}
	if TicketStatus("ARCHIVED").Valid() {
		t.Error("unknown status must not be valid")
	}
}
