package model

import "testing"

func TestSeatInfo(t *testing.T) {
	ticket := &Ticket{Row: 12, Seat: 34}
	if got := ticket.SeatInfo(); got != "Row 12 - Seat 34" {
		t.Errorf("Unexpected seat info %q", got)
	}
	if got := (&Ticket{}).SeatInfo(); got != "" {
		t.Errorf("Expected empty seat info without coordinates, got %q", got)
	}
}

func TestOccupiesCapacity(t *testing.T) {
	cases := map[string]bool{
		TicketSold:    true,
		TicketUsed:    true,
		TicketPending: false,
		TicketVoided:  false,
	}
	for state, want := range cases {
		if got := OccupiesCapacity(state); got != want {
			t.Errorf("State %s: expected %v, got %v", state, want, got)
		}
	}
}
