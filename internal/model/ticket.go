package model

import (
	"fmt"
	"time"
)

// Ticket lifecycle states.  SOLD and USED tickets occupy stand capacity;
// PENDING and VOIDED do not.
const (
	TicketPending = "PENDING"
	TicketSold    = "SOLD"
	TicketVoided  = "VOIDED"
	TicketUsed    = "USED"
)

// Ticket is a single seat sold for a match.  Tickets are created in
// batches by the issuer, flipped to USED by the simulation orchestrator
// when their match finishes, and may be VOIDED by an admin.
//
// Fields:
//  ID            – UUID primary key.
//  UserID        – buyer.
//  MatchID       – match the ticket admits to.
//  StandPriceID  – stand price the ticket was sold under; nil for
//                  unassigned-stand tickets, which are exempt from
//                  capacity accounting.
//  TransactionID – opaque payment transaction reference (UUID).
//  Code          – globally unique 8-char uppercase hex entry code.
//  PriceCents    – unit price paid, in cents.
//  Row, Seat     – cosmetic seat coordinates (row 1..30, seat 1..50);
//                  duplicates across tickets are allowed.
//  State         – one of the Ticket* constants.
//  PurchasedAt   – purchase timestamp (UTC).
type Ticket struct {
	ID            string    // tickets.id
	UserID        uint64    // tickets.id_users
	MatchID       uint64    // tickets.id_matches
	StandPriceID  *uint64   // tickets.id_match_stand_price (nullable)
	TransactionID string    // tickets.id_transaction
	Code          string    // tickets.ticket_code
	PriceCents    uint32    // tickets.price_cents
	Row           int       // tickets.seat_row
	Seat          int       // tickets.seat_number
	State         string    // tickets.state
	PurchasedAt   time.Time // tickets.purchased_at
}

// SeatInfo renders the human-readable seat description shown on the
// ticket, e.g. "Row 12 - Seat 34".  Empty when coordinates are unset.
func (t *Ticket) SeatInfo() string {
	if t.Row == 0 || t.Seat == 0 {
		return ""
	}
	return fmt.Sprintf("Row %d - Seat %d", t.Row, t.Seat)
}

// OccupiesCapacity reports whether the ticket counts against its stand's
// capacity: SOLD and USED do, PENDING and VOIDED do not.
func OccupiesCapacity(state string) bool {
	return state == TicketSold || state == TicketUsed
}
