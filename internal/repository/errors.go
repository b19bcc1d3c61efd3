// Package repository implements MySQL persistence for the ticket office.
// Sentinel errors defined here let handlers distinguish failure scenarios
// without inspecting driver errors: not-found values map to HTTP 404,
// ErrForbidden to 403.
package repository

import "errors"

// ErrMatchNotFound is returned when a match id does not exist.
var ErrMatchNotFound = errors.New("match not found")

// ErrTicketNotFound is returned when a ticket id does not exist.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrSimulationNotFound is returned when a match has no stored simulation.
var ErrSimulationNotFound = errors.New("simulation not found")

// ErrStandPriceNotFound is returned when a stand price does not exist for
// the requested match.
var ErrStandPriceNotFound = errors.New("stand price not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, e.g. reading another user's ticket.
var ErrForbidden = errors.New("forbidden")
