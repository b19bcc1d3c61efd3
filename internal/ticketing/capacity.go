package ticketing

import (
	"context"

	"github.com/matchday/ticket-office/internal/model"
)

// CapacityReader is the read-side slice of the store used for availability
// queries outside an issuance transaction.
type CapacityReader interface {
	StandPriceForMatch(ctx context.Context, matchID, standPriceID uint64) (*model.StandPrice, error)
	// OccupiedSeats counts tickets in a capacity-occupying state (SOLD
	// or USED) for the stand price, without locking.
	OccupiedSeats(ctx context.Context, matchID, standPriceID uint64) (int, error)
}

// CapacityIndex computes remaining capacity for a (match, stand price)
// pair: stand.total_capacity minus the number of sold-or-used tickets.
// Issuance does not use this type directly; it re-runs the same arithmetic
// under a row lock inside its transaction.
type CapacityIndex struct {
	store CapacityReader
}

// NewCapacityIndex returns an index over the given reader.
func NewCapacityIndex(store CapacityReader) *CapacityIndex {
	return &CapacityIndex{store: store}
}

// Available returns the number of tickets still sellable for the stand
// price, or ErrStandPriceNotFound when the pair does not exist for the
// match.
func (x *CapacityIndex) Available(ctx context.Context, matchID, standPriceID uint64) (int, error) {
	sp, err := x.store.StandPriceForMatch(ctx, matchID, standPriceID)
	if err != nil {
		return 0, err
	}
	occupied, err := x.store.OccupiedSeats(ctx, matchID, standPriceID)
	if err != nil {
		return 0, err
	}
	return sp.Stand.TotalCapacity - occupied, nil
}
