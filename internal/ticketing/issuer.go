package ticketing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matchday/ticket-office/internal/model"
)

// Quantity bounds for a single issuance request.
const (
	MinQuantity = 1
	MaxQuantity = 10
)

// Sentinel errors surfaced by the issuer.  Handlers translate these into
// HTTP statuses with errors.Is.
var (
	ErrQuantityOutOfRange = errors.New("quantity must be between 1 and 10")
	ErrMatchNotFound      = errors.New("match not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrStandPriceNotFound = errors.New("stand price not found for this match")
	ErrCodeConflict       = errors.New("ticket codes collided with a concurrent purchase")
)

// CapacityError reports an issuance request that exceeds the stand's
// remaining capacity.  Available carries the exact remaining count so the
// client can retry with a smaller quantity.
type CapacityError struct {
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("only %d ticket(s) available for this stand", e.Available)
}

// Store is the persistence boundary the issuer works against.  The SQL
// implementation lives in internal/repository; tests supply in-memory
// fakes.
type Store interface {
	// MatchByID returns the match or ErrMatchNotFound.
	MatchByID(ctx context.Context, id uint64) (*model.Match, error)
	// UserExists reports whether the buyer exists.
	UserExists(ctx context.Context, id uint64) (bool, error)
	// StandPriceForMatch returns the stand price with its stand joined,
	// or ErrStandPriceNotFound when the pair does not belong together.
	StandPriceForMatch(ctx context.Context, matchID, standPriceID uint64) (*model.StandPrice, error)
	// IssueTx runs fn inside one transaction; any error from fn rolls
	// the whole batch back so partial batches are never observable.
	IssueTx(ctx context.Context, fn func(tx IssueTx) error) error
}

// IssueTx is the transaction-scoped slice of the store.  The occupied
// count must lock the stand-price row so concurrent issuance requests for
// the same stand serialize on the capacity check.
type IssueTx interface {
	CodeIndex
	// OccupiedSeatsForUpdate counts tickets occupying capacity (SOLD or
	// USED) for the stand price, locking its row until commit.
	OccupiedSeatsForUpdate(ctx context.Context, matchID, standPriceID uint64) (int, error)
	// InsertTickets persists the whole batch in one statement.  A
	// unique-key collision with a code committed by a concurrent
	// issuance surfaces as ErrCodeConflict.
	InsertTickets(ctx context.Context, tickets []model.Ticket) error
}

// IssueRequest describes one purchase of N tickets under a single
// transaction reference.
type IssueRequest struct {
	UserID        uint64
	MatchID       uint64
	StandPriceID  *uint64 // nil issues unassigned-stand tickets, exempt from capacity accounting
	TransactionID string  // generated when empty
	PriceCents    uint32
	Quantity      int
}

// IssueResult is the outcome of a successful issuance.
type IssueResult struct {
	Tickets         []model.Ticket
	TotalPriceCents uint64
	TransactionID   string
}

// Issuer orchestrates validation, the capacity check, code generation and
// the atomic batch insert.  It never mutates matches or users.
type Issuer struct {
	store Store
	codes *CodeGenerator
	seats *SeatPicker
	now   func() time.Time
}

// NewIssuer wires an issuer over the given store.  Passing nil for codes
// or seats selects production randomness.
func NewIssuer(store Store, codes *CodeGenerator, seats *SeatPicker) *Issuer {
	if codes == nil {
		codes = NewCodeGenerator(nil)
	}
	if seats == nil {
		seats = NewSeatPicker(nil)
	}
	return &Issuer{store: store, codes: codes, seats: seats, now: time.Now}
}

// Issue validates the request, checks remaining capacity under a row lock
// and persists quantity tickets as one atomic batch: either every ticket
// is durably written or none is.
func (i *Issuer) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	if req.Quantity < MinQuantity || req.Quantity > MaxQuantity {
		return nil, ErrQuantityOutOfRange
	}
	if _, err := i.store.MatchByID(ctx, req.MatchID); err != nil {
		return nil, err
	}
	ok, err := i.store.UserExists(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotFound
	}
	if req.StandPriceID != nil {
		if _, err := i.store.StandPriceForMatch(ctx, req.MatchID, *req.StandPriceID); err != nil {
			return nil, err
		}
	}
	if req.TransactionID == "" {
		req.TransactionID = uuid.NewString()
	}

	var issued []model.Ticket
	err = i.store.IssueTx(ctx, func(tx IssueTx) error {
		if req.StandPriceID != nil {
			sp, err := i.store.StandPriceForMatch(ctx, req.MatchID, *req.StandPriceID)
			if err != nil {
				return err
			}
			occupied, err := tx.OccupiedSeatsForUpdate(ctx, req.MatchID, *req.StandPriceID)
			if err != nil {
				return err
			}
			available := sp.Stand.TotalCapacity - occupied
			if req.Quantity > available {
				return &CapacityError{Available: available}
			}
		}

		codes, err := i.codes.Generate(ctx, tx, req.Quantity)
		if err != nil {
			return err
		}

		purchasedAt := i.now().UTC()
		batch := make([]model.Ticket, 0, req.Quantity)
		for _, code := range codes {
			row, seat := i.seats.Pick()
			batch = append(batch, model.Ticket{
				ID:            uuid.NewString(),
				UserID:        req.UserID,
				MatchID:       req.MatchID,
				StandPriceID:  req.StandPriceID,
				TransactionID: req.TransactionID,
				Code:          code,
				PriceCents:    req.PriceCents,
				Row:           row,
				Seat:          seat,
				State:         model.TicketSold,
				PurchasedAt:   purchasedAt,
			})
		}
		if err := tx.InsertTickets(ctx, batch); err != nil {
			return err
		}
		issued = batch
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &IssueResult{
		Tickets:         issued,
		TotalPriceCents: uint64(req.PriceCents) * uint64(req.Quantity),
		TransactionID:   req.TransactionID,
	}, nil
}
