package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/matchday/ticket-office/internal/model"
	"github.com/matchday/ticket-office/internal/simulation"
	"github.com/matchday/ticket-office/internal/ticketing"
)

// Store adapts the SQL repositories to the interfaces the core engines
// are written against (ticketing.Store and simulation.Store).  It owns
// transaction scoping: the engines receive a transaction-bound view and
// never see *sql.Tx directly, and it translates repository sentinels into
// the engines' error taxonomy.
type Store struct {
	db          *sql.DB
	matches     *MatchRepo
	users       *UserRepo
	stands      *StandRepo
	tickets     *TicketRepo
	simulations *SimulationRepo
}

// NewStore builds the adapter over an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:          db,
		matches:     NewMatchRepo(db),
		users:       NewUserRepo(db),
		stands:      NewStandRepo(db),
		tickets:     NewTicketRepo(db),
		simulations: NewSimulationRepo(db),
	}
}

// inTx runs fn inside one transaction with rollback on error, the same
// committed-flag shape the handlers use for their own transactions.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// --- ticketing.Store ---

// MatchByID translates ErrMatchNotFound into the issuer's sentinel.
func (s *Store) MatchByID(ctx context.Context, id uint64) (*model.Match, error) {
	m, err := s.matches.GetByID(ctx, id)
	if errors.Is(err, ErrMatchNotFound) {
		return nil, ticketing.ErrMatchNotFound
	}
	return m, err
}

// UserExists is the issuer's user-existence check.
func (s *Store) UserExists(ctx context.Context, id uint64) (bool, error) {
	return s.users.Exists(ctx, id)
}

// StandPriceForMatch translates ErrStandPriceNotFound into the issuer's
// sentinel.
func (s *Store) StandPriceForMatch(ctx context.Context, matchID, standPriceID uint64) (*model.StandPrice, error) {
	sp, err := s.stands.StandPriceForMatch(ctx, matchID, standPriceID)
	if errors.Is(err, ErrStandPriceNotFound) {
		return nil, ticketing.ErrStandPriceNotFound
	}
	return sp, err
}

// OccupiedSeats satisfies ticketing.CapacityReader for availability reads.
func (s *Store) OccupiedSeats(ctx context.Context, matchID, standPriceID uint64) (int, error) {
	return s.tickets.OccupiedSeats(ctx, matchID, standPriceID)
}

// issueTx is the transaction-bound view handed to the issuer.
type issueTx struct {
	tx    *sql.Tx
	store *Store
}

func (t *issueTx) OccupiedSeatsForUpdate(ctx context.Context, matchID, standPriceID uint64) (int, error) {
	count, err := t.store.tickets.OccupiedSeatsForUpdateTx(ctx, t.tx, matchID, standPriceID)
	if errors.Is(err, ErrStandPriceNotFound) {
		return 0, ticketing.ErrStandPriceNotFound
	}
	return count, err
}

func (t *issueTx) ExistingCodes(ctx context.Context, codes []string) ([]string, error) {
	return t.store.tickets.ExistingCodesTx(ctx, t.tx, codes)
}

func (t *issueTx) InsertTickets(ctx context.Context, tickets []model.Ticket) error {
	err := t.store.tickets.InsertBatchTx(ctx, t.tx, tickets)
	if errors.Is(err, ErrDuplicateTicketCode) {
		return ticketing.ErrCodeConflict
	}
	return err
}

// IssueTx runs one issuance inside a transaction.
func (s *Store) IssueTx(ctx context.Context, fn func(tx ticketing.IssueTx) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return fn(&issueTx{tx: tx, store: s})
	})
}

// --- simulation.Store ---

// MatchWithTeams translates ErrMatchNotFound into the orchestrator's
// sentinel.
func (s *Store) MatchWithTeams(ctx context.Context, matchID uint64) (*model.Match, error) {
	m, err := s.matches.GetWithTeams(ctx, matchID)
	if errors.Is(err, ErrMatchNotFound) {
		return nil, simulation.ErrMatchNotFound
	}
	return m, err
}

// SimulationExists is the orchestrator's cheap duplicate pre-check; the
// UNIQUE key behind InsertSimulation settles races it cannot see.
func (s *Store) SimulationExists(ctx context.Context, matchID uint64) (bool, error) {
	return s.simulations.ExistsByMatch(ctx, matchID)
}

// runTx is the transaction-bound view handed to the orchestrator.
type runTx struct {
	tx    *sql.Tx
	store *Store
}

func (t *runTx) InsertSimulation(ctx context.Context, sim *model.MatchSimulation) error {
	err := t.store.simulations.InsertTx(ctx, t.tx, sim)
	if errors.Is(err, ErrDuplicateSimulation) {
		return simulation.ErrAlreadySimulated
	}
	return err
}

func (t *runTx) InsertEvents(ctx context.Context, events []model.SimulationEvent) error {
	return t.store.simulations.InsertEventsTx(ctx, t.tx, events)
}

func (t *runTx) SetMatchState(ctx context.Context, matchID uint64, state string) error {
	return t.store.matches.SetStateTx(ctx, t.tx, matchID, state)
}

func (t *runTx) MarkTicketsUsed(ctx context.Context, matchID uint64) (int64, error) {
	return t.store.tickets.MarkUsedByMatchTx(ctx, t.tx, matchID)
}

// RunTx runs one simulation inside a transaction.
func (s *Store) RunTx(ctx context.Context, fn func(tx simulation.Tx) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return fn(&runTx{tx: tx, store: s})
	})
}

// Interface conformance is checked at compile time.
var (
	_ ticketing.Store          = (*Store)(nil)
	_ ticketing.CapacityReader = (*Store)(nil)
	_ simulation.Store         = (*Store)(nil)
)
