package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/matchday/ticket-office/internal/model"
)

// TicketRepo provides data access to the tickets table.  Writes that are
// part of the issuance or simulation transactions come as ...Tx variants;
// the caller owns commit/rollback.  All timestamps are UTC.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *TicketRepo) DB() *sql.DB { return r.db }

// ErrDuplicateTicketCode is returned when the batch insert trips the
// UNIQUE key on tickets.ticket_code.  Two concurrent issuances for
// different stands can draw the same code without either transaction's
// uniqueness check seeing the other's uncommitted rows; the key settles
// that race and the losing purchase can simply be retried.
var ErrDuplicateTicketCode = errors.New("ticket code already taken")

// InsertBatchTx inserts the whole ticket batch in a single statement so a
// failed issuance leaves no partial rows behind.  A duplicate-key failure
// (MySQL 1062) maps to ErrDuplicateTicketCode.  Passing an empty slice
// has no effect and returns nil.
func (r *TicketRepo) InsertBatchTx(ctx context.Context, tx *sql.Tx, tickets []model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	query := `INSERT INTO tickets
	          (id, id_users, id_matches, id_match_stand_price, id_transaction, ticket_code, price_cents, seat_row, seat_number, state, purchased_at)
	          VALUES `
	args := make([]interface{}, 0, len(tickets)*11)
	for i, t := range tickets {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args,
			t.ID, t.UserID, t.MatchID, t.StandPriceID, t.TransactionID, t.Code,
			t.PriceCents, t.Row, t.Seat, t.State,
			t.PurchasedAt.UTC().Format("2006-01-02 15:04:05"),
		)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateTicketCode
		}
		return err
	}
	return nil
}

// ExistingCodesTx returns the subset of candidate codes already present in
// the tickets table, observed from within the issuance transaction.
func (r *TicketRepo) ExistingCodesTx(ctx context.Context, tx *sql.Tx, codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(codes))
	args := make([]interface{}, len(codes))
	for i, code := range codes {
		placeholders[i] = "?"
		args[i] = code
	}
	query := `SELECT ticket_code FROM tickets WHERE ticket_code IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var existing []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		existing = append(existing, code)
	}
	return existing, rows.Err()
}

// OccupiedSeatsForUpdateTx counts capacity-occupying tickets for a stand
// price after taking a row lock on the stand price itself.  The lock
// serializes concurrent issuance requests for the same stand: the second
// request blocks here until the first commits, then counts a snapshot that
// includes the first batch, so the pair can never jointly oversell.
func (r *TicketRepo) OccupiedSeatsForUpdateTx(ctx context.Context, tx *sql.Tx, matchID, standPriceID uint64) (int, error) {
	var locked uint64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM match_stand_prices WHERE id = ? AND id_match = ? FOR UPDATE`,
		standPriceID, matchID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrStandPriceNotFound
	}
	if err != nil {
		return 0, err
	}
	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets
		 WHERE id_matches = ? AND id_match_stand_price = ? AND state IN ('SOLD','USED')`,
		matchID, standPriceID).Scan(&count)
	return count, err
}

// OccupiedSeats is the lock-free variant used by availability reads
// outside an issuance transaction.
func (r *TicketRepo) OccupiedSeats(ctx context.Context, matchID, standPriceID uint64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets
		 WHERE id_matches = ? AND id_match_stand_price = ? AND state IN ('SOLD','USED')`,
		matchID, standPriceID).Scan(&count)
	return count, err
}

// CountOccupyingByMatch counts all capacity-occupying tickets of a match
// across its stands.  Unassigned-stand tickets are excluded; they never
// consume stand capacity.
func (r *TicketRepo) CountOccupyingByMatch(ctx context.Context, matchID uint64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets
		 WHERE id_matches = ? AND id_match_stand_price IS NOT NULL AND state IN ('SOLD','USED')`,
		matchID).Scan(&count)
	return count, err
}

// MarkUsedByMatchTx flips every SOLD ticket of the match to USED within
// the simulation transaction and returns the number updated.  VOIDED and
// PENDING tickets are left untouched.
func (r *TicketRepo) MarkUsedByMatchTx(ctx context.Context, tx *sql.Tx, matchID uint64) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE tickets SET state = 'USED' WHERE id_matches = ? AND state = 'SOLD'`, matchID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateState moves one ticket to a new state.  Used by the admin voiding
// endpoint; capacity accounting picks the change up automatically since
// VOIDED tickets stop counting.
func (r *TicketRepo) UpdateState(ctx context.Context, ticketID, state string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET state = ? WHERE id = ?`, state, ticketID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// GetByID loads one ticket row.
func (r *TicketRepo) GetByID(ctx context.Context, ticketID string) (*model.Ticket, error) {
	const q = `SELECT id, id_users, id_matches, id_match_stand_price, id_transaction, ticket_code,
	                  price_cents, seat_row, seat_number, state, purchased_at
	           FROM tickets WHERE id = ?`
	var (
		t            model.Ticket
		standPriceID sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, q, ticketID).Scan(
		&t.ID, &t.UserID, &t.MatchID, &standPriceID, &t.TransactionID, &t.Code,
		&t.PriceCents, &t.Row, &t.Seat, &t.State, &t.PurchasedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	if standPriceID.Valid {
		id := uint64(standPriceID.Int64)
		t.StandPriceID = &id
	}
	return &t, nil
}

// TicketDetail is a ticket joined with its match and stand context for
// customer-facing listings.
type TicketDetail struct {
	ID          string    `json:"id"`
	Code        string    `json:"ticket_code"`
	PriceCents  uint32    `json:"price_cents"`
	State       string    `json:"state"`
	Row         int       `json:"row"`
	Seat        int       `json:"seat"`
	SeatInfo    string    `json:"seat_info"`
	PurchasedAt time.Time `json:"purchased_at"`
	MatchID     uint64    `json:"match_id"`
	KickoffAt   time.Time `json:"kickoff_at"`
	Stadium     string    `json:"stadium"`
	MatchState  string    `json:"match_state"`
	LocalTeam   string    `json:"local_team"`
	VisitorTeam string    `json:"visitor_team"`
	StandName   *string   `json:"stand_name,omitempty"`
}

// ListByUser returns the user's tickets, newest purchase first, with match
// and stand context joined in.  Tickets without a stand price come back
// with a nil stand name.
func (r *TicketRepo) ListByUser(ctx context.Context, userID uint64) ([]TicketDetail, error) {
	const q = `SELECT t.id, t.ticket_code, t.price_cents, t.state, t.seat_row, t.seat_number, t.purchased_at,
	                  m.id, m.kickoff_at, m.stadium, m.state,
	                  tl.name, tv.name, s.name
	           FROM tickets t
	           JOIN matches m ON m.id = t.id_matches
	           JOIN teams tl ON tl.id = m.id_team_local
	           JOIN teams tv ON tv.id = m.id_team_visitor
	           LEFT JOIN match_stand_prices msp ON msp.id = t.id_match_stand_price
	           LEFT JOIN stands s ON s.id = msp.id_stand
	           WHERE t.id_users = ?
	           ORDER BY t.purchased_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]TicketDetail, 0)
	for rows.Next() {
		var (
			d         TicketDetail
			standName sql.NullString
		)
		if err := rows.Scan(
			&d.ID, &d.Code, &d.PriceCents, &d.State, &d.Row, &d.Seat, &d.PurchasedAt,
			&d.MatchID, &d.KickoffAt, &d.Stadium, &d.MatchState,
			&d.LocalTeam, &d.VisitorTeam, &standName,
		); err != nil {
			return nil, err
		}
		if standName.Valid {
			name := standName.String
			d.StandName = &name
		}
		if d.Row > 0 && d.Seat > 0 {
			d.SeatInfo = (&model.Ticket{Row: d.Row, Seat: d.Seat}).SeatInfo()
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
