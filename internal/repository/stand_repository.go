package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/matchday/ticket-office/internal/model"
)

// StandRepo reads stands and per-match stand prices.  Both are reference
// data to the core: stands are static and stand prices are created with
// their match by an external collaborator.
type StandRepo struct {
	db *sql.DB
}

// NewStandRepo returns a StandRepo bound to the given database.
func NewStandRepo(db *sql.DB) *StandRepo { return &StandRepo{db: db} }

// StandPriceForMatch loads one stand price and its stand, verifying that
// the price belongs to the given match.  A stand price that exists but
// hangs off a different match is reported as ErrStandPriceNotFound, same
// as a missing one.
func (r *StandRepo) StandPriceForMatch(ctx context.Context, matchID, standPriceID uint64) (*model.StandPrice, error) {
	const q = `SELECT msp.id, msp.id_match, msp.id_stand, msp.price_cents, msp.created_at,
	                  s.id, s.name, s.total_capacity, s.description, s.created_at
	           FROM match_stand_prices msp
	           JOIN stands s ON s.id = msp.id_stand
	           WHERE msp.id = ? AND msp.id_match = ?`
	var (
		sp    model.StandPrice
		stand model.Stand
	)
	err := r.db.QueryRowContext(ctx, q, standPriceID, matchID).Scan(
		&sp.ID, &sp.MatchID, &sp.StandID, &sp.PriceCents, &sp.CreatedAt,
		&stand.ID, &stand.Name, &stand.TotalCapacity, &stand.Description, &stand.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStandPriceNotFound
	}
	if err != nil {
		return nil, err
	}
	sp.Stand = &stand
	return &sp, nil
}

// StandSummary aggregates sales for one stand of a match.  Sold counts
// include USED tickets (capacity stays consumed after the match finishes);
// VOIDED and PENDING tickets free their seats.
type StandSummary struct {
	StandPriceID  uint64 `json:"stand_price_id"`
	StandID       uint64 `json:"stand_id"`
	Name          string `json:"stand_name"`
	Description   string `json:"description"`
	TotalCapacity int    `json:"total_capacity"`
	PriceCents    uint32 `json:"price_cents"`
	TicketsSold   int    `json:"tickets_sold"`
	RevenueCents  uint64 `json:"revenue_cents"`
}

// SummariesByMatch returns one summary per stand priced for the match,
// ordered by stand name.  An empty result means the match has no stands
// configured.
func (r *StandRepo) SummariesByMatch(ctx context.Context, matchID uint64) ([]StandSummary, error) {
	const q = `SELECT msp.id, msp.id_stand, s.name, s.description, s.total_capacity, msp.price_cents,
	                  COALESCE(SUM(CASE WHEN t.state IN ('SOLD','USED') THEN 1 ELSE 0 END), 0),
	                  COALESCE(SUM(CASE WHEN t.state IN ('SOLD','USED') THEN msp.price_cents ELSE 0 END), 0)
	           FROM match_stand_prices msp
	           JOIN stands s ON s.id = msp.id_stand
	           LEFT JOIN tickets t
	                  ON t.id_match_stand_price = msp.id
	                 AND t.id_matches = msp.id_match
	           WHERE msp.id_match = ?
	           GROUP BY msp.id, msp.id_stand, s.name, s.description, s.total_capacity, msp.price_cents
	           ORDER BY s.name ASC`
	rows, err := r.db.QueryContext(ctx, q, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]StandSummary, 0)
	for rows.Next() {
		var s StandSummary
		if err := rows.Scan(
			&s.StandPriceID, &s.StandID, &s.Name, &s.Description, &s.TotalCapacity,
			&s.PriceCents, &s.TicketsSold, &s.RevenueCents,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}
