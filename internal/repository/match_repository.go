package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/matchday/ticket-office/internal/model"
)

// MatchRepo provides read access to matches and the state transition the
// simulation orchestrator performs.  Match CRUD lives with an external
// collaborator; the core only looks matches up and flips their state.
type MatchRepo struct {
	db *sql.DB
}

// NewMatchRepo returns a MatchRepo bound to the given database.
func NewMatchRepo(db *sql.DB) *MatchRepo { return &MatchRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *MatchRepo) DB() *sql.DB { return r.db }

// GetByID loads one match without team details.  Returns ErrMatchNotFound
// when the id does not exist.
func (r *MatchRepo) GetByID(ctx context.Context, id uint64) (*model.Match, error) {
	const q = `SELECT id, id_team_local, id_team_visitor, kickoff_at, stadium, state, created_at
	           FROM matches WHERE id = ?`
	var m model.Match
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&m.ID, &m.LocalTeamID, &m.VisitorTeamID, &m.KickoffAt, &m.Stadium, &m.State, &m.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetWithTeams loads a match with both team rows populated, including the
// external API ids needed for roster lookups.
func (r *MatchRepo) GetWithTeams(ctx context.Context, id uint64) (*model.Match, error) {
	const q = `SELECT m.id, m.id_team_local, m.id_team_visitor, m.kickoff_at, m.stadium, m.state, m.created_at,
	                  tl.id, tl.id_team_api, tl.name, tl.image_url,
	                  tv.id, tv.id_team_api, tv.name, tv.image_url
	           FROM matches m
	           JOIN teams tl ON tl.id = m.id_team_local
	           JOIN teams tv ON tv.id = m.id_team_visitor
	           WHERE m.id = ?`
	var (
		m     model.Match
		local model.Team
		visit model.Team
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&m.ID, &m.LocalTeamID, &m.VisitorTeamID, &m.KickoffAt, &m.Stadium, &m.State, &m.CreatedAt,
		&local.ID, &local.APIID, &local.Name, &local.ImageURL,
		&visit.ID, &visit.APIID, &visit.Name, &visit.ImageURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	m.Local = &local
	m.Visitor = &visit
	return &m, nil
}

// SetStateTx updates a match's lifecycle state within an existing
// transaction.  The caller commits or rolls back.
func (r *MatchRepo) SetStateTx(ctx context.Context, tx *sql.Tx, matchID uint64, state string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE matches SET state = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`, state, matchID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMatchNotFound
	}
	return nil
}
