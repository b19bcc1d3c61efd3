package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/matchday/ticket-office/internal/model"
)

// SimulationRepo persists match simulations and their event timelines.
// Both are write-once: rows are inserted inside the orchestrator's
// transaction and never updated afterwards.
type SimulationRepo struct {
	db *sql.DB
}

// NewSimulationRepo returns a SimulationRepo bound to the given database.
func NewSimulationRepo(db *sql.DB) *SimulationRepo { return &SimulationRepo{db: db} }

// ErrDuplicateSimulation is returned when an insert collides with the
// UNIQUE key on match_simulations.id_matches.  It is the authoritative
// guard against two concurrent simulation runs for the same match.
var ErrDuplicateSimulation = errors.New("simulation already exists for this match")

// InsertTx inserts the simulation row and populates its generated ID.
// A duplicate-key failure (MySQL 1062) maps to ErrDuplicateSimulation.
func (r *SimulationRepo) InsertTx(ctx context.Context, tx *sql.Tx, sim *model.MatchSimulation) error {
	const q = `INSERT INTO match_simulations
	           (id_matches, local_goals, visitor_goals,
	            local_goals_first_half, local_goals_second_half,
	            visitor_goals_first_half, visitor_goals_second_half,
	            local_possession, visitor_possession,
	            local_yellow_cards, visitor_yellow_cards,
	            local_red_cards, visitor_red_cards,
	            local_shots_on_goal, visitor_shots_on_goal)
	           VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err := tx.ExecContext(ctx, q,
		sim.MatchID, sim.LocalGoals, sim.VisitorGoals,
		sim.LocalGoalsFirstHalf, sim.LocalGoalsSecondHalf,
		sim.VisitorGoalsFirstHalf, sim.VisitorGoalsSecondHalf,
		sim.LocalPossession, sim.VisitorPossession,
		sim.LocalYellowCards, sim.VisitorYellowCards,
		sim.LocalRedCards, sim.VisitorRedCards,
		sim.LocalShotsOnGoal, sim.VisitorShotsOnGoal,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateSimulation
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sim.ID = uint64(id)
	return nil
}

// InsertEventsTx inserts all timeline events in one statement.  Passing an
// empty slice (a 0-0 match with no cards) has no effect and returns nil.
func (r *SimulationRepo) InsertEventsTx(ctx context.Context, tx *sql.Tx, events []model.SimulationEvent) error {
	if len(events) == 0 {
		return nil
	}
	query := `INSERT INTO simulation_events (id_match_simulations, id_teams, minute, type_event, player) VALUES `
	args := make([]interface{}, 0, len(events)*5)
	for i, ev := range events {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, ev.SimulationID, ev.TeamID, ev.Minute, ev.Type, ev.Player)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ExistsByMatch reports whether the match already has a simulation.
func (r *SimulationRepo) ExistsByMatch(ctx context.Context, matchID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM match_simulations WHERE id_matches = ? LIMIT 1`, matchID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByMatch loads the stored simulation for a match, or
// ErrSimulationNotFound.
func (r *SimulationRepo) GetByMatch(ctx context.Context, matchID uint64) (*model.MatchSimulation, error) {
	const q = `SELECT id, id_matches, local_goals, visitor_goals,
	                  local_goals_first_half, local_goals_second_half,
	                  visitor_goals_first_half, visitor_goals_second_half,
	                  local_possession, visitor_possession,
	                  local_yellow_cards, visitor_yellow_cards,
	                  local_red_cards, visitor_red_cards,
	                  local_shots_on_goal, visitor_shots_on_goal, created_at
	           FROM match_simulations WHERE id_matches = ?`
	var sim model.MatchSimulation
	err := r.db.QueryRowContext(ctx, q, matchID).Scan(
		&sim.ID, &sim.MatchID, &sim.LocalGoals, &sim.VisitorGoals,
		&sim.LocalGoalsFirstHalf, &sim.LocalGoalsSecondHalf,
		&sim.VisitorGoalsFirstHalf, &sim.VisitorGoalsSecondHalf,
		&sim.LocalPossession, &sim.VisitorPossession,
		&sim.LocalYellowCards, &sim.VisitorYellowCards,
		&sim.LocalRedCards, &sim.VisitorRedCards,
		&sim.LocalShotsOnGoal, &sim.VisitorShotsOnGoal, &sim.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSimulationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sim, nil
}

// EventsBySimulation returns the timeline ordered by minute ascending,
// with event id order breaking ties the same way the builder emitted them.
func (r *SimulationRepo) EventsBySimulation(ctx context.Context, simulationID uint64) ([]model.SimulationEvent, error) {
	const q = `SELECT id, id_match_simulations, id_teams, minute, type_event, player, created_at
	           FROM simulation_events
	           WHERE id_match_simulations = ?
	           ORDER BY minute ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, simulationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]model.SimulationEvent, 0)
	for rows.Next() {
		var ev model.SimulationEvent
		if err := rows.Scan(&ev.ID, &ev.SimulationID, &ev.TeamID, &ev.Minute, &ev.Type, &ev.Player, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
