package model

import "time"

// Simulation event types.
const (
	EventGoal       = "GOAL"
	EventYellowCard = "YELLOW_CARD"
	EventRedCard    = "RED_CARD"
)

// Halves derived from an event minute for display.
const (
	FirstHalf  = "first_half"
	SecondHalf = "second_half"
)

// HalfForMinute derives the half an event belongs to.  Minute 1..45 is the
// first half, 46..90 the second; the half is never stored.
func HalfForMinute(minute int) string {
	if minute <= 45 {
		return FirstHalf
	}
	return SecondHalf
}

// MatchSimulation is the generated statistical result of a match.  At most
// one simulation exists per match (UNIQUE key on MatchID) and rows are
// immutable once created.
//
// Per-half goal counts always sum to the side's total, and the two
// possession percentages sum to 100.00.
type MatchSimulation struct {
	ID                     uint64    // match_simulations.id
	MatchID                uint64    // match_simulations.id_matches
	LocalGoals             int       // match_simulations.local_goals
	VisitorGoals           int       // match_simulations.visitor_goals
	LocalGoalsFirstHalf    int       // match_simulations.local_goals_first_half
	LocalGoalsSecondHalf   int       // match_simulations.local_goals_second_half
	VisitorGoalsFirstHalf  int       // match_simulations.visitor_goals_first_half
	VisitorGoalsSecondHalf int       // match_simulations.visitor_goals_second_half
	LocalPossession        float64   // match_simulations.local_possession (percent, 2dp)
	VisitorPossession      float64   // match_simulations.visitor_possession (percent, 2dp)
	LocalYellowCards       int       // match_simulations.local_yellow_cards
	VisitorYellowCards     int       // match_simulations.visitor_yellow_cards
	LocalRedCards          int       // match_simulations.local_red_cards
	VisitorRedCards        int       // match_simulations.visitor_red_cards
	LocalShotsOnGoal       int       // match_simulations.local_shots_on_goal
	VisitorShotsOnGoal     int       // match_simulations.visitor_shots_on_goal
	CreatedAt              time.Time // match_simulations.created_at
}

// SimulationEvent is one discrete, minute-stamped occurrence inside a
// simulation's timeline.  Events are created once with the simulation and
// never mutated.
//
// Fields:
//  ID           – primary key identifier.
//  SimulationID – owning simulation.
//  TeamID       – team credited with the event; always one of the match's
//                 two teams.
//  Minute       – match minute in [1,90].
//  Type         – one of the Event* constants.
//  Player       – player name, or "Unknown Player" when the roster lookup
//                 came back empty.
type SimulationEvent struct {
	ID           uint64    // simulation_events.id
	SimulationID uint64    // simulation_events.id_match_simulations
	TeamID       uint64    // simulation_events.id_teams
	Minute       int       // simulation_events.minute
	Type         string    // simulation_events.type_event
	Player       string    // simulation_events.player
	CreatedAt    time.Time // simulation_events.created_at
}
