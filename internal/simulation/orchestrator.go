package simulation

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/matchday/ticket-office/internal/model"
)

// Sentinel errors surfaced by the orchestrator.
var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchFinished    = errors.New("match is already finished")
	ErrAlreadySimulated = errors.New("simulation already exists for this match")
)

// Store is the persistence boundary for running a simulation.  The SQL
// implementation enforces the one-simulation-per-match invariant with a
// UNIQUE key and maps the duplicate-key failure to ErrAlreadySimulated, so
// two concurrent runs cannot both commit.
type Store interface {
	// MatchWithTeams loads the match with both team rows populated, or
	// ErrMatchNotFound.
	MatchWithTeams(ctx context.Context, matchID uint64) (*model.Match, error)
	// SimulationExists reports whether the match already has a simulation.
	SimulationExists(ctx context.Context, matchID uint64) (bool, error)
	// RunTx runs fn inside one transaction: all writes commit together
	// or none do.
	RunTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the transaction-scoped slice of the store covering the five
// simulation writes.
type Tx interface {
	InsertSimulation(ctx context.Context, sim *model.MatchSimulation) error
	InsertEvents(ctx context.Context, events []model.SimulationEvent) error
	SetMatchState(ctx context.Context, matchID uint64, state string) error
	// MarkTicketsUsed flips every SOLD ticket of the match to USED and
	// returns how many were updated.
	MarkTicketsUsed(ctx context.Context, matchID uint64) (int64, error)
}

// RosterLookup fetches player names for a team from an external sports
// database.  Lookups may be slow or fail; the orchestrator treats both as
// an empty roster and never aborts a simulation over them.
type RosterLookup interface {
	Roster(ctx context.Context, teamAPIID string) ([]string, error)
}

// Result bundles everything the simulation produced for response shaping.
type Result struct {
	Match          *model.Match
	Simulation     *model.MatchSimulation
	Events         []model.SimulationEvent
	TicketsUpdated int64
}

// Orchestrator runs a full match simulation as one all-or-nothing unit of
// work: outcome, timeline, simulation + event rows, the match state
// transition to FINISHED and the SOLD→USED ticket flip.
type Orchestrator struct {
	store         Store
	rosters       RosterLookup
	sim           *Simulator
	rosterTimeout time.Duration
}

// NewOrchestrator wires an orchestrator.  A nil simulator selects
// production randomness; a non-positive timeout defaults to five seconds.
func NewOrchestrator(store Store, rosters RosterLookup, sim *Simulator, rosterTimeout time.Duration) *Orchestrator {
	if sim == nil {
		sim = NewSimulator(nil)
	}
	if rosterTimeout <= 0 {
		rosterTimeout = 5 * time.Second
	}
	return &Orchestrator{store: store, rosters: rosters, sim: sim, rosterTimeout: rosterTimeout}
}

// roster fetches one team's player names with a bounded timeout.  Failure
// and expiry both degrade to an empty roster; events then fall back to the
// UnknownPlayer sentinel.
func (o *Orchestrator) roster(ctx context.Context, teamAPIID string) []string {
	if o.rosters == nil || teamAPIID == "" {
		return nil
	}
	lookupCtx, cancel := context.WithTimeout(ctx, o.rosterTimeout)
	defer cancel()
	players, err := o.rosters.Roster(lookupCtx, teamAPIID)
	if err != nil {
		log.Printf("simulation: roster lookup for team %s failed: %v", teamAPIID, err)
		return nil
	}
	return players
}

// Run simulates the match.  Preconditions: the match exists, is not
// FINISHED and has no simulation yet.  The existence pre-check keeps the
// common duplicate case cheap; the UNIQUE key on the simulation's match
// reference settles the race between two concurrent runs, so the loser
// still gets ErrAlreadySimulated.
func (o *Orchestrator) Run(ctx context.Context, matchID uint64) (*Result, error) {
	match, err := o.store.MatchWithTeams(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.State == model.MatchFinished {
		return nil, ErrMatchFinished
	}
	exists, err := o.store.SimulationExists(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadySimulated
	}

	localRoster := o.roster(ctx, match.Local.APIID)
	visitorRoster := o.roster(ctx, match.Visitor.APIID)

	outcome := o.sim.Simulate()
	timeline := o.sim.BuildTimeline(outcome, match.LocalTeamID, match.VisitorTeamID, localRoster, visitorRoster)

	sim := &model.MatchSimulation{
		MatchID:                matchID,
		LocalGoals:             outcome.Local.Goals,
		VisitorGoals:           outcome.Visitor.Goals,
		LocalGoalsFirstHalf:    outcome.Local.GoalsFirstHalf,
		LocalGoalsSecondHalf:   outcome.Local.GoalsSecondHalf,
		VisitorGoalsFirstHalf:  outcome.Visitor.GoalsFirstHalf,
		VisitorGoalsSecondHalf: outcome.Visitor.GoalsSecondHalf,
		LocalPossession:        outcome.Local.Possession,
		VisitorPossession:      outcome.Visitor.Possession,
		LocalYellowCards:       outcome.Local.YellowCards,
		VisitorYellowCards:     outcome.Visitor.YellowCards,
		LocalRedCards:          outcome.Local.RedCards,
		VisitorRedCards:        outcome.Visitor.RedCards,
		LocalShotsOnGoal:       outcome.Local.ShotsOnGoal,
		VisitorShotsOnGoal:     outcome.Visitor.ShotsOnGoal,
	}

	var (
		events  []model.SimulationEvent
		flipped int64
	)
	err = o.store.RunTx(ctx, func(tx Tx) error {
		if err := tx.InsertSimulation(ctx, sim); err != nil {
			return err
		}
		events = make([]model.SimulationEvent, len(timeline))
		copy(events, timeline)
		for n := range events {
			events[n].SimulationID = sim.ID
		}
		if err := tx.InsertEvents(ctx, events); err != nil {
			return err
		}
		if err := tx.SetMatchState(ctx, matchID, model.MatchFinished); err != nil {
			return err
		}
		updated, err := tx.MarkTicketsUsed(ctx, matchID)
		if err != nil {
			return err
		}
		flipped = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	match.State = model.MatchFinished
	return &Result{Match: match, Simulation: sim, Events: events, TicketsUpdated: flipped}, nil
}
