package simulation

import (
	"context"
	"errors"
	"testing"

	"github.com/matchday/ticket-office/internal/model"
)

// simStore is an in-memory Store that only commits a transaction's
// writes when the whole closure succeeds.
type simStore struct {
	match  *model.Match
	exists bool

	insertSimErr error
	setStateErr  error
	ticketsSold  int64

	committedSim    *model.MatchSimulation
	committedEvents []model.SimulationEvent
	committedState  string
}

func (s *simStore) MatchWithTeams(_ context.Context, matchID uint64) (*model.Match, error) {
	if s.match == nil || s.match.ID != matchID {
		return nil, ErrMatchNotFound
	}
	return s.match, nil
}

func (s *simStore) SimulationExists(_ context.Context, _ uint64) (bool, error) {
	return s.exists, nil
}

func (s *simStore) RunTx(_ context.Context, fn func(tx Tx) error) error {
	tx := &simTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}
	s.committedSim = tx.sim
	s.committedEvents = tx.events
	s.committedState = tx.state
	return nil
}

type simTx struct {
	store  *simStore
	sim    *model.MatchSimulation
	events []model.SimulationEvent
	state  string
}

func (t *simTx) InsertSimulation(_ context.Context, sim *model.MatchSimulation) error {
	if t.store.insertSimErr != nil {
		return t.store.insertSimErr
	}
	sim.ID = 77
	t.sim = sim
	return nil
}

func (t *simTx) InsertEvents(_ context.Context, events []model.SimulationEvent) error {
	t.events = events
	return nil
}

func (t *simTx) SetMatchState(_ context.Context, _ uint64, state string) error {
	if t.store.setStateErr != nil {
		return t.store.setStateErr
	}
	t.state = state
	return nil
}

func (t *simTx) MarkTicketsUsed(_ context.Context, _ uint64) (int64, error) {
	return t.store.ticketsSold, nil
}

// rosterMap serves rosters from a fixed map, or errors for every team.
type rosterMap struct {
	rosters map[string][]string
	err     error
}

func (r *rosterMap) Roster(_ context.Context, teamAPIID string) ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.rosters[teamAPIID], nil
}

func testMatch() *model.Match {
	return &model.Match{
		ID: 1, LocalTeamID: 10, VisitorTeamID: 20,
		State:   model.MatchOnSale,
		Local:   &model.Team{ID: 10, APIID: "133604", Name: "Lions FC"},
		Visitor: &model.Team{ID: 20, APIID: "133605", Name: "Harbour United"},
	}
}

func TestRunCommitsEverythingTogether(t *testing.T) {
	store := &simStore{match: testMatch(), ticketsSold: 12}
	rosters := &rosterMap{rosters: map[string][]string{
		"133604": {"Ana Silva", "Marta Costa"},
		"133605": {"Lena Berg"},
	}}
	orch := NewOrchestrator(store, rosters, seeded(21, 22), 0)

	result, err := orch.Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Match.State != model.MatchFinished {
		t.Errorf("Expected match state FINISHED, got %s", result.Match.State)
	}
	if store.committedState != model.MatchFinished {
		t.Errorf("Expected committed state FINISHED, got %q", store.committedState)
	}
	if store.committedSim == nil || store.committedSim.ID != 77 {
		t.Fatal("Expected the simulation row to be committed with its id")
	}
	if result.TicketsUpdated != 12 {
		t.Errorf("Expected 12 tickets flipped, got %d", result.TicketsUpdated)
	}
	sim := result.Simulation
	if sim.LocalGoalsFirstHalf+sim.LocalGoalsSecondHalf != sim.LocalGoals {
		t.Error("Local half goals do not sum to total")
	}
	if sim.VisitorGoalsFirstHalf+sim.VisitorGoalsSecondHalf != sim.VisitorGoals {
		t.Error("Visitor half goals do not sum to total")
	}
	for _, ev := range result.Events {
		if ev.SimulationID != sim.ID {
			t.Errorf("Event not linked to simulation %d: %d", sim.ID, ev.SimulationID)
		}
		if ev.TeamID != 10 && ev.TeamID != 20 {
			t.Errorf("Event credited to unknown team %d", ev.TeamID)
		}
		if ev.Minute < 1 || ev.Minute > 90 {
			t.Errorf("Event minute %d out of [1,90]", ev.Minute)
		}
	}
}

func TestRunUnknownMatch(t *testing.T) {
	orch := NewOrchestrator(&simStore{}, nil, seeded(1, 1), 0)
	_, err := orch.Run(context.Background(), 1)
	if !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("Expected ErrMatchNotFound, got %v", err)
	}
}

func TestRunRejectsFinishedMatch(t *testing.T) {
	match := testMatch()
	match.State = model.MatchFinished
	orch := NewOrchestrator(&simStore{match: match}, nil, seeded(1, 1), 0)
	_, err := orch.Run(context.Background(), 1)
	if !errors.Is(err, ErrMatchFinished) {
		t.Fatalf("Expected ErrMatchFinished, got %v", err)
	}
}

func TestRunRejectsSecondSimulation(t *testing.T) {
	orch := NewOrchestrator(&simStore{match: testMatch(), exists: true}, nil, seeded(1, 1), 0)
	_, err := orch.Run(context.Background(), 1)
	if !errors.Is(err, ErrAlreadySimulated) {
		t.Fatalf("Expected ErrAlreadySimulated, got %v", err)
	}
}

func TestRunLosesInsertRaceCleanly(t *testing.T) {
	// The pre-check saw no simulation but the insert hits the unique key:
	// a concurrent run committed first.
	store := &simStore{match: testMatch(), insertSimErr: ErrAlreadySimulated}
	orch := NewOrchestrator(store, nil, seeded(1, 1), 0)
	_, err := orch.Run(context.Background(), 1)
	if !errors.Is(err, ErrAlreadySimulated) {
		t.Fatalf("Expected ErrAlreadySimulated, got %v", err)
	}
	if store.committedState != "" || store.committedSim != nil {
		t.Error("Losing run must not commit anything")
	}
}

func TestRunRollsBackOnFailure(t *testing.T) {
	boom := errors.New("state update failed")
	store := &simStore{match: testMatch(), setStateErr: boom}
	orch := NewOrchestrator(store, nil, seeded(1, 1), 0)
	_, err := orch.Run(context.Background(), 1)
	if !errors.Is(err, boom) {
		t.Fatalf("Expected the transaction error, got %v", err)
	}
	if store.committedSim != nil || store.committedEvents != nil || store.committedState != "" {
		t.Error("Failed transaction must leave no partial writes")
	}
}

func TestRunDegradesWhenRosterLookupFails(t *testing.T) {
	store := &simStore{match: testMatch()}
	rosters := &rosterMap{err: errors.New("upstream down")}
	orch := NewOrchestrator(store, rosters, seeded(31, 32), 0)

	result, err := orch.Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("Roster failure must not abort the simulation: %v", err)
	}
	for _, ev := range result.Events {
		if ev.Player != UnknownPlayer {
			t.Errorf("Expected %q with no rosters, got %q", UnknownPlayer, ev.Player)
		}
	}
}
