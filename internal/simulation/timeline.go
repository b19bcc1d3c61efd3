package simulation

import (
	"sort"

	"github.com/matchday/ticket-office/internal/model"
)

// UnknownPlayer is credited with an event when the side's roster lookup
// returned nothing.
const UnknownPlayer = "Unknown Player"

// BuildTimeline expands an outcome into discrete minute-stamped events:
// one GOAL per goal and one card event per card, each at a uniform random
// minute in [1,90], credited to a uniform random player from the side's
// roster.  The result is sorted ascending by minute with a stable sort, so
// equal minutes keep insertion order: goals before cards, local before
// visitor.  Everything here is deterministic given the outcome and the
// simulator's random source.
func (s *Simulator) BuildTimeline(out Outcome, localTeamID, visitorTeamID uint64, localRoster, visitorRoster []string) []model.SimulationEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]model.SimulationEvent, 0,
		out.Local.Goals+out.Visitor.Goals+
			out.Local.YellowCards+out.Local.RedCards+
			out.Visitor.YellowCards+out.Visitor.RedCards)

	emit := func(teamID uint64, eventType string, count int, roster []string) {
		for n := 0; n < count; n++ {
			events = append(events, model.SimulationEvent{
				TeamID: teamID,
				Minute: s.intn(1, 90),
				Type:   eventType,
				Player: s.pickPlayer(roster),
			})
		}
	}

	emit(localTeamID, model.EventGoal, out.Local.Goals, localRoster)
	emit(visitorTeamID, model.EventGoal, out.Visitor.Goals, visitorRoster)
	emit(localTeamID, model.EventYellowCard, out.Local.YellowCards, localRoster)
	emit(localTeamID, model.EventRedCard, out.Local.RedCards, localRoster)
	emit(visitorTeamID, model.EventYellowCard, out.Visitor.YellowCards, visitorRoster)
	emit(visitorTeamID, model.EventRedCard, out.Visitor.RedCards, visitorRoster)

	sort.SliceStable(events, func(a, b int) bool {
		return events[a].Minute < events[b].Minute
	})
	return events
}

// pickPlayer chooses a roster member uniformly, or the UnknownPlayer
// sentinel for an empty roster.
func (s *Simulator) pickPlayer(roster []string) string {
	if len(roster) == 0 {
		return UnknownPlayer
	}
	return roster[s.rng.IntN(len(roster))]
}
