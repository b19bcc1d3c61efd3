package simulation

import (
	"testing"

	"github.com/matchday/ticket-office/internal/model"
)

func fixedOutcome() Outcome {
	return Outcome{
		Local: SideStats{
			Goals: 2, GoalsFirstHalf: 1, GoalsSecondHalf: 1,
			YellowCards: 3, RedCards: 1,
		},
		Visitor: SideStats{
			Goals: 1, GoalsFirstHalf: 0, GoalsSecondHalf: 1,
			YellowCards: 0, RedCards: 2,
		},
	}
}

func TestBuildTimelineCountsAndBounds(t *testing.T) {
	sim := seeded(5, 6)
	roster := []string{"Ana Silva", "Marta Costa", "Ines Gomes"}
	events := sim.BuildTimeline(fixedOutcome(), 10, 20, roster, nil)

	if len(events) != 9 {
		t.Fatalf("Expected 9 events (3 goals + 3 yellows + 3 reds), got %d", len(events))
	}

	counts := map[uint64]map[string]int{10: {}, 20: {}}
	inRoster := map[string]bool{}
	for _, p := range roster {
		inRoster[p] = true
	}
	lastMinute := 0
	for _, ev := range events {
		if ev.Minute < 1 || ev.Minute > 90 {
			t.Errorf("Minute %d out of [1,90]", ev.Minute)
		}
		if ev.Minute < lastMinute {
			t.Errorf("Events not sorted: minute %d after %d", ev.Minute, lastMinute)
		}
		lastMinute = ev.Minute
		counts[ev.TeamID][ev.Type]++

		switch ev.TeamID {
		case 10:
			if !inRoster[ev.Player] {
				t.Errorf("Local event credited to %q, not in roster", ev.Player)
			}
		case 20:
			if ev.Player != UnknownPlayer {
				t.Errorf("Visitor has no roster, expected %q, got %q", UnknownPlayer, ev.Player)
			}
		default:
			t.Errorf("Event credited to unknown team %d", ev.TeamID)
		}
	}

	want := map[uint64]map[string]int{
		10: {model.EventGoal: 2, model.EventYellowCard: 3, model.EventRedCard: 1},
		20: {model.EventGoal: 1, model.EventRedCard: 2},
	}
	for teamID, types := range want {
		for eventType, n := range types {
			if counts[teamID][eventType] != n {
				t.Errorf("Team %d %s: expected %d, got %d", teamID, eventType, n, counts[teamID][eventType])
			}
		}
	}
	if counts[20][model.EventYellowCard] != 0 {
		t.Errorf("Visitor should have no yellow cards, got %d", counts[20][model.EventYellowCard])
	}
}

func TestBuildTimelineEmptyOutcome(t *testing.T) {
	sim := seeded(7, 8)
	events := sim.BuildTimeline(Outcome{}, 10, 20, nil, nil)
	if len(events) != 0 {
		t.Fatalf("A goalless, cardless match must produce no events, got %d", len(events))
	}
}

func TestHalfForMinute(t *testing.T) {
	cases := []struct {
		minute int
		want   string
	}{
		{1, model.FirstHalf},
		{45, model.FirstHalf},
		{46, model.SecondHalf},
		{90, model.SecondHalf},
	}
	for _, tc := range cases {
		if got := model.HalfForMinute(tc.minute); got != tc.want {
			t.Errorf("Minute %d: expected %s, got %s", tc.minute, tc.want, got)
		}
	}
}
