package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/matchday/ticket-office/internal/model"
	"github.com/matchday/ticket-office/internal/queue"
	"github.com/matchday/ticket-office/internal/repository"
	queue_publisher "github.com/matchday/ticket-office/internal/service"
	"github.com/matchday/ticket-office/internal/simulation"
)

// SimulationHandler serves the admin simulation trigger and the public
// stored-simulation lookup.
type SimulationHandler struct {
	Matches      *repository.MatchRepo
	Simulations  *repository.SimulationRepo
	Orchestrator *simulation.Orchestrator
}

func NewSimulationHandler(m *repository.MatchRepo, s *repository.SimulationRepo, o *simulation.Orchestrator) *SimulationHandler {
	return &SimulationHandler{Matches: m, Simulations: s, Orchestrator: o}
}

// ----- DTOs -----

type sideValues struct {
	Local   any `json:"local"`
	Visitor any `json:"visitor"`
}

type eventPart struct {
	Minute int    `json:"minute"`
	Type   string `json:"type"`
	Player string `json:"player"`
	TeamID uint64 `json:"team_id"`
	Team   string `json:"team"`
	Half   string `json:"half"`
}

type simulationResp struct {
	MatchID     uint64      `json:"match_id"`
	LocalTeam   string      `json:"local_team"`
	VisitorTeam string      `json:"visitor_team"`
	Stadium     string      `json:"stadium"`
	MatchState  string      `json:"match_state"`
	Score       sideValues  `json:"score"`
	ScoreByHalf struct {
		FirstHalf  sideValues `json:"first_half"`
		SecondHalf sideValues `json:"second_half"`
	} `json:"score_by_half"`
	Stats struct {
		Possession  sideValues `json:"possession"`
		YellowCards sideValues `json:"yellow_cards"`
		RedCards    sideValues `json:"red_cards"`
		ShotsOnGoal sideValues `json:"shots_on_goal"`
	} `json:"stats"`
	Events         []eventPart `json:"events"`
	TicketsUpdated *int64      `json:"tickets_updated,omitempty"`
}

func buildSimulationResp(match *model.Match, sim *model.MatchSimulation, events []model.SimulationEvent, ticketsUpdated *int64) simulationResp {
	names := map[uint64]string{}
	localName, visitorName := "", ""
	if match.Local != nil {
		localName = match.Local.Name
		names[match.Local.ID] = localName
	}
	if match.Visitor != nil {
		visitorName = match.Visitor.Name
		names[match.Visitor.ID] = visitorName
	}

	resp := simulationResp{
		MatchID:        match.ID,
		LocalTeam:      localName,
		VisitorTeam:    visitorName,
		Stadium:        match.Stadium,
		MatchState:     match.State,
		Score:          sideValues{Local: sim.LocalGoals, Visitor: sim.VisitorGoals},
		TicketsUpdated: ticketsUpdated,
	}
	resp.ScoreByHalf.FirstHalf = sideValues{Local: sim.LocalGoalsFirstHalf, Visitor: sim.VisitorGoalsFirstHalf}
	resp.ScoreByHalf.SecondHalf = sideValues{Local: sim.LocalGoalsSecondHalf, Visitor: sim.VisitorGoalsSecondHalf}
	resp.Stats.Possession = sideValues{Local: sim.LocalPossession, Visitor: sim.VisitorPossession}
	resp.Stats.YellowCards = sideValues{Local: sim.LocalYellowCards, Visitor: sim.VisitorYellowCards}
	resp.Stats.RedCards = sideValues{Local: sim.LocalRedCards, Visitor: sim.VisitorRedCards}
	resp.Stats.ShotsOnGoal = sideValues{Local: sim.LocalShotsOnGoal, Visitor: sim.VisitorShotsOnGoal}

	resp.Events = make([]eventPart, 0, len(events))
	for _, ev := range events {
		resp.Events = append(resp.Events, eventPart{
			Minute: ev.Minute,
			Type:   ev.Type,
			Player: ev.Player,
			TeamID: ev.TeamID,
			Team:   names[ev.TeamID],
			Half:   model.HalfForMinute(ev.Minute),
		})
	}
	return resp
}

// Simulate runs the one-off simulation of a match: generates the outcome
// and timeline, stores both, moves the match to FINISHED and flips its
// SOLD tickets to USED, all in one transaction.
func (h *SimulationHandler) Simulate(c echo.Context) error {
	matchID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid match id"})
	}

	// Roster lookups may add several seconds on top of the DB work.
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	result, err := h.Orchestrator.Run(ctx, matchID)
	if err != nil {
		switch {
		case errors.Is(err, simulation.ErrMatchNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "match not found"})
		case errors.Is(err, simulation.ErrMatchFinished):
			return c.JSON(http.StatusConflict, echo.Map{"error": "match is already finished"})
		case errors.Is(err, simulation.ErrAlreadySimulated):
			return c.JSON(http.StatusConflict, echo.Map{"error": "simulation already exists for this match"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "simulation failed"})
		}
	}

	h.publishSimulated(result)
	resp := buildSimulationResp(result.Match, result.Simulation, result.Events, &result.TicketsUpdated)
	return c.JSON(http.StatusCreated, resp)
}

// GetSimulation returns the stored simulation of a finished match.
func (h *SimulationHandler) GetSimulation(c echo.Context) error {
	matchID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid match id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	match, err := h.Matches.GetWithTeams(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrMatchNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "match not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	sim, err := h.Simulations.GetByMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrSimulationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "simulation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	events, err := h.Simulations.EventsBySimulation(ctx, sim.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, buildSimulationResp(match, sim, events, nil))
}

// publishSimulated emits the broker event in the background.
func (h *SimulationHandler) publishSimulated(result *simulation.Result) {
	localName, visitorName := "", ""
	if result.Match.Local != nil {
		localName = result.Match.Local.Name
	}
	if result.Match.Visitor != nil {
		visitorName = result.Match.Visitor.Name
	}
	ev := queue.MatchSimulatedEvent{
		MatchID:      result.Match.ID,
		SimulationID: result.Simulation.ID,
		LocalTeam:    localName,
		VisitorTeam:  visitorName,
		LocalGoals:   uint8(result.Simulation.LocalGoals),
		VisitorGoals: uint8(result.Simulation.VisitorGoals),
		EventCount:   len(result.Events),
		TicketsUsed:  result.TicketsUpdated,
		SimulatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishMatchSimulated(ctx, ev)
	}()
}
