package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/matchday/ticket-office/internal/model"
	"github.com/matchday/ticket-office/internal/queue"
	"github.com/matchday/ticket-office/internal/repository"
	queue_publisher "github.com/matchday/ticket-office/internal/service"
	"github.com/matchday/ticket-office/internal/ticketing"
)

// TicketHandler serves ticket purchase, listing and capacity endpoints.
type TicketHandler struct {
	Matches  *repository.MatchRepo
	Tickets  *repository.TicketRepo
	Stands   *repository.StandRepo
	Issuer   *ticketing.Issuer
	Capacity *ticketing.CapacityIndex
}

func NewTicketHandler(m *repository.MatchRepo, t *repository.TicketRepo, s *repository.StandRepo, i *ticketing.Issuer, ci *ticketing.CapacityIndex) *TicketHandler {
	return &TicketHandler{Matches: m, Tickets: t, Stands: s, Issuer: i, Capacity: ci}
}

// ----- DTOs -----

type purchaseReq struct {
	MatchID      uint64  `json:"match_id"`
	StandPriceID *uint64 `json:"stand_price_id"`
	Quantity     int     `json:"quantity"`
}

type adminIssueReq struct {
	UserID        uint64  `json:"user_id"`
	MatchID       uint64  `json:"match_id"`
	StandPriceID  *uint64 `json:"stand_price_id"`
	PriceCents    uint32  `json:"price_cents"`
	Quantity      int     `json:"quantity"`
	TransactionID string  `json:"transaction_id"`
}

type ticketPart struct {
	ID          string    `json:"id"`
	Code        string    `json:"ticket_code"`
	SeatInfo    string    `json:"seat_info"`
	Row         int       `json:"row"`
	Seat        int       `json:"seat"`
	PriceCents  uint32    `json:"price_cents"`
	State       string    `json:"state"`
	PurchasedAt time.Time `json:"purchased_at"`
}

type issueResp struct {
	TransactionID   string       `json:"transaction_id"`
	MatchID         uint64       `json:"match_id"`
	Quantity        int          `json:"quantity"`
	TotalPriceCents uint64       `json:"total_price_cents"`
	Tickets         []ticketPart `json:"tickets"`
}

// Purchase sells 1..10 tickets to the authenticated customer for a stand
// of an on-sale match.  The whole batch succeeds or fails together; a
// request beyond remaining capacity returns 409 with the exact count
// still available.
func (h *TicketHandler) Purchase(c echo.Context) error {
	var req purchaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MatchID == 0 || req.StandPriceID == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "match_id and stand_price_id required"})
	}
	uid, _ := currentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*dbTimeout)
	defer cancel()

	match, err := h.Matches.GetWithTeams(ctx, req.MatchID)
	if err != nil {
		if errors.Is(err, repository.ErrMatchNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "match not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if match.State != model.MatchOnSale {
		return c.JSON(http.StatusConflict, echo.Map{"error": "match is not on sale"})
	}
	sp, err := h.Stands.StandPriceForMatch(ctx, req.MatchID, *req.StandPriceID)
	if err != nil {
		if errors.Is(err, repository.ErrStandPriceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "stand price not found for this match"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	result, err := h.Issuer.Issue(ctx, ticketing.IssueRequest{
		UserID:       uid,
		MatchID:      req.MatchID,
		StandPriceID: req.StandPriceID,
		PriceCents:   sp.PriceCents,
		Quantity:     req.Quantity,
	})
	if err != nil {
		return issueError(c, err)
	}

	h.publishIssued(match, sp.Stand.Name, result)
	return c.JSON(http.StatusCreated, buildIssueResp(req.MatchID, result))
}

// AdminIssue lets an admin issue tickets on behalf of any user, including
// unassigned-stand tickets (no stand price, exempt from capacity
// accounting) at an explicit price.
func (h *TicketHandler) AdminIssue(c echo.Context) error {
	var req adminIssueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == 0 || req.MatchID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id and match_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*dbTimeout)
	defer cancel()

	match, err := h.Matches.GetWithTeams(ctx, req.MatchID)
	if err != nil {
		if errors.Is(err, repository.ErrMatchNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "match not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if match.State == model.MatchFinished || match.State == model.MatchCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "match is closed"})
	}

	price := req.PriceCents
	standName := ""
	if req.StandPriceID != nil {
		sp, err := h.Stands.StandPriceForMatch(ctx, req.MatchID, *req.StandPriceID)
		if err != nil {
			if errors.Is(err, repository.ErrStandPriceNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "stand price not found for this match"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		price = sp.PriceCents
		standName = sp.Stand.Name
	}

	result, err := h.Issuer.Issue(ctx, ticketing.IssueRequest{
		UserID:        req.UserID,
		MatchID:       req.MatchID,
		StandPriceID:  req.StandPriceID,
		TransactionID: req.TransactionID,
		PriceCents:    price,
		Quantity:      req.Quantity,
	})
	if err != nil {
		return issueError(c, err)
	}

	h.publishIssued(match, standName, result)
	return c.JSON(http.StatusCreated, buildIssueResp(req.MatchID, result))
}

// issueError translates issuer sentinels into HTTP responses.
func issueError(c echo.Context, err error) error {
	var capErr *ticketing.CapacityError
	switch {
	case errors.Is(err, ticketing.ErrQuantityOutOfRange):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, ticketing.ErrMatchNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "match not found"})
	case errors.Is(err, ticketing.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, ticketing.ErrStandPriceNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "stand price not found for this match"})
	case errors.Is(err, ticketing.ErrCodesExhausted):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "could not generate ticket codes, try again"})
	case errors.Is(err, ticketing.ErrCodeConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "ticket codes collided with a concurrent purchase, retry"})
	case errors.As(err, &capErr):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     capErr.Error(),
			"available": capErr.Available,
		})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tickets failed"})
	}
}

func buildIssueResp(matchID uint64, result *ticketing.IssueResult) issueResp {
	parts := make([]ticketPart, 0, len(result.Tickets))
	for i := range result.Tickets {
		t := &result.Tickets[i]
		parts = append(parts, ticketPart{
			ID:          t.ID,
			Code:        t.Code,
			SeatInfo:    t.SeatInfo(),
			Row:         t.Row,
			Seat:        t.Seat,
			PriceCents:  t.PriceCents,
			State:       t.State,
			PurchasedAt: t.PurchasedAt,
		})
	}
	return issueResp{
		TransactionID:   result.TransactionID,
		MatchID:         matchID,
		Quantity:        len(parts),
		TotalPriceCents: result.TotalPriceCents,
		Tickets:         parts,
	}
}

// publishIssued emits the broker event in the background; a broker outage
// never fails the purchase that already committed.
func (h *TicketHandler) publishIssued(match *model.Match, standName string, result *ticketing.IssueResult) {
	if len(result.Tickets) == 0 {
		return
	}
	first := result.Tickets[0]
	seats := make([]string, 0, len(result.Tickets))
	for i := range result.Tickets {
		seats = append(seats, result.Tickets[i].SeatInfo())
	}
	localName, visitorName := "", ""
	if match.Local != nil {
		localName = match.Local.Name
	}
	if match.Visitor != nil {
		visitorName = match.Visitor.Name
	}
	ev := queue.TicketsIssuedEvent{
		TransactionID:   result.TransactionID,
		UserID:          first.UserID,
		MatchID:         match.ID,
		LocalTeam:       localName,
		VisitorTeam:     visitorName,
		StandName:       standName,
		Quantity:        len(result.Tickets),
		Seats:           seats,
		TotalPriceCents: result.TotalPriceCents,
		PurchasedAt:     first.PurchasedAt.UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishTicketsIssued(ctx, ev)
	}()
}

// MyTickets lists the authenticated user's tickets, newest purchase first.
func (h *TicketHandler) MyTickets(c echo.Context) error {
	uid, _ := currentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	details, err := h.Tickets.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": details})
}

// GetTicket returns one ticket.  Customers can only read their own;
// admins can read any.
func (h *TicketHandler) GetTicket(c echo.Context) error {
	ticketID := c.Param("id")
	if ticketID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket id required"})
	}
	uid, role := currentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if role != "ADMIN" && t.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": repository.ErrForbidden.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":             t.ID,
		"user_id":        t.UserID,
		"match_id":       t.MatchID,
		"stand_price_id": t.StandPriceID,
		"transaction_id": t.TransactionID,
		"ticket_code":    t.Code,
		"price_cents":    t.PriceCents,
		"seat_info":      t.SeatInfo(),
		"row":            t.Row,
		"seat":           t.Seat,
		"state":          t.State,
		"purchased_at":   t.PurchasedAt,
	})
}

// VoidTicket moves a ticket to VOIDED, freeing its stand capacity.  USED
// tickets belong to a finished match and cannot be voided.
func (h *TicketHandler) VoidTicket(c echo.Context) error {
	ticketID := c.Param("id")
	if ticketID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if t.State == model.TicketUsed {
		return c.JSON(http.StatusConflict, echo.Map{"error": "used tickets cannot be voided"})
	}
	if t.State == model.TicketVoided {
		return c.JSON(http.StatusConflict, echo.Map{"error": "ticket is already voided"})
	}
	if err := h.Tickets.UpdateState(ctx, ticketID, model.TicketVoided); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "void ticket failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":    ticketID,
		"state": model.TicketVoided,
	})
}

// Occupancy reports how full a match is.  With ?stand_price_id=N it
// returns the remaining capacity of that stand alone; otherwise it
// aggregates every stand priced for the match.
func (h *TicketHandler) Occupancy(c echo.Context) error {
	matchID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid match id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	match, err := h.Matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrMatchNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "match not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if raw := c.QueryParam("stand_price_id"); raw != "" {
		standPriceID, err := parseUint(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid stand_price_id"})
		}
		available, err := h.Capacity.Available(ctx, matchID, standPriceID)
		if err != nil {
			if errors.Is(err, ticketing.ErrStandPriceNotFound) || errors.Is(err, repository.ErrStandPriceNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "stand price not found for this match"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"match_id":       matchID,
			"stand_price_id": standPriceID,
			"available":      available,
		})
	}

	summaries, err := h.Stands.SummariesByMatch(ctx, matchID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	totalCapacity, occupied := 0, 0
	var lowestPrice uint32
	for _, s := range summaries {
		totalCapacity += s.TotalCapacity
		occupied += s.TicketsSold
		if lowestPrice == 0 || s.PriceCents < lowestPrice {
			lowestPrice = s.PriceCents
		}
	}
	available := totalCapacity - occupied
	return c.JSON(http.StatusOK, echo.Map{
		"match_id":           matchID,
		"state":              match.State,
		"total_capacity":     totalCapacity,
		"occupied":           occupied,
		"available":          available,
		"occupancy_pct":      pct(occupied, totalCapacity),
		"availability_pct":   pct(available, totalCapacity),
		"lowest_price_cents": lowestPrice,
		"sale_status":        saleStatus(available, totalCapacity, matchSaleLimitedPct),
	})
}

// Thresholds under which remaining capacity is labelled "limited": 15%
// for the match as a whole, 30% for an individual stand.
const (
	matchSaleLimitedPct = 15.0
	standSaleLimitedPct = 30.0
)

// pct returns part as a percentage of total, rounded to two decimals.
func pct(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}

// saleStatus labels remaining capacity: sold_out, limited or available.
func saleStatus(available, total int, limitedPct float64) string {
	if available <= 0 {
		return "sold_out"
	}
	if pct(available, total) <= limitedPct {
		return "limited"
	}
	return "available"
}

type standPart struct {
	repository.StandSummary
	Available    int     `json:"available"`
	OccupancyPct float64 `json:"occupancy_pct"`
	Availability string  `json:"availability"`
}

// StandSummaries lists per-stand sales figures for a match, with totals.
func (h *TicketHandler) StandSummaries(c echo.Context) error {
	matchID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid match id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Matches.GetByID(ctx, matchID); err != nil {
		if errors.Is(err, repository.ErrMatchNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "match not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	summaries, err := h.Stands.SummariesByMatch(ctx, matchID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	stands := make([]standPart, 0, len(summaries))
	totalCapacity, totalSold := 0, 0
	var totalRevenue uint64
	for _, s := range summaries {
		available := s.TotalCapacity - s.TicketsSold
		stands = append(stands, standPart{
			StandSummary: s,
			Available:    available,
			OccupancyPct: pct(s.TicketsSold, s.TotalCapacity),
			Availability: saleStatus(available, s.TotalCapacity, standSaleLimitedPct),
		})
		totalCapacity += s.TotalCapacity
		totalSold += s.TicketsSold
		totalRevenue += s.RevenueCents
	}
	return c.JSON(http.StatusOK, echo.Map{
		"match_id": matchID,
		"stands":   stands,
		"totals": echo.Map{
			"total_capacity": totalCapacity,
			"tickets_sold":   totalSold,
			"available":      totalCapacity - totalSold,
			"revenue_cents":  totalRevenue,
		},
	})
}
