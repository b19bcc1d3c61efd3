// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketsIssuedEvent is published after a purchase transaction commits.
// It carries enough context for downstream consumers to log or notify
// without querying the primary database.
type TicketsIssuedEvent struct {
	TransactionID   string   `json:"transaction_id"`
	UserID          uint64   `json:"user_id"`
	MatchID         uint64   `json:"match_id"`
	LocalTeam       string   `json:"local_team"`
	VisitorTeam     string   `json:"visitor_team"`
	StandName       string   `json:"stand_name"`
	Quantity        int      `json:"quantity"`
	Seats           []string `json:"seats"`
	TotalPriceCents uint64   `json:"total_price_cents"`
	PurchasedAt     string   `json:"purchased_at"`
}

// MatchSimulatedEvent is published when a match outcome is recorded and
// the match moves to FINISHED.
type MatchSimulatedEvent struct {
	MatchID      uint64 `json:"match_id"`
	SimulationID uint64 `json:"simulation_id"`
	LocalTeam    string `json:"local_team"`
	VisitorTeam  string `json:"visitor_team"`
	LocalGoals   uint8  `json:"local_goals"`
	VisitorGoals uint8  `json:"visitor_goals"`
	EventCount   int    `json:"event_count"`
	TicketsUsed  int64  `json:"tickets_used"`
	SimulatedAt  string `json:"simulated_at"`
}
