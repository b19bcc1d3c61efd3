package model

import "time"

// Match lifecycle states.  A match accepts ticket sales while ON_SALE and
// is closed permanently once FINISHED or CANCELLED.
const (
	MatchScheduled  = "SCHEDULED"
	MatchOnSale     = "ON_SALE"
	MatchSoldOut    = "SOLD_OUT"
	MatchInProgress = "IN_PROGRESS"
	MatchFinished   = "FINISHED"
	MatchCancelled  = "CANCELLED"
)

// Match is a scheduled game between two teams at a stadium.  The core
// engines treat matches as read-only except for the state transition to
// FINISHED performed by the simulation orchestrator.
//
// Fields:
//  ID            – primary key identifier.
//  LocalTeamID   – home side team reference.
//  VisitorTeamID – away side team reference.
//  KickoffAt     – scheduled date and time (UTC).
//  Stadium       – stadium name.
//  State         – lifecycle state, one of the Match* constants.
//  CreatedAt     – creation timestamp.
type Match struct {
	ID            uint64    // matches.id
	LocalTeamID   uint64    // matches.id_team_local
	VisitorTeamID uint64    // matches.id_team_visitor
	KickoffAt     time.Time // matches.kickoff_at
	Stadium       string    // matches.stadium
	State         string    // matches.state
	CreatedAt     time.Time // matches.created_at

	// Local and Visitor are populated by lookups that join the teams
	// table; nil otherwise.
	Local   *Team
	Visitor *Team
}

// Team is static reference data for one side of a match.
//
// Fields:
//  ID        – primary key identifier.
//  APIID     – external sports-database identifier used for roster lookups.
//  Name      – display name.
//  ImageURL  – optional crest/badge URL.
type Team struct {
	ID       uint64 // teams.id
	APIID    string // teams.id_team_api
	Name     string // teams.name
	ImageURL string // teams.image_url
}
