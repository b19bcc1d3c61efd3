package model

import "time"

// Stand is a physical seating section of the stadium with a fixed total
// capacity.  Stands are static reference data; capacity accounting for a
// match happens against the stand price row linking the two.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – section name (e.g. "North Stand").
//  TotalCapacity – fixed number of tickets the stand can hold per match.
//  Description   – optional free-text description.
//  CreatedAt     – creation timestamp.
type Stand struct {
	ID            uint64    // stands.id
	Name          string    // stands.name
	TotalCapacity int       // stands.total_capacity
	Description   string    // stands.description
	CreatedAt     time.Time // stands.created_at
}

// StandPrice sets the price of one stand for one specific match.  There is
// exactly one row per (match, stand) pair, created alongside the match.
// Ticket issuance references a stand price, never a stand directly, so the
// capacity check always knows which match it is counting for.
//
// Fields:
//  ID         – primary key identifier.
//  MatchID    – match this price applies to.
//  StandID    – stand being priced.
//  PriceCents – ticket price in integer cents.
//  CreatedAt  – creation timestamp.
type StandPrice struct {
	ID         uint64    // match_stand_prices.id
	MatchID    uint64    // match_stand_prices.id_match
	StandID    uint64    // match_stand_prices.id_stand
	PriceCents uint32    // match_stand_prices.price_cents
	CreatedAt  time.Time // match_stand_prices.created_at

	// Stand carries the joined stand row (capacity, name) when the
	// lookup requests it; nil otherwise.
	Stand *Stand
}
