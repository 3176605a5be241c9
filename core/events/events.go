// Package events defines the domain events emitted on the event bus.
//
// Available event types:
//   - RequestCreated: a new transport request entered the store
//   - RequestStatusChanged: a request state-machine edge was taken
//   - BidSubmitted: an agency placed a bid
//   - BidResolved: a bid left the PENDING state
//   - EtaRevised: an ETA revision was appended to a request's history
//   - MatchRanked: the matching engine produced a candidate ranking
//   - ConflictLost: an accept or assign lost its race
package events

import (
	"time"

	"github.com/Medic423/medport-sub003/core/model"
)

// RequestCreated is published when a request is created PENDING.
type RequestCreated struct {
	Request model.TransportRequest
}

// RequestStatusChanged is published for every request transition, including
// the ones taken implicitly by assign, cancel and reopen.
type RequestStatusChanged struct {
	RequestID string
	From      model.RequestStatus
	To        model.RequestStatus
	Actor     string
	Reason    string
	Time      time.Time
}

// BidSubmitted is published when a bid enters the ledger.
type BidSubmitted struct {
	Bid model.Bid
}

// BidResolved is published when a bid reaches a terminal status.
type BidResolved struct {
	Bid    model.Bid
	Reason string
}

// EtaRevised is published when an ETA revision is recorded.
type EtaRevised struct {
	RequestID      string
	RevisedArrival time.Time
	RevisedPickup  time.Time
	Reason         string
	Time           time.Time
}

// MatchRanked is published after a matching run completes.
type MatchRanked struct {
	Level      model.TransportLevel
	OriginID   string
	Candidates int
	// Degraded is true when at least one candidate was scored with a
	// fallback distance estimate.
	Degraded bool
	Duration time.Duration
}

// ConflictLost is published when a mutation loses a per-request race.
type ConflictLost struct {
	RequestID string
	Op        string
	Time      time.Time
}
