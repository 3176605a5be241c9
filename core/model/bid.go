package model

import "time"

// BidStatus is the lifecycle state of a bid. PENDING is the only state from
// which any other state is reachable; all other states are terminal.
type BidStatus string

const (
	BidPending   BidStatus = "PENDING"
	BidAccepted  BidStatus = "ACCEPTED"
	BidRejected  BidStatus = "REJECTED"
	BidExpired   BidStatus = "EXPIRED"
	BidWithdrawn BidStatus = "WITHDRAWN"
)

// ValidBidStatus reports whether s is a known bid status.
func ValidBidStatus(s BidStatus) bool {
	switch s {
	case BidPending, BidAccepted, BidRejected, BidExpired, BidWithdrawn:
		return true
	default:
		return false
	}
}

// Resolved reports whether the bid has left the PENDING state.
func (s BidStatus) Resolved() bool { return s != BidPending }

// Bid is an agency's offer to fulfill a transport request with a unit of the
// proposed type. At most one bid per request ever holds ACCEPTED status.
type Bid struct {
	ID        string         `json:"id"`
	RequestID string         `json:"request_id"`
	AgencyID  string         `json:"agency_id"`
	UnitID    string         `json:"unit_id,omitempty"`
	UnitType  TransportLevel `json:"unit_type"`
	// Amount is the proposed price in dollars, zero when not quoted.
	Amount float64 `json:"amount,omitempty"`
	// EstimatedArrival is the offered pickup time, zero when not provided.
	EstimatedArrival time.Time `json:"estimated_arrival,omitempty"`
	Status           BidStatus `json:"status"`
	SubmittedAt      time.Time `json:"submitted_at"`
	ResolvedAt       time.Time `json:"resolved_at,omitempty"`
	RejectionReason  string    `json:"rejection_reason,omitempty"`
}
