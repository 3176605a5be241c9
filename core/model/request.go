package model

import "time"

// TransportLevel is the clinical capability tier required for a transport.
type TransportLevel string

const (
	LevelBLS   TransportLevel = "BLS"
	LevelALS   TransportLevel = "ALS"
	LevelCCT   TransportLevel = "CCT"
	LevelOther TransportLevel = "OTHER"
)

// levelRank orders clinical tiers. OTHER is non-clinical and ranks below BLS.
var levelRank = map[TransportLevel]int{
	LevelOther: 0,
	LevelBLS:   1,
	LevelALS:   2,
	LevelCCT:   3,
}

// ValidTransportLevel reports whether l is a known transport level.
func ValidTransportLevel(l TransportLevel) bool {
	_, ok := levelRank[l]
	return ok
}

// Covers reports whether a unit of level l can serve a request of level req.
// CCT satisfies ALS and BLS requests, ALS satisfies BLS, never the reverse.
func (l TransportLevel) Covers(req TransportLevel) bool {
	return levelRank[l] >= levelRank[req]
}

// Rank returns the numeric tier of the level, higher meaning more capable.
func (l TransportLevel) Rank() int { return levelRank[l] }

// Priority expresses the urgency of a transport request.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// ValidPriority reports whether p is a known priority.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// RequestStatus is the lifecycle state of a transport request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestScheduled RequestStatus = "SCHEDULED"
	RequestInTransit RequestStatus = "IN_TRANSIT"
	RequestCompleted RequestStatus = "COMPLETED"
	RequestCancelled RequestStatus = "CANCELLED"
)

// ValidRequestStatus reports whether s is a known request status.
func ValidRequestStatus(s RequestStatus) bool {
	switch s {
	case RequestPending, RequestScheduled, RequestInTransit, RequestCompleted, RequestCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status ends the request lifecycle. CANCELLED
// is terminal except for the single allowed reopen.
func (s RequestStatus) Terminal() bool {
	return s == RequestCompleted || s == RequestCancelled
}

// Assigned reports whether requests in this status carry assignment fields.
func (s RequestStatus) Assigned() bool {
	return s == RequestScheduled || s == RequestInTransit || s == RequestCompleted
}

// TransportRequest is a request to move a patient between two facilities.
// PatientRef is an opaque identifier, never clinical PII. AssignedAgencyID
// and AssignedUnitID are set if and only if Status.Assigned() is true.
// Requests are never deleted; cancellation is a terminal status.
type TransportRequest struct {
	ID                  string         `json:"id"`
	PatientRef          string         `json:"patient_ref"`
	OriginID            string         `json:"origin_id"`
	DestinationID       string         `json:"destination_id"`
	Level               TransportLevel `json:"level"`
	Priority            Priority       `json:"priority"`
	SpecialRequirements string         `json:"special_requirements,omitempty"`
	Status              RequestStatus  `json:"status"`
	CreatedAt           time.Time      `json:"created_at"`
	AssignedAgencyID    string         `json:"assigned_agency_id,omitempty"`
	AssignedUnitID      string         `json:"assigned_unit_id,omitempty"`
	// RevenuePotential is an optional estimate in dollars, zero when unknown.
	RevenuePotential float64 `json:"revenue_potential,omitempty"`
	CancelReason     string  `json:"cancel_reason,omitempty"`
	// Reopened records that the single allowed CANCELLED -> PENDING edge
	// has been used.
	Reopened bool `json:"reopened,omitempty"`
}
