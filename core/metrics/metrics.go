package metrics

import (
	"time"

	"github.com/Medic423/medport-sub003/core/model"
)

// RequestTransitionEvent is recorded for every request state-machine edge.
type RequestTransitionEvent struct {
	RequestID string
	From      model.RequestStatus
	To        model.RequestStatus
	Level     model.TransportLevel
	Priority  model.Priority
	Time      time.Time
}

// BidEvent is recorded when a bid is submitted or resolved.
type BidEvent struct {
	BidID     string
	RequestID string
	AgencyID  string
	Status    model.BidStatus
	Amount    float64
	Time      time.Time
}

// ConflictEvent is recorded when a mutation loses a per-request race.
type ConflictEvent struct {
	RequestID string
	Op        string
	Time      time.Time
}

// MatchEvent is recorded after a matching run.
type MatchEvent struct {
	Level      model.TransportLevel
	Candidates int
	Degraded   bool
	Duration   time.Duration
	Time       time.Time
}

// Sink records coordination events for observability purposes. Implementations
// that only care about a subset implement the optional recorder interfaces.
type Sink interface {
	RecordRequestTransition(ev RequestTransitionEvent) error
}

// BidRecorder records bid lifecycle events.
type BidRecorder interface {
	RecordBid(ev BidEvent) error
}

// ConflictRecorder records lost races.
type ConflictRecorder interface {
	RecordConflict(ev ConflictEvent) error
}

// MatchRecorder records matching runs.
type MatchRecorder interface {
	RecordMatch(ev MatchEvent) error
}

// NopSink implements every recorder with no-ops.
type NopSink struct{}

func (NopSink) RecordRequestTransition(RequestTransitionEvent) error { return nil }
func (NopSink) RecordBid(BidEvent) error                             { return nil }
func (NopSink) RecordConflict(ConflictEvent) error                   { return nil }
func (NopSink) RecordMatch(MatchEvent) error                         { return nil }

// MultiSink fans every event out to multiple sinks, returning the first error.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordRequestTransition(ev RequestTransitionEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRequestTransition(ev); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) RecordBid(ev BidEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(BidRecorder); ok {
			if err := rec.RecordBid(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MultiSink) RecordConflict(ev ConflictEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ConflictRecorder); ok {
			if err := rec.RecordConflict(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MultiSink) RecordMatch(ev MatchEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(MatchRecorder); ok {
			if err := rec.RecordMatch(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
