package metrics_test

import (
	"testing"

	"github.com/Medic423/medport-sub003/core/factory"
	"github.com/Medic423/medport-sub003/core/metrics"
	"github.com/Medic423/medport-sub003/core/model"
)

type countingSink struct {
	transitions int
	bids        int
	conflicts   int
	matches     int
}

func (c *countingSink) RecordRequestTransition(metrics.RequestTransitionEvent) error {
	c.transitions++
	return nil
}
func (c *countingSink) RecordBid(metrics.BidEvent) error           { c.bids++; return nil }
func (c *countingSink) RecordConflict(metrics.ConflictEvent) error { c.conflicts++; return nil }
func (c *countingSink) RecordMatch(metrics.MatchEvent) error       { c.matches++; return nil }

// transitionOnlySink implements only the mandatory interface.
type transitionOnlySink struct{ transitions int }

func (c *transitionOnlySink) RecordRequestTransition(metrics.RequestTransitionEvent) error {
	c.transitions++
	return nil
}

func TestMultiSink_ForwardsToAll(t *testing.T) {
	a := &countingSink{}
	b := &transitionOnlySink{}
	m := metrics.NewMultiSink(a, b)

	if err := m.RecordRequestTransition(metrics.RequestTransitionEvent{RequestID: "r1", From: model.RequestPending, To: model.RequestScheduled}); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if err := m.RecordBid(metrics.BidEvent{BidID: "b1"}); err != nil {
		t.Fatalf("bid: %v", err)
	}
	if err := m.RecordConflict(metrics.ConflictEvent{RequestID: "r1"}); err != nil {
		t.Fatalf("conflict: %v", err)
	}
	if err := m.RecordMatch(metrics.MatchEvent{Candidates: 3}); err != nil {
		t.Fatalf("match: %v", err)
	}

	if a.transitions != 1 || a.bids != 1 || a.conflicts != 1 || a.matches != 1 {
		t.Fatalf("full sink missed events: %+v", a)
	}
	// The transition-only sink must still see transitions and must not
	// break the fan-out for the events it cannot record.
	if b.transitions != 1 {
		t.Fatalf("partial sink missed transition: %+v", b)
	}
}

func TestNewSink_EmptyConfigIsNop(t *testing.T) {
	s, err := metrics.NewSink(nil)
	if err != nil {
		t.Fatalf("NewSink: %v", err)
	}
	if _, ok := s.(metrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}
}

func TestNewSink_MultipleConfigsFanOut(t *testing.T) {
	if err := metrics.RegisterSink("counting", func(map[string]any) (metrics.Sink, error) {
		return &countingSink{}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	cfgs := []factory.ModuleConfig{{Type: "counting"}, {Type: "counting"}}
	s, err := metrics.NewSink(cfgs)
	if err != nil {
		t.Fatalf("NewSink: %v", err)
	}
	m, ok := s.(*metrics.MultiSink)
	if !ok {
		t.Fatalf("expected MultiSink, got %T", s)
	}
	if len(m.Sinks) != 2 {
		t.Fatalf("expected 2 sub-sinks, got %d", len(m.Sinks))
	}

	if _, err := metrics.NewSink([]factory.ModuleConfig{{Type: "unknown"}}); err == nil {
		t.Fatal("expected error for unknown sink type")
	}
}
