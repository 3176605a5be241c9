package metrics

import (
	"context"
	"time"

	"github.com/Medic423/medport-sub003/core/events"
	coremetrics "github.com/Medic423/medport-sub003/core/metrics"
	"github.com/Medic423/medport-sub003/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// coordination events. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.Sink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(sink, ev)
			}
		}
	}()
}

func record(sink coremetrics.Sink, ev eventbus.Event) {
	switch e := ev.(type) {
	case events.RequestCreated:
		_ = sink.RecordRequestTransition(coremetrics.RequestTransitionEvent{
			RequestID: e.Request.ID,
			To:        e.Request.Status,
			Level:     e.Request.Level,
			Priority:  e.Request.Priority,
			Time:      e.Request.CreatedAt,
		})
	case events.RequestStatusChanged:
		_ = sink.RecordRequestTransition(coremetrics.RequestTransitionEvent{
			RequestID: e.RequestID,
			From:      e.From,
			To:        e.To,
			Time:      e.Time,
		})
	case events.BidSubmitted:
		if r, ok := sink.(coremetrics.BidRecorder); ok {
			_ = r.RecordBid(coremetrics.BidEvent{
				BidID:     e.Bid.ID,
				RequestID: e.Bid.RequestID,
				AgencyID:  e.Bid.AgencyID,
				Status:    e.Bid.Status,
				Amount:    e.Bid.Amount,
				Time:      e.Bid.SubmittedAt,
			})
		}
	case events.BidResolved:
		if r, ok := sink.(coremetrics.BidRecorder); ok {
			t := e.Bid.ResolvedAt
			if t.IsZero() {
				t = time.Now()
			}
			_ = r.RecordBid(coremetrics.BidEvent{
				BidID:     e.Bid.ID,
				RequestID: e.Bid.RequestID,
				AgencyID:  e.Bid.AgencyID,
				Status:    e.Bid.Status,
				Amount:    e.Bid.Amount,
				Time:      t,
			})
		}
	case events.ConflictLost:
		if r, ok := sink.(coremetrics.ConflictRecorder); ok {
			_ = r.RecordConflict(coremetrics.ConflictEvent{
				RequestID: e.RequestID,
				Op:        e.Op,
				Time:      e.Time,
			})
		}
	case events.MatchRanked:
		if r, ok := sink.(coremetrics.MatchRecorder); ok {
			_ = r.RecordMatch(coremetrics.MatchEvent{
				Level:      e.Level,
				Candidates: e.Candidates,
				Degraded:   e.Degraded,
				Duration:   e.Duration,
				Time:       time.Now(),
			})
		}
	}
}
