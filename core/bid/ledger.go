// Package bid owns bid records and enforces the bid state machine and the
// exclusive-winner invariant: at most one bid per transport request ever
// reaches ACCEPTED. The ledger is the sole writer of bid status and invokes
// the request store, never bypasses it, when a bid wins.
package bid

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Medic423/medport-sub003/core/errs"
	"github.com/Medic423/medport-sub003/core/events"
	"github.com/Medic423/medport-sub003/core/logger"
	"github.com/Medic423/medport-sub003/core/model"
	"github.com/Medic423/medport-sub003/core/notify"
	"github.com/Medic423/medport-sub003/core/request"
	"github.com/Medic423/medport-sub003/internal/eventbus"
	"github.com/Medic423/medport-sub003/internal/keymutex"
)

const siblingRejectReason = "another bid accepted"

// SubmitInput is the input for Submit.
type SubmitInput struct {
	RequestID        string               `json:"request_id"`
	AgencyID         string               `json:"agency_id"`
	UnitID           string               `json:"unit_id"`
	UnitType         model.TransportLevel `json:"unit_type"`
	Amount           float64              `json:"amount,omitempty"`
	EstimatedArrival time.Time            `json:"estimated_arrival,omitempty"`
}

// Ledger is the in-memory bid ledger.
type Ledger struct {
	mu        sync.RWMutex
	bids      map[string]model.Bid
	byRequest map[string][]string

	// locks is shared with the request store: every mutation touching one
	// request serializes on its key, and lock order is always
	// ledger-acquire first, store methods run under the same held key.
	locks *keymutex.KeyMutex
	store *request.Store
	bus   eventbus.EventBus
	notif notify.Dispatcher
	log   logger.Logger
	now   func() time.Time
}

// NewLedger wires a Ledger around the request store. locks must be the same
// instance handed to the store.
func NewLedger(store *request.Store, locks *keymutex.KeyMutex, bus eventbus.EventBus, notif notify.Dispatcher, log logger.Logger) *Ledger {
	if notif == nil {
		notif = notify.Nop{}
	}
	return &Ledger{
		bids:      make(map[string]model.Bid),
		byRequest: make(map[string][]string),
		locks:     locks,
		store:     store,
		bus:       bus,
		notif:     notif,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source, for tests.
func (l *Ledger) SetClock(now func() time.Time) { l.now = now }

// Submit records a new PENDING bid. No further bids are accepted once the
// request has left PENDING.
func (l *Ledger) Submit(ctx context.Context, in SubmitInput) (model.Bid, error) {
	// UnitID is mandatory: acceptance assigns the named unit, so a bid
	// without one could never win.
	if in.RequestID == "" || in.AgencyID == "" || in.UnitID == "" {
		return model.Bid{}, errs.Validationf("request, agency and unit ids required")
	}
	if !model.ValidTransportLevel(in.UnitType) {
		return model.Bid{}, errs.Validationf("unknown unit type %q", in.UnitType)
	}

	l.locks.Lock(in.RequestID)
	defer l.locks.Unlock(in.RequestID)

	req, err := l.store.Get(ctx, in.RequestID)
	if err != nil {
		return model.Bid{}, err
	}
	if req.Status != model.RequestPending {
		return model.Bid{}, errs.Validationf("request %s is %s, bidding is closed", req.ID, req.Status)
	}

	l.mu.Lock()
	for _, id := range l.byRequest[in.RequestID] {
		b := l.bids[id]
		if b.AgencyID == in.AgencyID && b.Status == model.BidPending {
			l.mu.Unlock()
			return model.Bid{}, &errs.DuplicateBidError{RequestID: in.RequestID, AgencyID: in.AgencyID}
		}
	}
	b := model.Bid{
		ID:               uuid.NewString(),
		RequestID:        in.RequestID,
		AgencyID:         in.AgencyID,
		UnitID:           in.UnitID,
		UnitType:         in.UnitType,
		Amount:           in.Amount,
		EstimatedArrival: in.EstimatedArrival,
		Status:           model.BidPending,
		SubmittedAt:      l.now(),
	}
	l.bids[b.ID] = b
	l.byRequest[b.RequestID] = append(l.byRequest[b.RequestID], b.ID)
	l.mu.Unlock()

	l.publish(events.BidSubmitted{Bid: b})
	l.notif.Notify(notify.Notification{
		Event:     notify.EventBidSubmitted,
		RequestID: b.RequestID,
		BidID:     b.ID,
		AgencyID:  b.AgencyID,
		Time:      b.SubmittedAt,
	})
	if l.log != nil {
		l.log.Infof("bid %s submitted by %s on request %s", b.ID, b.AgencyID, b.RequestID)
	}
	return b, nil
}

// Accept resolves the winning bid. The whole sequence runs inside the
// per-request critical section: verify bid and request are PENDING, assign
// through the store, then reject every sibling PENDING bid. Losing the race
// fails with a conflict and mutates nothing; the caller must not blindly
// retry the same bid.
func (l *Ledger) Accept(ctx context.Context, bidID, actor string) error {
	l.mu.RLock()
	b, ok := l.bids[bidID]
	l.mu.RUnlock()
	if !ok {
		return errs.NotFound("bid", bidID)
	}

	l.locks.Lock(b.RequestID)
	defer l.locks.Unlock(b.RequestID)

	// Re-read under the lock; the bid may have been resolved while waiting.
	l.mu.RLock()
	b = l.bids[bidID]
	l.mu.RUnlock()
	if b.Status != model.BidPending {
		return errs.Conflictf("bid %s already %s", bidID, b.Status)
	}
	req, err := l.store.Get(ctx, b.RequestID)
	if err != nil {
		return err
	}
	if req.Status != model.RequestPending {
		l.publish(events.ConflictLost{RequestID: b.RequestID, Op: "accept", Time: l.now()})
		return errs.Conflictf("request %s already assigned", b.RequestID)
	}

	// Assign first: it re-validates unit availability and is the only step
	// that can fail. Bid state is untouched until it succeeds.
	if err := l.store.AssignLocked(ctx, b.RequestID, b.AgencyID, b.UnitID, actor); err != nil {
		return err
	}

	now := l.now()
	l.mu.Lock()
	b = l.bids[bidID]
	b.Status = model.BidAccepted
	b.ResolvedAt = now
	l.bids[bidID] = b

	var losers []model.Bid
	for _, id := range l.byRequest[b.RequestID] {
		if id == bidID {
			continue
		}
		sib := l.bids[id]
		if sib.Status != model.BidPending {
			continue
		}
		sib.Status = model.BidRejected
		sib.RejectionReason = siblingRejectReason
		sib.ResolvedAt = now
		l.bids[id] = sib
		losers = append(losers, sib)
	}
	l.mu.Unlock()

	l.publish(events.BidResolved{Bid: b})
	l.notif.Notify(notify.Notification{
		Event:     notify.EventBidAccepted,
		RequestID: b.RequestID,
		BidID:     b.ID,
		AgencyID:  b.AgencyID,
		Status:    model.RequestScheduled,
		Time:      now,
	})
	for _, loser := range losers {
		l.publish(events.BidResolved{Bid: loser, Reason: siblingRejectReason})
		l.notif.Notify(notify.Notification{
			Event:     notify.EventBidRejected,
			RequestID: loser.RequestID,
			BidID:     loser.ID,
			AgencyID:  loser.AgencyID,
			Reason:    siblingRejectReason,
			Time:      now,
		})
	}
	if l.log != nil {
		l.log.Infof("bid %s accepted on request %s, %d sibling bids rejected", b.ID, b.RequestID, len(losers))
	}
	return nil
}

// Reject resolves a single PENDING bid to REJECTED, independent of any
// accept decision.
func (l *Ledger) Reject(ctx context.Context, bidID, reason string) error {
	return l.resolve(ctx, bidID, model.BidRejected, reason, notify.EventBidRejected, false)
}

// Withdraw resolves a PENDING bid to WITHDRAWN on behalf of the bidding
// agency.
func (l *Ledger) Withdraw(ctx context.Context, bidID, reason string) error {
	return l.resolve(ctx, bidID, model.BidWithdrawn, reason, notify.EventBidWithdrawn, false)
}

// Expire resolves a PENDING bid to EXPIRED. Expiring an already-resolved
// bid is a no-op, so the time-based sweep stays idempotent.
func (l *Ledger) Expire(ctx context.Context, bidID string) error {
	return l.resolve(ctx, bidID, model.BidExpired, "validity window elapsed", notify.EventBidExpired, true)
}

func (l *Ledger) resolve(_ context.Context, bidID string, target model.BidStatus, reason string, event notify.Event, idempotent bool) error {
	l.mu.RLock()
	b, ok := l.bids[bidID]
	l.mu.RUnlock()
	if !ok {
		return errs.NotFound("bid", bidID)
	}

	l.locks.Lock(b.RequestID)
	defer l.locks.Unlock(b.RequestID)

	l.mu.Lock()
	b = l.bids[bidID]
	if b.Status != model.BidPending {
		l.mu.Unlock()
		if idempotent {
			return nil
		}
		return errs.InvalidTransition("bid", string(b.Status), string(target))
	}
	b.Status = target
	b.ResolvedAt = l.now()
	if target == model.BidRejected || target == model.BidWithdrawn || target == model.BidExpired {
		b.RejectionReason = reason
	}
	l.bids[bidID] = b
	l.mu.Unlock()

	l.publish(events.BidResolved{Bid: b, Reason: reason})
	l.notif.Notify(notify.Notification{
		Event:     event,
		RequestID: b.RequestID,
		BidID:     b.ID,
		AgencyID:  b.AgencyID,
		Reason:    reason,
		Time:      b.ResolvedAt,
	})
	return nil
}

// Get returns the bid with the given id.
func (l *Ledger) Get(_ context.Context, bidID string) (model.Bid, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.bids[bidID]
	if !ok {
		return model.Bid{}, errs.NotFound("bid", bidID)
	}
	return b, nil
}

// ListByRequest returns the request's bids in submission order.
func (l *Ledger) ListByRequest(_ context.Context, requestID string) []model.Bid {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := l.byRequest[requestID]
	out := make([]model.Bid, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.bids[id])
	}
	return out
}

// ListByAgency returns the agency's bids ordered by submission time.
func (l *Ledger) ListByAgency(_ context.Context, agencyID string) []model.Bid {
	l.mu.RLock()
	var out []model.Bid
	for _, b := range l.bids {
		if b.AgencyID == agencyID {
			out = append(out, b)
		}
	}
	l.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out
}

// Stale returns the ids of PENDING bids submitted before the cutoff. The
// expiry sweep feeds them back into Expire one by one.
func (l *Ledger) Stale(cutoff time.Time) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []string
	for id, b := range l.bids {
		if b.Status == model.BidPending && b.SubmittedAt.Before(cutoff) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func (l *Ledger) publish(e eventbus.Event) {
	if l.bus != nil {
		l.bus.Publish(e)
	}
}
