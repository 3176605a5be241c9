// Package history keeps the append-only audit log of status changes and ETA
// revisions per transport request. Entries are never mutated or deleted once
// written, and History returns them in insertion order, which the ETA
// history display depends on.
package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Medic423/medport-sub003/core/errs"
	"github.com/Medic423/medport-sub003/core/logger"
	"github.com/Medic423/medport-sub003/core/model"
)

// Kind discriminates the entry payload.
type Kind string

const (
	KindStatusChange Kind = "status_change"
	KindEtaRevision  Kind = "eta_revision"
)

// Entry is one audit record for a request.
type Entry struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	// Status-change payload.
	FromStatus model.RequestStatus `json:"from_status,omitempty"`
	ToStatus   model.RequestStatus `json:"to_status,omitempty"`
	// ETA-revision payload; zero times mean "not revised".
	RevisedArrival time.Time `json:"revised_arrival,omitempty"`
	RevisedPickup  time.Time `json:"revised_pickup,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	Actor          string    `json:"actor,omitempty"`
}

// Tracker records and serves per-request history.
type Tracker interface {
	// Append stores an entry. It fails only when the request is unknown.
	Append(ctx context.Context, e Entry) error
	// Latest returns the most recent entry, or ok=false when none exists.
	Latest(ctx context.Context, requestID string) (Entry, bool, error)
	// History returns entries oldest first.
	History(ctx context.Context, requestID string) ([]Entry, error)
}

// RequestChecker answers whether a request id exists. The request store
// implements it.
type RequestChecker interface {
	Exists(id string) bool
}

// MemoryTracker is the reference Tracker. An optional archive Store receives
// a copy of every entry for durable audit; archive failures are logged and
// never surfaced to the caller.
type MemoryTracker struct {
	mu      sync.RWMutex
	entries map[string][]Entry
	checker RequestChecker
	archive Store
	log     logger.Logger
}

// NewMemoryTracker returns an empty tracker. archive may be nil.
func NewMemoryTracker(archive Store, log logger.Logger) *MemoryTracker {
	return &MemoryTracker{
		entries: make(map[string][]Entry),
		archive: archive,
		log:     log,
	}
}

// SetChecker wires the request-existence check. It is set after construction
// because the request store and the tracker reference each other.
func (t *MemoryTracker) SetChecker(c RequestChecker) {
	t.mu.Lock()
	t.checker = c
	t.mu.Unlock()
}

// Append implements Tracker.
func (t *MemoryTracker) Append(ctx context.Context, e Entry) error {
	if e.RequestID == "" {
		return errs.Validationf("history entry requires a request id")
	}
	t.mu.Lock()
	if t.checker != nil && !t.checker.Exists(e.RequestID) {
		t.mu.Unlock()
		return errs.NotFound("request", e.RequestID)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	t.entries[e.RequestID] = append(t.entries[e.RequestID], e)
	archive := t.archive
	t.mu.Unlock()

	if archive != nil {
		if err := archive.Append(ctx, e); err != nil && t.log != nil {
			t.log.Errorf("history archive append: %v", err)
		}
	}
	return nil
}

// Latest implements Tracker.
func (t *MemoryTracker) Latest(_ context.Context, requestID string) (Entry, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	list := t.entries[requestID]
	if len(list) == 0 {
		return Entry{}, false, nil
	}
	return list[len(list)-1], true, nil
}

// History implements Tracker.
func (t *MemoryTracker) History(_ context.Context, requestID string) ([]Entry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	list := t.entries[requestID]
	out := make([]Entry, len(list))
	copy(out, list)
	return out, nil
}
