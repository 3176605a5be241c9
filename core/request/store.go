// Package request owns transport request records and enforces their state
// machine. The store is the sole writer of request status and assignment
// fields; the bid ledger goes through Assign, never around it.
package request

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Medic423/medport-sub003/core/errs"
	"github.com/Medic423/medport-sub003/core/events"
	"github.com/Medic423/medport-sub003/core/history"
	"github.com/Medic423/medport-sub003/core/logger"
	"github.com/Medic423/medport-sub003/core/model"
	"github.com/Medic423/medport-sub003/core/notify"
	"github.com/Medic423/medport-sub003/core/registry"
	"github.com/Medic423/medport-sub003/internal/eventbus"
	"github.com/Medic423/medport-sub003/internal/keymutex"
)

// transitions lists the legal forward edges. CANCELLED -> PENDING exists
// only as the explicit reopen operation and is deliberately absent here.
var transitions = map[model.RequestStatus][]model.RequestStatus{
	model.RequestPending:   {model.RequestScheduled, model.RequestCancelled},
	model.RequestScheduled: {model.RequestInTransit, model.RequestCancelled},
	model.RequestInTransit: {model.RequestCompleted},
}

func edgeExists(from, to model.RequestStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CreateCriteria is the input for Create.
type CreateCriteria struct {
	PatientRef          string               `json:"patient_ref"`
	OriginID            string               `json:"origin_id"`
	DestinationID       string               `json:"destination_id"`
	Level               model.TransportLevel `json:"level"`
	Priority            model.Priority       `json:"priority"`
	SpecialRequirements string               `json:"special_requirements,omitempty"`
	RevenuePotential    float64              `json:"revenue_potential,omitempty"`
}

// Filter selects requests on the read side. Zero fields match everything.
type Filter struct {
	Status     model.RequestStatus
	Priority   model.Priority
	Level      model.TransportLevel
	FacilityID string
	Search     string
	From       time.Time
	To         time.Time
}

// Store is the in-memory transport request store.
type Store struct {
	mu       sync.RWMutex
	requests map[string]model.TransportRequest

	locks   *keymutex.KeyMutex
	units   *registry.Registry
	tracker history.Tracker
	bus     eventbus.EventBus
	notif   notify.Dispatcher
	log     logger.Logger
	now     func() time.Time
}

// NewStore wires a Store. locks is shared with the bid ledger so all
// mutations on one request serialize; pass a fresh keymutex when no ledger
// is attached. bus and notif may be nil.
func NewStore(units *registry.Registry, tracker history.Tracker, locks *keymutex.KeyMutex, bus eventbus.EventBus, notif notify.Dispatcher, log logger.Logger) *Store {
	if locks == nil {
		locks = keymutex.New()
	}
	if notif == nil {
		notif = notify.Nop{}
	}
	return &Store{
		requests: make(map[string]model.TransportRequest),
		locks:    locks,
		units:    units,
		tracker:  tracker,
		bus:      bus,
		notif:    notif,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source, for tests.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

// Exists implements history.RequestChecker.
func (s *Store) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.requests[id]
	return ok
}

// Create validates the criteria and stores a new PENDING request.
func (s *Store) Create(ctx context.Context, c CreateCriteria) (model.TransportRequest, error) {
	if c.OriginID == "" || c.DestinationID == "" {
		return model.TransportRequest{}, errs.Validationf("origin and destination facilities required")
	}
	if c.OriginID == c.DestinationID {
		return model.TransportRequest{}, errs.Validationf("origin and destination must differ")
	}
	if !model.ValidTransportLevel(c.Level) {
		return model.TransportRequest{}, errs.Validationf("unknown transport level %q", c.Level)
	}
	if !model.ValidPriority(c.Priority) {
		return model.TransportRequest{}, errs.Validationf("unknown priority %q", c.Priority)
	}
	if s.units != nil {
		if _, err := s.units.Facility(c.OriginID); err != nil {
			return model.TransportRequest{}, err
		}
		if _, err := s.units.Facility(c.DestinationID); err != nil {
			return model.TransportRequest{}, err
		}
	}

	req := model.TransportRequest{
		ID:                  uuid.NewString(),
		PatientRef:          c.PatientRef,
		OriginID:            c.OriginID,
		DestinationID:       c.DestinationID,
		Level:               c.Level,
		Priority:            c.Priority,
		SpecialRequirements: c.SpecialRequirements,
		RevenuePotential:    c.RevenuePotential,
		Status:              model.RequestPending,
		CreatedAt:           s.now(),
	}
	s.mu.Lock()
	s.requests[req.ID] = req
	s.mu.Unlock()

	s.appendHistory(ctx, history.Entry{
		RequestID: req.ID,
		Kind:      history.KindStatusChange,
		ToStatus:  model.RequestPending,
		Timestamp: req.CreatedAt,
	})
	s.publish(events.RequestCreated{Request: req})
	if s.log != nil {
		s.log.Infof("request %s created %s %s -> %s", req.ID, req.Level, req.OriginID, req.DestinationID)
	}
	return req, nil
}

// Get returns the request with the given id.
func (s *Store) Get(_ context.Context, id string) (model.TransportRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok {
		return model.TransportRequest{}, errs.NotFound("request", id)
	}
	return req, nil
}

// List returns requests matching the filter, ordered by creation time then id.
func (s *Store) List(_ context.Context, f Filter) []model.TransportRequest {
	s.mu.RLock()
	out := make([]model.TransportRequest, 0, len(s.requests))
	for _, req := range s.requests {
		if matches(req, f) {
			out = append(out, req)
		}
	}
	s.mu.RUnlock()
	sortRequests(out)
	return out
}

func matches(req model.TransportRequest, f Filter) bool {
	if f.Status != "" && req.Status != f.Status {
		return false
	}
	if f.Priority != "" && req.Priority != f.Priority {
		return false
	}
	if f.Level != "" && req.Level != f.Level {
		return false
	}
	if f.FacilityID != "" && req.OriginID != f.FacilityID && req.DestinationID != f.FacilityID {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(req.PatientRef), needle) &&
			!strings.Contains(strings.ToLower(req.SpecialRequirements), needle) &&
			!strings.Contains(strings.ToLower(req.ID), needle) {
			return false
		}
	}
	if !f.From.IsZero() && req.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && req.CreatedAt.After(f.To) {
		return false
	}
	return true
}

// Transition applies a state-machine edge on behalf of actor.
func (s *Store) Transition(ctx context.Context, id string, target model.RequestStatus, actor string) error {
	if !model.ValidRequestStatus(target) {
		return errs.Validationf("unknown request status %q", target)
	}
	s.locks.Lock(id)
	defer s.locks.Unlock(id)
	return s.transitionLocked(ctx, id, target, actor, "")
}

// transitionLocked applies the edge. Callers hold the per-request lock.
func (s *Store) transitionLocked(ctx context.Context, id string, target model.RequestStatus, actor, reason string) error {
	s.mu.Lock()
	req, ok := s.requests[id]
	if !ok {
		s.mu.Unlock()
		return errs.NotFound("request", id)
	}
	if !edgeExists(req.Status, target) {
		s.mu.Unlock()
		return errs.InvalidTransition("request", string(req.Status), string(target))
	}
	// SCHEDULED always carries assignment fields; reaching it without an
	// assignment would break the invariant, so the edge only exists through
	// Assign.
	if target == model.RequestScheduled && req.AssignedUnitID == "" {
		s.mu.Unlock()
		return errs.InvalidTransition("request", string(req.Status), string(target))
	}
	from := req.Status
	releaseUnit := ""
	req.Status = target
	switch target {
	case model.RequestCancelled:
		// CANCELLED does not carry assignment fields; the unit goes back
		// to AVAILABLE.
		releaseUnit = req.AssignedUnitID
		req.AssignedAgencyID = ""
		req.AssignedUnitID = ""
		req.CancelReason = reason
	case model.RequestCompleted:
		// Completing the transport frees the unit for the next dispatch.
		releaseUnit = req.AssignedUnitID
	}
	s.requests[id] = req
	s.mu.Unlock()

	if releaseUnit != "" && s.units != nil {
		if err := s.units.Release(releaseUnit); err != nil && s.log != nil {
			s.log.Errorf("release unit %s: %v", releaseUnit, err)
		}
	}

	now := s.now()
	s.appendHistory(ctx, history.Entry{
		RequestID:  id,
		Kind:       history.KindStatusChange,
		FromStatus: from,
		ToStatus:   target,
		Actor:      actor,
		Reason:     reason,
		Timestamp:  now,
	})
	s.publish(events.RequestStatusChanged{
		RequestID: id, From: from, To: target, Actor: actor, Reason: reason, Time: now,
	})
	return nil
}

// Assign claims the unit, sets assignment fields and schedules the request.
// It is callable only while the request is PENDING and re-validates unit
// availability at call time rather than trusting a stale match result.
func (s *Store) Assign(ctx context.Context, id, agencyID, unitID, actor string) error {
	s.locks.Lock(id)
	defer s.locks.Unlock(id)
	return s.assignLocked(ctx, id, agencyID, unitID, actor)
}

// AssignLocked is the ledger-facing variant; the caller already holds the
// per-request lock for id.
func (s *Store) AssignLocked(ctx context.Context, id, agencyID, unitID, actor string) error {
	return s.assignLocked(ctx, id, agencyID, unitID, actor)
}

func (s *Store) assignLocked(ctx context.Context, id, agencyID, unitID, actor string) error {
	s.mu.Lock()
	req, ok := s.requests[id]
	if !ok {
		s.mu.Unlock()
		return errs.NotFound("request", id)
	}
	if req.Status != model.RequestPending {
		s.mu.Unlock()
		s.publish(events.ConflictLost{RequestID: id, Op: "assign", Time: s.now()})
		return errs.Conflictf("request %s is %s, not PENDING", id, req.Status)
	}
	s.mu.Unlock()

	unit, err := s.units.Unit(unitID)
	if err != nil {
		return err
	}
	if unit.AgencyID != agencyID {
		return errs.Validationf("unit %s does not belong to agency %s", unitID, agencyID)
	}
	if _, err := s.units.Claim(unitID); err != nil {
		s.publish(events.ConflictLost{RequestID: id, Op: "assign", Time: s.now()})
		return err
	}

	s.mu.Lock()
	req = s.requests[id]
	req.AssignedAgencyID = agencyID
	req.AssignedUnitID = unitID
	s.requests[id] = req
	s.mu.Unlock()

	if err := s.transitionLocked(ctx, id, model.RequestScheduled, actor, ""); err != nil {
		// Roll back so no partial assignment is observable.
		s.mu.Lock()
		req = s.requests[id]
		req.AssignedAgencyID = ""
		req.AssignedUnitID = ""
		s.requests[id] = req
		s.mu.Unlock()
		if rerr := s.units.Release(unitID); rerr != nil && s.log != nil {
			s.log.Errorf("release unit %s after failed assign: %v", unitID, rerr)
		}
		return err
	}
	return nil
}

// Cancel moves a PENDING or SCHEDULED request to CANCELLED. Cancelling a
// SCHEDULED request releases its unit back to AVAILABLE and clears the
// assignment fields.
func (s *Store) Cancel(ctx context.Context, id, reason, actor string) error {
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	if err := s.transitionLocked(ctx, id, model.RequestCancelled, actor, reason); err != nil {
		return err
	}
	s.notif.Notify(notify.Notification{
		Event:     notify.EventRequestCancelled,
		RequestID: id,
		Status:    model.RequestCancelled,
		Reason:    reason,
		Time:      s.now(),
	})
	return nil
}

// Reopen reverses a cancellation, returning the request to PENDING. It is
// the only backward edge and is permitted exactly once per request.
func (s *Store) Reopen(ctx context.Context, id, actor string) error {
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	s.mu.Lock()
	req, ok := s.requests[id]
	if !ok {
		s.mu.Unlock()
		return errs.NotFound("request", id)
	}
	if req.Status != model.RequestCancelled || req.Reopened {
		from := req.Status
		s.mu.Unlock()
		return errs.InvalidTransition("request", string(from), string(model.RequestPending))
	}
	from := req.Status
	req.Status = model.RequestPending
	req.Reopened = true
	req.CancelReason = ""
	s.requests[id] = req
	s.mu.Unlock()

	now := s.now()
	s.appendHistory(ctx, history.Entry{
		RequestID:  id,
		Kind:       history.KindStatusChange,
		FromStatus: from,
		ToStatus:   model.RequestPending,
		Actor:      actor,
		Reason:     "reopened",
		Timestamp:  now,
	})
	s.publish(events.RequestStatusChanged{
		RequestID: id, From: from, To: model.RequestPending, Actor: actor, Reason: "reopened", Time: now,
	})
	s.notif.Notify(notify.Notification{
		Event:     notify.EventRequestReopened,
		RequestID: id,
		Status:    model.RequestPending,
		Time:      now,
	})
	return nil
}

// RecordEta appends an ETA revision to the request's history.
func (s *Store) RecordEta(ctx context.Context, id string, arrival, pickup time.Time, reason, actor string) error {
	if !s.Exists(id) {
		return errs.NotFound("request", id)
	}
	now := s.now()
	err := s.tracker.Append(ctx, history.Entry{
		RequestID:      id,
		Kind:           history.KindEtaRevision,
		RevisedArrival: arrival,
		RevisedPickup:  pickup,
		Reason:         reason,
		Actor:          actor,
		Timestamp:      now,
	})
	if err != nil {
		return err
	}
	s.publish(events.EtaRevised{
		RequestID: id, RevisedArrival: arrival, RevisedPickup: pickup, Reason: reason, Time: now,
	})
	return nil
}

func (s *Store) appendHistory(ctx context.Context, e history.Entry) {
	if s.tracker == nil {
		return
	}
	if err := s.tracker.Append(ctx, e); err != nil && s.log != nil {
		s.log.Errorf("history append for %s: %v", e.RequestID, err)
	}
}

func (s *Store) publish(e eventbus.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

func sortRequests(reqs []model.TransportRequest) {
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].CreatedAt.Equal(reqs[j].CreatedAt) {
			return reqs[i].ID < reqs[j].ID
		}
		return reqs[i].CreatedAt.Before(reqs[j].CreatedAt)
	})
}
