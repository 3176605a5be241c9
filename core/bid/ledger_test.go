package bid

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Medic423/medport-sub003/core/errs"
	"github.com/Medic423/medport-sub003/core/history"
	"github.com/Medic423/medport-sub003/core/model"
	"github.com/Medic423/medport-sub003/core/registry"
	"github.com/Medic423/medport-sub003/core/request"
	"github.com/Medic423/medport-sub003/internal/keymutex"
)

type fixture struct {
	reg    *registry.Registry
	store  *request.Store
	ledger *Ledger
}

func newFixture(t *testing.T, agencies int) *fixture {
	t.Helper()
	reg := registry.New()
	for _, f := range []model.Facility{{ID: "f1"}, {ID: "f2"}} {
		if err := reg.PutFacility(f); err != nil {
			t.Fatalf("put facility: %v", err)
		}
	}
	for i := 0; i < agencies; i++ {
		id := string(rune('a'+i)) + "1"
		if err := reg.PutAgency(model.Agency{ID: id}); err != nil {
			t.Fatalf("put agency: %v", err)
		}
		if err := reg.PutUnit(model.Unit{ID: "u-" + id, AgencyID: id, Level: model.LevelCCT, Status: model.UnitAvailable}); err != nil {
			t.Fatalf("put unit: %v", err)
		}
	}
	locks := keymutex.New()
	tracker := history.NewMemoryTracker(nil, nil)
	store := request.NewStore(reg, tracker, locks, nil, nil, nil)
	tracker.SetChecker(store)
	ledger := NewLedger(store, locks, nil, nil, nil)
	return &fixture{reg: reg, store: store, ledger: ledger}
}

func (f *fixture) newRequest(t *testing.T) model.TransportRequest {
	t.Helper()
	req, err := f.store.Create(context.Background(), request.CreateCriteria{
		PatientRef:    "pt-1",
		OriginID:      "f1",
		DestinationID: "f2",
		Level:         model.LevelALS,
		Priority:      model.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	return req
}

func (f *fixture) submit(t *testing.T, requestID, agencyID string) model.Bid {
	t.Helper()
	b, err := f.ledger.Submit(context.Background(), SubmitInput{
		RequestID: requestID,
		AgencyID:  agencyID,
		UnitID:    "u-" + agencyID,
		UnitType:  model.LevelCCT,
		Amount:    900,
	})
	if err != nil {
		t.Fatalf("submit for %s: %v", agencyID, err)
	}
	return b
}

func TestSubmit_RequiresUnit(t *testing.T) {
	f := newFixture(t, 1)
	req := f.newRequest(t)
	_, err := f.ledger.Submit(context.Background(), SubmitInput{
		RequestID: req.ID, AgencyID: "a1", UnitType: model.LevelALS,
	})
	if !errs.IsValidation(err) {
		t.Fatalf("expected validation error for unit-less bid, got %v", err)
	}
}

func TestSubmit_DuplicatePendingBid(t *testing.T) {
	f := newFixture(t, 1)
	req := f.newRequest(t)
	f.submit(t, req.ID, "a1")
	_, err := f.ledger.Submit(context.Background(), SubmitInput{
		RequestID: req.ID, AgencyID: "a1", UnitID: "u-a1-2", UnitType: model.LevelALS,
	})
	if !errs.IsDuplicateBid(err) {
		t.Fatalf("expected duplicate bid error, got %v", err)
	}
}

func TestSubmit_ClosedOnceScheduled(t *testing.T) {
	f := newFixture(t, 2)
	req := f.newRequest(t)
	b := f.submit(t, req.ID, "a1")
	if err := f.ledger.Accept(context.Background(), b.ID, "requester"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	_, err := f.ledger.Submit(context.Background(), SubmitInput{
		RequestID: req.ID, AgencyID: "b1", UnitID: "u-b1", UnitType: model.LevelALS,
	})
	if !errs.IsValidation(err) {
		t.Fatalf("bids after scheduling must fail validation, got %v", err)
	}
}

func TestAccept_ResolvesSiblingsAtomically(t *testing.T) {
	f := newFixture(t, 3)
	req := f.newRequest(t)
	winner := f.submit(t, req.ID, "a1")
	f.submit(t, req.ID, "b1")
	f.submit(t, req.ID, "c1")

	if err := f.ledger.Accept(context.Background(), winner.ID, "requester"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	got, _ := f.store.Get(context.Background(), req.ID)
	if got.Status != model.RequestScheduled || got.AssignedAgencyID != "a1" {
		t.Fatalf("request not scheduled to winner: %+v", got)
	}
	for _, b := range f.ledger.ListByRequest(context.Background(), req.ID) {
		switch b.ID {
		case winner.ID:
			if b.Status != model.BidAccepted {
				t.Errorf("winner should be ACCEPTED, got %s", b.Status)
			}
		default:
			if b.Status != model.BidRejected || b.RejectionReason != "another bid accepted" {
				t.Errorf("sibling %s should be rejected with reason, got %s %q", b.ID, b.Status, b.RejectionReason)
			}
		}
	}
}

func TestAccept_SecondAcceptConflicts(t *testing.T) {
	f := newFixture(t, 2)
	req := f.newRequest(t)
	b1 := f.submit(t, req.ID, "a1")
	b2 := f.submit(t, req.ID, "b1")

	if err := f.ledger.Accept(context.Background(), b1.ID, "requester"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := f.ledger.Accept(context.Background(), b2.ID, "requester"); !errs.IsConflict(err) {
		t.Fatalf("second accept must conflict, got %v", err)
	}
}

func TestAccept_ConcurrentRace(t *testing.T) {
	const n = 8
	f := newFixture(t, n)
	req := f.newRequest(t)

	agencies := []string{"a1", "b1", "c1", "d1", "e1", "f1", "g1", "h1"}
	bids := make([]model.Bid, n)
	for i, a := range agencies {
		bids[i] = f.submit(t, req.ID, a)
	}

	var wg sync.WaitGroup
	results := make([]error, n)
	for i := range bids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.ledger.Accept(context.Background(), bids[i].ID, "requester")
		}(i)
	}
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errs.IsConflict(err):
			conflicts++
		default:
			t.Fatalf("unexpected error kind: %v", err)
		}
	}
	if wins != 1 || conflicts != n-1 {
		t.Fatalf("expected exactly one winner, got %d wins %d conflicts", wins, conflicts)
	}

	accepted := 0
	for _, b := range f.ledger.ListByRequest(context.Background(), req.ID) {
		if b.Status == model.BidAccepted {
			accepted++
		} else if b.Status != model.BidRejected {
			t.Fatalf("losing bid in unexpected state %s", b.Status)
		}
	}
	if accepted != 1 {
		t.Fatalf("exclusive-winner invariant violated: %d accepted", accepted)
	}
}

func TestAccept_RevalidatesUnitAvailability(t *testing.T) {
	f := newFixture(t, 1)
	req := f.newRequest(t)
	b := f.submit(t, req.ID, "a1")

	// The unit goes out of service between match and accept.
	if err := f.reg.SetUnitStatus("u-a1", model.UnitOutOfService); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := f.ledger.Accept(context.Background(), b.ID, "requester"); !errs.IsConflict(err) {
		t.Fatalf("accept with unavailable unit must conflict, got %v", err)
	}
	got, _ := f.ledger.Get(context.Background(), b.ID)
	if got.Status != model.BidPending {
		t.Fatalf("failed accept must not resolve the bid, got %s", got.Status)
	}
	r, _ := f.store.Get(context.Background(), req.ID)
	if r.Status != model.RequestPending {
		t.Fatalf("failed accept must not move the request, got %s", r.Status)
	}
}

func TestWithdrawAndReject(t *testing.T) {
	f := newFixture(t, 2)
	req := f.newRequest(t)
	b1 := f.submit(t, req.ID, "a1")
	b2 := f.submit(t, req.ID, "b1")

	if err := f.ledger.Withdraw(context.Background(), b1.ID, "unit reassigned"); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if err := f.ledger.Reject(context.Background(), b2.ID, "price too high"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if err := f.ledger.Withdraw(context.Background(), b1.ID, "again"); !errs.IsInvalidTransition(err) {
		t.Fatalf("withdraw of resolved bid must fail, got %v", err)
	}
}

func TestExpire_Idempotent(t *testing.T) {
	f := newFixture(t, 1)
	req := f.newRequest(t)
	b := f.submit(t, req.ID, "a1")

	if err := f.ledger.Expire(context.Background(), b.ID); err != nil {
		t.Fatalf("expire: %v", err)
	}
	got, _ := f.ledger.Get(context.Background(), b.ID)
	if got.Status != model.BidExpired {
		t.Fatalf("expected EXPIRED, got %s", got.Status)
	}
	if err := f.ledger.Expire(context.Background(), b.ID); err != nil {
		t.Fatalf("second expire must be a no-op, got %v", err)
	}
	again, _ := f.ledger.Get(context.Background(), b.ID)
	if again.Status != got.Status || !again.ResolvedAt.Equal(got.ResolvedAt) {
		t.Fatalf("second expire changed terminal state: %+v vs %+v", again, got)
	}
}

func TestStale_FindsOldPendingBids(t *testing.T) {
	f := newFixture(t, 2)
	req := f.newRequest(t)
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f.ledger.SetClock(func() time.Time { return old })
	b1 := f.submit(t, req.ID, "a1")
	f.ledger.SetClock(func() time.Time { return old.Add(time.Hour) })
	f.submit(t, req.ID, "b1")

	stale := f.ledger.Stale(old.Add(30 * time.Minute))
	if len(stale) != 1 || stale[0] != b1.ID {
		t.Fatalf("expected only the old bid to be stale: %v", stale)
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t, 3)
	req := f.newRequest(t)
	b1 := f.submit(t, req.ID, "a1")
	f.submit(t, req.ID, "b1")
	f.submit(t, req.ID, "c1")

	if err := f.ledger.Accept(context.Background(), b1.ID, "requester"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	s := f.ledger.Stats(context.Background(), StatsFilter{})
	if s.Total != 3 || s.ByStatus[model.BidAccepted] != 1 || s.ByStatus[model.BidRejected] != 2 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if s.AcceptanceRate < 0.33 || s.AcceptanceRate > 0.34 {
		t.Fatalf("expected acceptance rate 1/3, got %f", s.AcceptanceRate)
	}
	if s.AverageAmount != 900 || s.TotalAmount != 2700 {
		t.Fatalf("unexpected amounts: %+v", s)
	}

	rate, ok := f.ledger.AcceptanceRate("a1")
	if !ok || rate != 1 {
		t.Fatalf("agency a1 should have rate 1, got %f %v", rate, ok)
	}
	if _, ok := f.ledger.AcceptanceRate("ghost"); ok {
		t.Fatalf("unknown agency should report no signal")
	}
}
