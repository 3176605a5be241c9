package model

import (
	"testing"
	"time"
)

func TestTransportLevel_Covers(t *testing.T) {
	cases := []struct {
		unit, req TransportLevel
		want      bool
	}{
		{LevelCCT, LevelBLS, true},
		{LevelCCT, LevelALS, true},
		{LevelCCT, LevelCCT, true},
		{LevelALS, LevelBLS, true},
		{LevelALS, LevelCCT, false},
		{LevelBLS, LevelALS, false},
		{LevelOther, LevelBLS, false},
		{LevelBLS, LevelOther, true},
	}
	for _, c := range cases {
		if got := c.unit.Covers(c.req); got != c.want {
			t.Errorf("%s covers %s: got %v want %v", c.unit, c.req, got, c.want)
		}
	}
}

func TestValidators_RejectUnknownValues(t *testing.T) {
	if ValidTransportLevel("MICU") {
		t.Errorf("MICU should not validate")
	}
	if ValidPriority("ASAP") {
		t.Errorf("ASAP should not validate")
	}
	if ValidRequestStatus("DISPATCHED") {
		t.Errorf("DISPATCHED should not validate")
	}
	if ValidBidStatus("OPEN") {
		t.Errorf("OPEN should not validate")
	}
	if ValidUnitStatus("PARKED") {
		t.Errorf("PARKED should not validate")
	}
}

func TestRequestStatus_Assigned(t *testing.T) {
	assigned := []RequestStatus{RequestScheduled, RequestInTransit, RequestCompleted}
	for _, s := range assigned {
		if !s.Assigned() {
			t.Errorf("%s should carry assignment fields", s)
		}
	}
	for _, s := range []RequestStatus{RequestPending, RequestCancelled} {
		if s.Assigned() {
			t.Errorf("%s should not carry assignment fields", s)
		}
	}
}

func TestParseCapability(t *testing.T) {
	if c, ok := ParseCapability(" Ventilator "); !ok || c != CapVentilator {
		t.Fatalf("expected ventilator flag, got %q %v", c, ok)
	}
	if _, ok := ParseCapability("friendly crew"); ok {
		t.Fatalf("free text must not map to a capability")
	}
}

func TestUnit_HasCapability(t *testing.T) {
	u := Unit{Capabilities: []Capability{CapECMO, CapVentilator}}
	if !u.HasCapability(CapECMO) || u.HasCapability(CapNeonatal) {
		t.Fatalf("capability lookup mismatch: %v", u.Capabilities)
	}
}

func TestTimeWindow_Contains(t *testing.T) {
	var zero TimeWindow
	now := time.Now()
	if !zero.Contains(now) {
		t.Fatalf("zero window must match any time")
	}
	w := TimeWindow{Start: now.Add(-time.Hour), End: now.Add(time.Hour)}
	if !w.Contains(now) {
		t.Fatalf("window should contain now")
	}
	if w.Contains(now.Add(2 * time.Hour)) {
		t.Fatalf("window should exclude time after end")
	}
}
