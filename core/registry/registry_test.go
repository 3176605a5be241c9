package registry

import (
	"testing"

	"github.com/Medic423/medport-sub003/core/errs"
	"github.com/Medic423/medport-sub003/core/model"
)

func seed(t *testing.T) *Registry {
	t.Helper()
	r := New()
	if err := r.PutAgency(model.Agency{ID: "a1", Name: "Metro EMS"}); err != nil {
		t.Fatalf("put agency: %v", err)
	}
	if err := r.PutAgency(model.Agency{ID: "a2", Name: "Valley Transport"}); err != nil {
		t.Fatalf("put agency: %v", err)
	}
	units := []model.Unit{
		{ID: "u1", AgencyID: "a1", Level: model.LevelCCT, Status: model.UnitAvailable},
		{ID: "u2", AgencyID: "a1", Level: model.LevelBLS, Status: model.UnitAvailable},
		{ID: "u3", AgencyID: "a2", Level: model.LevelALS, Status: model.UnitOutOfService},
		{ID: "u4", AgencyID: "a2", Level: model.LevelALS, Status: model.UnitAvailable},
	}
	for _, u := range units {
		if err := r.PutUnit(u); err != nil {
			t.Fatalf("put unit %s: %v", u.ID, err)
		}
	}
	return r
}

func TestAvailableUnits_FiltersLevelAndStatus(t *testing.T) {
	r := seed(t)
	got := r.AvailableUnits(model.LevelALS)
	if len(got) != 2 {
		t.Fatalf("expected u1 and u4, got %d units", len(got))
	}
	if got[0].ID != "u1" || got[1].ID != "u4" {
		t.Fatalf("expected deterministic order u1,u4 got %s,%s", got[0].ID, got[1].ID)
	}
}

func TestPutUnit_UnknownAgency(t *testing.T) {
	r := New()
	err := r.PutUnit(model.Unit{ID: "u9", AgencyID: "ghost", Level: model.LevelBLS})
	if !errs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestClaim_OnlyAvailableUnits(t *testing.T) {
	r := seed(t)
	if _, err := r.Claim("u1"); err != nil {
		t.Fatalf("claim available unit: %v", err)
	}
	if _, err := r.Claim("u1"); !errs.IsConflict(err) {
		t.Fatalf("expected conflict claiming in-use unit, got %v", err)
	}
	if _, err := r.Claim("u3"); !errs.IsConflict(err) {
		t.Fatalf("expected conflict claiming out-of-service unit, got %v", err)
	}
}

func TestRelease_IsIdempotent(t *testing.T) {
	r := seed(t)
	if _, err := r.Claim("u1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := r.Release("u1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := r.Release("u1"); err != nil {
		t.Fatalf("second release should be a no-op, got %v", err)
	}
	u, err := r.Unit("u1")
	if err != nil || u.Status != model.UnitAvailable {
		t.Fatalf("expected u1 AVAILABLE, got %v %v", u.Status, err)
	}
}

func TestRelease_DoesNotTouchMaintenanceUnits(t *testing.T) {
	r := seed(t)
	if err := r.SetUnitStatus("u2", model.UnitMaintenance); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := r.Release("u2"); err != nil {
		t.Fatalf("release: %v", err)
	}
	u, _ := r.Unit("u2")
	if u.Status != model.UnitMaintenance {
		t.Fatalf("release must not override manual status, got %s", u.Status)
	}
}

func TestPreferences_RoundTrip(t *testing.T) {
	r := seed(t)
	p := model.AgencyPreferences{MaxDistanceMiles: 75, RevenueThreshold: 1200}
	if err := r.SetPreferences("a1", p); err != nil {
		t.Fatalf("set prefs: %v", err)
	}
	got, err := r.Preferences("a1")
	if err != nil || got.MaxDistanceMiles != 75 {
		t.Fatalf("prefs round trip: %+v %v", got, err)
	}
	if err := r.SetPreferences("ghost", p); !errs.IsNotFound(err) {
		t.Fatalf("expected not found for unknown agency, got %v", err)
	}
}

func TestSetPreferences_Validation(t *testing.T) {
	r := seed(t)
	bad := model.AgencyPreferences{PreferredLevels: []model.TransportLevel{"HOVERCRAFT"}}
	if err := r.SetPreferences("a1", bad); !errs.IsValidation(err) {
		t.Fatalf("expected validation error for unknown level, got %v", err)
	}
	if err := r.SetPreferences("a1", model.AgencyPreferences{MaxDistanceMiles: -1}); !errs.IsValidation(err) {
		t.Fatalf("expected validation error for negative distance, got %v", err)
	}
}
